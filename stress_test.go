package textrope

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dshills/textrope/internal/strutil"
)

// floorBoundary pulls an arbitrary byte index back onto a scalar-value
// boundary of the reference text.
func floorBoundary(ref []byte, idx int) int {
	for idx > 0 && idx < len(ref) && !utf8.RuneStart(ref[idx]) {
		idx--
	}
	return idx
}

func splice(ref []byte, start, end int, ins string) []byte {
	out := make([]byte, 0, len(ref)-(end-start)+len(ins))
	out = append(out, ref[:start]...)
	out = append(out, ins...)
	out = append(out, ref[end:]...)
	return out
}

var editWords = []string{
	"a", "hello ", "world", "世界", "日本語のテキスト", "😀", "🌍🌍",
	"\n", "\r", "\r\n", "line one\nline two\n", "tab\there",
	"a longer run of plain ascii text to fatten leaves ",
	strings.Repeat("wide 漢字 mix\r\n", 20),
	strings.Repeat("z", 300),
}

// TestRandomEditsMatchReference drives a long random edit sequence
// against a naive reference buffer, checking counts every iteration and
// full structure periodically.
func TestRandomEditsMatchReference(t *testing.T) {
	iters := 20000
	if testing.Short() {
		iters = 3000
	}

	rng := rand.New(rand.NewSource(42))
	r := New()
	var ref []byte

	for i := 0; i < iters; i++ {
		switch rng.Intn(6) {
		case 0, 1, 2: // insert
			w := editWords[rng.Intn(len(editWords))]
			idx := floorBoundary(ref, rng.Intn(len(ref)+1))
			r.MustInsert(idx, w)
			ref = splice(ref, idx, idx, w)
		case 3, 4: // remove
			if len(ref) == 0 {
				continue
			}
			a := floorBoundary(ref, rng.Intn(len(ref)+1))
			b := floorBoundary(ref, rng.Intn(len(ref)+1))
			if a > b {
				a, b = b, a
			}
			if b-a > 2000 {
				b = floorBoundary(ref, a+2000)
			}
			r.MustRemove(a, b)
			ref = splice(ref, a, b, "")
		case 5: // replace
			if len(ref) == 0 {
				continue
			}
			a := floorBoundary(ref, rng.Intn(len(ref)+1))
			b := floorBoundary(ref, rng.Intn(len(ref)+1))
			if a > b {
				a, b = b, a
			}
			if b-a > 500 {
				b = floorBoundary(ref, a+500)
			}
			w := editWords[rng.Intn(len(editWords))]
			r.MustEdit(a, b, w)
			ref = splice(ref, a, b, w)
		}

		if r.LenBytes() != len(ref) {
			t.Fatalf("iter %d: LenBytes = %d, want %d", i, r.LenBytes(), len(ref))
		}

		if i%1000 == 0 {
			if err := r.checkInvariants(); err != nil {
				t.Fatalf("iter %d: invariants: %v", i, err)
			}
			if got := r.String(); got != string(ref) {
				t.Fatalf("iter %d: contents diverged", i)
			}
			wantChars, _, lf, lfcr, uni := strutil.Counts(ref)
			if r.LenChars() != wantChars {
				t.Fatalf("iter %d: LenChars = %d, want %d", i, r.LenChars(), wantChars)
			}
			if r.LenLines(LineLF) != lf+1 {
				t.Fatalf("iter %d: LenLines(lf) = %d, want %d", i, r.LenLines(LineLF), lf+1)
			}
			if r.LenLines(LineLFCR) != lfcr+1 {
				t.Fatalf("iter %d: LenLines(lfcr) = %d, want %d", i, r.LenLines(LineLFCR), lfcr+1)
			}
			if r.LenLines(LineUnicode) != uni+1 {
				t.Fatalf("iter %d: LenLines(unicode) = %d, want %d", i, r.LenLines(LineUnicode), uni+1)
			}
		}
	}

	if err := r.checkInvariants(); err != nil {
		t.Fatalf("final invariants: %v", err)
	}
	if got := r.String(); got != string(ref) {
		t.Fatal("final contents diverged")
	}

	// Conversion spot checks against the reference.
	for k := 0; k < 200; k++ {
		idx := floorBoundary(ref, rng.Intn(len(ref)+1))
		if got, want := r.MustByteToChar(idx), strutil.ByteToCharIdx(ref, idx); got != want {
			t.Fatalf("ByteToChar(%d) = %d, want %d", idx, got, want)
		}
		if got, want := r.MustByteToLine(idx, LineLFCR), strutil.ByteToLineIdx(ref, idx, strutil.FlavorLFCR); got != want {
			t.Fatalf("ByteToLine(%d) = %d, want %d", idx, got, want)
		}
	}
}

// TestRandomSplitAppend exercises split and concatenate against a
// reference string.
func TestRandomSplitAppend(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	base := strings.Repeat("split me 日本 right here\r\n", 2000)
	r := mustRope(t, base)
	ref := []byte(base)

	for i := 0; i < 200; i++ {
		idx := floorBoundary(ref, rng.Intn(len(ref)+1))
		right := r.MustSplitOff(idx)

		if err := r.checkInvariants(); err != nil {
			t.Fatalf("iter %d left invariants: %v", i, err)
		}
		if err := right.checkInvariants(); err != nil {
			t.Fatalf("iter %d right invariants: %v", i, err)
		}
		if r.LenBytes() != idx || right.LenBytes() != len(ref)-idx {
			t.Fatalf("iter %d split lengths %d/%d at %d", i, r.LenBytes(), right.LenBytes(), idx)
		}

		// Re-join in swapped order half the time to churn the fringes.
		if rng.Intn(2) == 0 {
			r.Append(right)
		} else {
			right.Append(r)
			r = right
			ref = append(append([]byte{}, ref[idx:]...), ref[:idx]...)
		}

		if err := r.checkInvariants(); err != nil {
			t.Fatalf("iter %d joined invariants: %v", i, err)
		}
		if r.LenBytes() != len(ref) {
			t.Fatalf("iter %d joined length %d, want %d", i, r.LenBytes(), len(ref))
		}
	}

	if got := r.String(); got != string(ref) {
		t.Fatal("final contents diverged")
	}
}
