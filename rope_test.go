package textrope

import (
	"bytes"
	"errors"
	"hash/fnv"
	"strings"
	"testing"
	"unicode/utf8"
)

// mustRope builds a rope or fails the test.
func mustRope(t *testing.T, s string) Rope {
	t.Helper()
	r, err := FromString(s)
	if err != nil {
		t.Fatalf("FromString(%q): %v", s, err)
	}
	return r
}

// checkRope verifies contents, cached lengths, and every structural
// invariant against the reference string.
func checkRope(t *testing.T, r *Rope, want string) {
	t.Helper()
	if got := r.String(); got != want {
		t.Fatalf("contents = %q, want %q", got, want)
	}
	if r.LenBytes() != len(want) {
		t.Fatalf("LenBytes = %d, want %d", r.LenBytes(), len(want))
	}
	if r.LenChars() != utf8.RuneCountInString(want) {
		t.Fatalf("LenChars = %d, want %d", r.LenChars(), utf8.RuneCountInString(want))
	}
	if err := r.checkInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestNew(t *testing.T) {
	r := New()
	if r.LenBytes() != 0 || r.LenChars() != 0 {
		t.Error("new rope should be empty")
	}
	if r.LenLines(LineLF) != 1 {
		t.Errorf("LenLines = %d, want 1", r.LenLines(LineLF))
	}
	if r.String() != "" {
		t.Errorf("String = %q", r.String())
	}
	line := r.MustLine(0, LineLF)
	if line.LenBytes() != 0 {
		t.Error("line 0 of an empty rope should be empty")
	}
}

func TestFromString(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"single char", "a"},
		{"short", "hello"},
		{"with newline", "hello\nworld"},
		{"unicode", "hello 世界 🌍"},
		{"crlf", "one\r\ntwo\r\nthree"},
		{"long", strings.Repeat("abcdefghij", 1000)},
		{"long lines", strings.Repeat("line of text\n", 2000)},
		{"long unicode", strings.Repeat("日本語のテキスト。", 800)},
		{"long crlf", strings.Repeat("pair\r\n", 3000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustRope(t, tt.input)
			checkRope(t, &r, tt.input)
		})
	}
}

func TestFromStringInvalidUTF8(t *testing.T) {
	_, err := FromBytes([]byte{0x61, 0xFF, 0x62})
	if !errors.Is(err, ErrNonUTF8Input) {
		t.Errorf("err = %v, want ErrNonUTF8Input", err)
	}
}

func TestInsert(t *testing.T) {
	tests := []struct {
		name string
		base string
		idx  int
		text string
		want string
	}{
		{"into empty", "", 0, "hello", "hello"},
		{"at start", "world", 0, "hello ", "hello world"},
		{"at end", "hello", 5, " world", "hello world"},
		{"middle", "held", 3, "lo worl", "hello world"},
		{"unicode", "世界", 3, "の", "世の界"},
		{"large into small", "ab", 1, strings.Repeat("x", 5000), "a" + strings.Repeat("x", 5000) + "b"},
		{"multiline", "ab", 1, strings.Repeat("line\n", 2000), "a" + strings.Repeat("line\n", 2000) + "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustRope(t, tt.base)
			if err := r.Insert(tt.idx, tt.text); err != nil {
				t.Fatalf("Insert: %v", err)
			}
			checkRope(t, &r, tt.want)
		})
	}
}

func TestInsertSequential(t *testing.T) {
	r := New()
	var ref []byte
	for i := 0; i < 2000; i++ {
		r.MustInsert(r.LenBytes(), "ab")
		ref = append(ref, "ab"...)
	}
	checkRope(t, &r, string(ref))
}

func TestInsertAtFront(t *testing.T) {
	r := New()
	var ref string
	for i := 0; i < 2000; i++ {
		r.MustInsert(0, "ab")
		ref = "ab" + ref
	}
	checkRope(t, &r, ref)
}

func TestInsertErrors(t *testing.T) {
	r := mustRope(t, "世界")

	if err := r.Insert(1, "x"); !errors.Is(err, ErrNotACharBoundary) {
		t.Errorf("mid-scalar insert: %v", err)
	}
	if err := r.Insert(7, "x"); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("out-of-bounds insert: %v", err)
	}
	if err := r.Insert(0, string([]byte{0xFF})); !errors.Is(err, ErrNonUTF8Input) {
		t.Errorf("invalid utf8 insert: %v", err)
	}
	checkRope(t, &r, "世界")
}

func TestRemove(t *testing.T) {
	base := "Hello world! How are you doing? こんにちは、みんなさん！"
	tests := []struct {
		name       string
		start, end int
		want       string
	}{
		{"nothing", 5, 5, base},
		{"prefix", 0, 6, "world! How are you doing? こんにちは、みんなさん！"},
		{"middle", 5, 12, "Hello How are you doing? こんにちは、みんなさん！"},
		{"suffix", 31, len(base), "Hello world! How are you doing?"},
		{"everything", 0, len(base), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustRope(t, base)
			if err := r.Remove(tt.start, tt.end); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			checkRope(t, &r, tt.want)
		})
	}
}

func TestRemoveLarge(t *testing.T) {
	base := strings.Repeat("0123456789\n", 3000)
	r := mustRope(t, base)

	r.MustRemove(11, len(base)-11)
	checkRope(t, &r, base[:11]+base[len(base)-11:])
}

func TestRemoveErrors(t *testing.T) {
	r := mustRope(t, "hello")

	if err := r.Remove(3, 2); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("inverted range: %v", err)
	}
	if err := r.Remove(0, 9); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("out of bounds: %v", err)
	}
	checkRope(t, &r, "hello")
}

func TestEdit(t *testing.T) {
	r := mustRope(t, "Hello, world!")

	r.MustEdit(7, 12, "there")
	checkRope(t, &r, "Hello, there!")

	// Empty range is pure insertion; empty text is pure removal.
	r.MustEdit(5, 5, " well")
	checkRope(t, &r, "Hello well, there!")
	r.MustEdit(5, 10, "")
	checkRope(t, &r, "Hello, there!")
	r.MustEdit(0, 0, "")
	checkRope(t, &r, "Hello, there!")
}

func TestSplitOffAppend(t *testing.T) {
	base := "Hello world! How are you doing? こんにちは、みんなさん！"

	for _, idx := range []int{0, 1, 20, 31, len(base)} {
		r := mustRope(t, base)
		right, err := r.SplitOff(idx)
		if err != nil {
			t.Fatalf("SplitOff(%d): %v", idx, err)
		}
		checkRope(t, &r, base[:idx])
		checkRope(t, &right, base[idx:])

		r.Append(right)
		checkRope(t, &r, base)
	}
}

func TestSplitOffAppendLarge(t *testing.T) {
	base := strings.Repeat("0123456789abcdef", 4000)
	for _, idx := range []int{1, 100, 5000, len(base) / 2, len(base) - 3} {
		r := mustRope(t, base)
		right := r.MustSplitOff(idx)
		checkRope(t, &r, base[:idx])
		checkRope(t, &right, base[idx:])
		r.Append(right)
		checkRope(t, &r, base)
	}
}

func TestAppendMixedSizes(t *testing.T) {
	small := "tiny"
	large := strings.Repeat("many bytes here\n", 2000)

	r := mustRope(t, small)
	r.Append(mustRope(t, large))
	checkRope(t, &r, small+large)

	r = mustRope(t, large)
	r.Append(mustRope(t, small))
	checkRope(t, &r, large+small)

	r = mustRope(t, "")
	r.Append(mustRope(t, large))
	checkRope(t, &r, large)

	r = mustRope(t, large)
	r.Append(mustRope(t, ""))
	checkRope(t, &r, large)
}

func TestAppendCRLFSeam(t *testing.T) {
	r := mustRope(t, "line one\r")
	r.Append(mustRope(t, "\nline two"))
	checkRope(t, &r, "line one\r\nline two")
	if got := r.LenLines(LineLFCR); got != 2 {
		t.Errorf("LenLines = %d, want 2", got)
	}
}

func TestByte(t *testing.T) {
	r := mustRope(t, "hello")
	if b := r.MustByte(1); b != 'e' {
		t.Errorf("Byte(1) = %c", b)
	}
	if _, err := r.Byte(5); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Byte(5): %v", err)
	}
}

func TestScenarioHelloWorld(t *testing.T) {
	r := mustRope(t, "Hello, 世界!\n")

	if r.LenBytes() != 15 {
		t.Errorf("LenBytes = %d, want 15", r.LenBytes())
	}
	if r.LenChars() != 11 {
		t.Errorf("LenChars = %d, want 11", r.LenChars())
	}
	if r.LenUTF16() != 11 {
		t.Errorf("LenUTF16 = %d, want 11", r.LenUTF16())
	}
	if r.LenLines(LineLF) != 2 {
		t.Errorf("LenLines = %d, want 2", r.LenLines(LineLF))
	}
	if got := r.MustByteToChar(7); got != 7 {
		t.Errorf("ByteToChar(7) = %d, want 7", got)
	}
	if got := r.MustByteToChar(10); got != 8 {
		t.Errorf("ByteToChar(10) = %d, want 8", got)
	}
	if got := r.MustCharToByte(8); got != 10 {
		t.Errorf("CharToByte(8) = %d, want 10", got)
	}
	if got := r.MustCharAtByte(7); got != '世' {
		t.Errorf("CharAtByte(7) = %c, want 世", got)
	}
}

func TestScenarioCRLFInsertBetween(t *testing.T) {
	r := mustRope(t, "a\r\nb")
	if got := r.Info().LineBreaksLFCR; got != 1 {
		t.Fatalf("initial breaks = %d, want 1", got)
	}

	// Inserting between the CR and LF is permitted by byte index and
	// pulls the pair apart: one CR break plus one LF break.
	r.MustInsert(2, "X")
	checkRope(t, &r, "a\rX\nb")
	if got := r.Info().LineBreaksLFCR; got != 2 {
		t.Errorf("breaks after split = %d, want 2", got)
	}
}

func TestScenarioLines(t *testing.T) {
	r := mustRope(t, "line1\nline2\nline3")

	if got := r.MustLine(1, LineLF).String(); got != "line2\n" {
		t.Errorf("line 1 = %q, want %q", got, "line2\n")
	}
	if got := r.MustLine(2, LineLF).String(); got != "line3" {
		t.Errorf("line 2 = %q, want %q", got, "line3")
	}
	if _, err := r.Line(3, LineLF); !errors.Is(err, ErrLineOutOfBounds) {
		t.Errorf("line 3: %v", err)
	}
}

func TestTrailingLineBreak(t *testing.T) {
	r := mustRope(t, "one\ntwo\n")
	if got := r.LenLines(LineLF); got != 3 {
		t.Errorf("LenLines = %d, want 3", got)
	}
	if got := r.MustLine(2, LineLF).String(); got != "" {
		t.Errorf("trailing line = %q, want empty", got)
	}
}

func TestConversionsLongText(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 1500; i++ {
		sb.WriteString("line ")
		sb.WriteString(strings.Repeat("é", i%7))
		sb.WriteString("😀\r\n")
	}
	text := sb.String()
	r := mustRope(t, text)
	checkRope(t, &r, text)

	// Spot-check conversions against scans of the reference string.
	for _, byteIdx := range []int{0, 1, 5, 100, 1000, len(text) / 2, len(text)} {
		for byteIdx < len(text) && !utf8.RuneStart(text[byteIdx]) {
			byteIdx++
		}
		wantChar := utf8.RuneCountInString(text[:byteIdx])
		if got := r.MustByteToChar(byteIdx); got != wantChar {
			t.Errorf("ByteToChar(%d) = %d, want %d", byteIdx, got, wantChar)
		}
		if got := r.MustCharToByte(wantChar); got != byteIdx {
			t.Errorf("CharToByte(%d) = %d, want %d", wantChar, got, byteIdx)
		}
		wantLine := strings.Count(text[:byteIdx], "\n")
		if got := r.MustByteToLine(byteIdx, LineLF); got != wantLine {
			t.Errorf("ByteToLine(%d) = %d, want %d", byteIdx, got, wantLine)
		}
	}

	// Line starts round-trip through the two line conversions.
	for _, lineIdx := range []int{0, 1, 10, 700, 1499} {
		start := r.MustLineToByte(lineIdx, LineLF)
		if got := r.MustByteToLine(start, LineLF); got != lineIdx {
			t.Errorf("ByteToLine(LineToByte(%d)) = %d", lineIdx, got)
		}
	}

	// UTF-16 offsets round-trip on scalar boundaries.
	for _, byteIdx := range []int{0, 5, 1000, len(text)} {
		for byteIdx < len(text) && !utf8.RuneStart(text[byteIdx]) {
			byteIdx++
		}
		u := r.MustByteToUTF16(byteIdx)
		if got := r.MustUTF16ToByte(u); got != byteIdx {
			t.Errorf("UTF16ToByte(ByteToUTF16(%d)) = %d", byteIdx, got)
		}
	}
}

func TestChunkAtByte(t *testing.T) {
	text := strings.Repeat("0123456789", 2000)
	r := mustRope(t, text)

	for _, idx := range []int{0, 1, 9999, len(text)} {
		chunk, start, err := r.ChunkAtByte(idx)
		if err != nil {
			t.Fatalf("ChunkAtByte(%d): %v", idx, err)
		}
		if start.Bytes > idx || start.Bytes+len(chunk) < idx {
			t.Errorf("chunk [%d, %d) does not cover %d", start.Bytes, start.Bytes+len(chunk), idx)
		}
		if string(chunk) != text[start.Bytes:start.Bytes+len(chunk)] {
			t.Errorf("chunk content mismatch at %d", idx)
		}
		if start.Chars != utf8.RuneCountInString(text[:start.Bytes]) {
			t.Errorf("chunk start chars mismatch at %d", idx)
		}
	}
}

func TestEqual(t *testing.T) {
	text := strings.Repeat("chunked differently\n", 500)

	// Same text arriving in different chunkings must compare equal.
	a := mustRope(t, text)
	b := New()
	for i := 0; i < len(text); i += 37 {
		end := i + 37
		if end > len(text) {
			end = len(text)
		}
		b.MustInsert(b.LenBytes(), text[i:end])
	}

	if !a.Equal(&b) {
		t.Error("ropes with equal text should be Equal")
	}
	if !a.EqualString(text) {
		t.Error("EqualString should match")
	}

	b.MustInsert(0, "x")
	if a.Equal(&b) {
		t.Error("different texts should not be Equal")
	}
}

func TestWriteToHashIndependentOfChunking(t *testing.T) {
	text := strings.Repeat("hash me\n", 700)

	a := mustRope(t, text)
	b := New()
	for i := len(text); i > 0; i -= 13 {
		start := i - 13
		if start < 0 {
			start = 0
		}
		b.MustInsert(0, text[start:i])
	}

	ha, hb := fnv.New64a(), fnv.New64a()
	if _, err := a.WriteTo(ha); err != nil {
		t.Fatal(err)
	}
	if _, err := b.WriteTo(hb); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ha.Sum(nil), hb.Sum(nil)) {
		t.Error("hash should not depend on internal chunking")
	}
}

func TestFromReader(t *testing.T) {
	text := strings.Repeat("from a reader\n", 5000)
	r, err := FromReader(strings.NewReader(text))
	if err != nil {
		t.Fatal(err)
	}
	checkRope(t, &r, text)
}
