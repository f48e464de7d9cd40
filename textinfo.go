package textrope

import "github.com/dshills/textrope/internal/strutil"

// LineType selects which line-break flavor a line-based operation uses.
// All flavors are tracked simultaneously; the argument only picks the
// counter to read.
type LineType uint8

const (
	// LineLF recognizes only LF as a line break.
	LineLF LineType = iota

	// LineLFCR recognizes LF, CR, and CRLF, with CRLF counting once.
	LineLFCR

	// LineUnicode recognizes the full Unicode line-break set: LF, VT,
	// FF, CR, CRLF, NEL, LS, and PS.
	LineUnicode
)

// String returns the flavor name.
func (t LineType) String() string {
	switch t {
	case LineLF:
		return "lf"
	case LineLFCR:
		return "lf-cr"
	case LineUnicode:
		return "unicode"
	default:
		return "unknown"
	}
}

func (t LineType) flavor() strutil.LineFlavor {
	switch t {
	case LineLF:
		return strutil.FlavorLF
	case LineLFCR:
		return strutil.FlavorLFCR
	default:
		return strutil.FlavorUnicode
	}
}

// TextInfo aggregates the counts tracked for a span of text. It forms a
// commutative monoid under Add, which is what lets subtree metadata be
// maintained in O(fan-out) during splits and concatenations.
type TextInfo struct {
	// Bytes is the UTF-8 byte count.
	Bytes int

	// Chars is the scalar-value count.
	Chars int

	// UTF16Surrogates is the number of extra UTF-16 code units
	// contributed by supplementary-plane scalar values, so the total
	// UTF-16 length is Chars + UTF16Surrogates.
	UTF16Surrogates int

	// LineBreaksLF counts LF line breaks.
	LineBreaksLF int

	// LineBreaksLFCR counts LF, CR, and CRLF line breaks, with CRLF
	// collapsed to one.
	LineBreaksLFCR int

	// LineBreaksUnicode counts all Unicode line breaks, with CRLF
	// collapsed to one.
	LineBreaksUnicode int
}

// Add returns the componentwise sum of two infos.
func (ti TextInfo) Add(other TextInfo) TextInfo {
	return TextInfo{
		Bytes:             ti.Bytes + other.Bytes,
		Chars:             ti.Chars + other.Chars,
		UTF16Surrogates:   ti.UTF16Surrogates + other.UTF16Surrogates,
		LineBreaksLF:      ti.LineBreaksLF + other.LineBreaksLF,
		LineBreaksLFCR:    ti.LineBreaksLFCR + other.LineBreaksLFCR,
		LineBreaksUnicode: ti.LineBreaksUnicode + other.LineBreaksUnicode,
	}
}

// Sub returns the componentwise difference of two infos. Used during
// edits to maintain parent aggregates without rescanning unchanged
// siblings.
func (ti TextInfo) Sub(other TextInfo) TextInfo {
	return TextInfo{
		Bytes:             ti.Bytes - other.Bytes,
		Chars:             ti.Chars - other.Chars,
		UTF16Surrogates:   ti.UTF16Surrogates - other.UTF16Surrogates,
		LineBreaksLF:      ti.LineBreaksLF - other.LineBreaksLF,
		LineBreaksLFCR:    ti.LineBreaksLFCR - other.LineBreaksLFCR,
		LineBreaksUnicode: ti.LineBreaksUnicode - other.LineBreaksUnicode,
	}
}

// UTF16Units returns the UTF-16 code-unit count.
func (ti TextInfo) UTF16Units() int {
	return ti.Chars + ti.UTF16Surrogates
}

// LineBreaks returns the line-break count for the given flavor.
func (ti TextInfo) LineBreaks(t LineType) int {
	switch t {
	case LineLF:
		return ti.LineBreaksLF
	case LineLFCR:
		return ti.LineBreaksLFCR
	default:
		return ti.LineBreaksUnicode
	}
}

// computeTextInfo scans a contiguous UTF-8 buffer and returns every
// tracked count.
func computeTextInfo(b []byte) TextInfo {
	chars, surrogates, lf, lfcr, unicode := strutil.Counts(b)
	return TextInfo{
		Bytes:             len(b),
		Chars:             chars,
		UTF16Surrogates:   surrogates,
		LineBreaksLF:      lf,
		LineBreaksLFCR:    lfcr,
		LineBreaksUnicode: unicode,
	}
}
