package textrope

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/textrope/internal/strutil"
)

// RopeSlice is a non-owning, read-only view over a byte range of a rope,
// or directly over a foreign contiguous UTF-8 buffer. A slice is valid
// until its underlying rope is mutated; slices of distinct clones are
// independent.
//
// Fully contiguous ranges (a run inside one leaf, or a foreign buffer)
// take a light representation that skips the tree walk entirely.
type RopeSlice struct {
	// Light variant.
	light bool
	data  []byte

	// Heavy variant.
	root  *node
	start int
	end   int

	info TextInfo
}

// makeSlice builds a view of [start, end) over the given tree, choosing
// the light representation when the range sits inside a single leaf.
func makeSlice(root *node, start, end int) RopeSlice {
	if root == nil || start == end {
		return RopeSlice{light: true}
	}
	chunk, cstart := root.chunkAt(start)
	if end <= cstart.Bytes+len(chunk) {
		data := chunk[start-cstart.Bytes : end-cstart.Bytes]
		return RopeSlice{light: true, data: data, info: computeTextInfo(data)}
	}

	info := root.textInfoPrefix(end).Sub(root.textInfoPrefix(start))
	// A range starting between the CR and LF of a CRLF pair sees the LF
	// as its own break.
	if start > 0 && root.byteAt(start-1) == '\r' && root.byteAt(start) == '\n' {
		info.LineBreaksLFCR++
		info.LineBreaksUnicode++
	}
	return RopeSlice{root: root, start: start, end: end, info: info}
}

// SliceFromBytes wraps a foreign contiguous UTF-8 buffer as a slice.
// The buffer must not be modified while the slice is in use.
func SliceFromBytes(b []byte) (RopeSlice, error) {
	if !utf8.Valid(b) {
		return RopeSlice{}, ErrNonUTF8Input
	}
	return RopeSlice{light: true, data: b, info: computeTextInfo(b)}, nil
}

// SliceFromString wraps a string as a slice.
func SliceFromString(s string) (RopeSlice, error) {
	return SliceFromBytes([]byte(s))
}

// Info returns the aggregate counts for the slice.
func (s RopeSlice) Info() TextInfo {
	return s.info
}

// LenBytes returns the slice length in bytes.
func (s RopeSlice) LenBytes() int {
	return s.info.Bytes
}

// LenChars returns the slice length in scalar values.
func (s RopeSlice) LenChars() int {
	return s.info.Chars
}

// LenUTF16 returns the slice length in UTF-16 code units.
func (s RopeSlice) LenUTF16() int {
	return s.info.UTF16Units()
}

// LenLines returns the slice's line count for the given flavor.
func (s RopeSlice) LenLines(t LineType) int {
	return s.info.LineBreaks(t) + 1
}

// Byte returns the byte at the slice-relative index.
func (s RopeSlice) Byte(byteIdx int) (byte, error) {
	if byteIdx < 0 || byteIdx >= s.info.Bytes {
		return 0, errOutOfBounds("byte", byteIdx, s.info.Bytes)
	}
	if s.light {
		return s.data[byteIdx], nil
	}
	return s.root.byteAt(s.start + byteIdx), nil
}

// CharAtByte returns the scalar value starting at the slice-relative
// byte index.
func (s RopeSlice) CharAtByte(byteIdx int) (rune, error) {
	if byteIdx < 0 || byteIdx >= s.info.Bytes {
		return 0, errOutOfBounds("byte", byteIdx, s.info.Bytes)
	}
	if s.light {
		if !strutil.IsCharBoundary(s.data, byteIdx) {
			return 0, errNotACharBoundary(byteIdx)
		}
		c, _ := utf8.DecodeRune(s.data[byteIdx:])
		return c, nil
	}
	chunk, cstart := s.root.chunkAt(s.start + byteIdx)
	off := s.start + byteIdx - cstart.Bytes
	if !strutil.IsCharBoundary(chunk, off) {
		return 0, errNotACharBoundary(byteIdx)
	}
	c, _ := utf8.DecodeRune(chunk[off:])
	return c, nil
}

// ByteToChar returns the number of scalar values before the
// slice-relative byte index.
func (s RopeSlice) ByteToChar(byteIdx int) (int, error) {
	if err := s.validateByteIdx(byteIdx); err != nil {
		return 0, err
	}
	if s.light {
		return strutil.ByteToCharIdx(s.data, byteIdx), nil
	}
	return s.root.byteToChar(s.start+byteIdx) - s.root.byteToChar(s.start), nil
}

// CharToByte returns the slice-relative byte index of the charIdx-th
// scalar value.
func (s RopeSlice) CharToByte(charIdx int) (int, error) {
	if charIdx < 0 || charIdx > s.info.Chars {
		return 0, errOutOfBounds("char", charIdx, s.info.Chars)
	}
	if s.light {
		return strutil.CharToByteIdx(s.data, charIdx), nil
	}
	base := s.root.byteToChar(s.start)
	return s.root.charToByte(base+charIdx) - s.start, nil
}

// ByteToUTF16 returns the number of UTF-16 code units before the
// slice-relative byte index.
func (s RopeSlice) ByteToUTF16(byteIdx int) (int, error) {
	if err := s.validateByteIdx(byteIdx); err != nil {
		return 0, err
	}
	if s.light {
		return strutil.ByteToUTF16Idx(s.data, byteIdx), nil
	}
	return s.root.byteToUTF16(s.start+byteIdx) - s.root.byteToUTF16(s.start), nil
}

// UTF16ToByte returns the slice-relative byte index of the u16Idx-th
// UTF-16 code unit.
func (s RopeSlice) UTF16ToByte(u16Idx int) (int, error) {
	if u16Idx < 0 || u16Idx > s.info.UTF16Units() {
		return 0, errOutOfBounds("utf16", u16Idx, s.info.UTF16Units())
	}
	if s.light {
		return strutil.UTF16ToByteIdx(s.data, u16Idx), nil
	}
	base := s.root.byteToUTF16(s.start)
	return s.root.utf16ToByte(base+u16Idx) - s.start, nil
}

// ByteToLine returns the slice-relative line index containing byteIdx.
func (s RopeSlice) ByteToLine(byteIdx int, t LineType) (int, error) {
	if err := s.validateByteIdx(byteIdx); err != nil {
		return 0, err
	}
	if s.light {
		return strutil.ByteToLineIdx(s.data, byteIdx, t.flavor()), nil
	}
	return s.root.byteToLine(s.start+byteIdx, t) - s.root.byteToLine(s.start, t), nil
}

// LineToByte returns the slice-relative byte index of the start of line
// lineIdx.
func (s RopeSlice) LineToByte(lineIdx int, t LineType) (int, error) {
	lines := s.LenLines(t)
	if lineIdx < 0 || lineIdx > lines {
		return 0, errLineOutOfBounds(lineIdx, lines)
	}
	if lineIdx == 0 {
		return 0, nil
	}
	if s.light {
		return strutil.LineToByteIdx(s.data, lineIdx, t.flavor()), nil
	}
	base := s.root.byteToLine(s.start, t)
	abs := s.root.lineToByte(base+lineIdx, t)
	if abs < s.start {
		abs = s.start
	}
	if abs > s.end {
		abs = s.end
	}
	return abs - s.start, nil
}

// Line returns the given line of the slice, including its trailing
// break.
func (s RopeSlice) Line(lineIdx int, t LineType) (RopeSlice, error) {
	lines := s.LenLines(t)
	if lineIdx < 0 || lineIdx >= lines {
		return RopeSlice{}, errLineOutOfBounds(lineIdx, lines)
	}
	start, err := s.LineToByte(lineIdx, t)
	if err != nil {
		return RopeSlice{}, err
	}
	end := s.info.Bytes
	if lineIdx < lines-1 {
		end, err = s.LineToByte(lineIdx+1, t)
		if err != nil {
			return RopeSlice{}, err
		}
	}
	return s.Slice(start, end)
}

// Slice returns a sub-view of the slice.
func (s RopeSlice) Slice(start, end int) (RopeSlice, error) {
	if start > end {
		return RopeSlice{}, errInvalidRange(start, end)
	}
	if err := s.validateByteIdx(start); err != nil {
		return RopeSlice{}, err
	}
	if err := s.validateByteIdx(end); err != nil {
		return RopeSlice{}, err
	}
	if s.light {
		data := s.data[start:end]
		return RopeSlice{light: true, data: data, info: computeTextInfo(data)}, nil
	}
	return makeSlice(s.root, s.start+start, s.start+end), nil
}

// Chunks returns a bidirectional iterator over the slice's chunks.
func (s RopeSlice) Chunks() *Chunks {
	if s.light {
		return &Chunks{data: s.data, start: 0, end: len(s.data)}
	}
	return &Chunks{root: s.root, start: s.start, end: s.end}
}

// Rope materializes the slice as an independent rope. For heavy slices
// this clones the minimal subtree and trims the ends via splits, sharing
// interior nodes with the source.
func (s RopeSlice) Rope() Rope {
	if s.light {
		r, err := FromBytes(s.data)
		if err != nil {
			// The slice was validated at construction.
			panic(err)
		}
		return r
	}
	s.root.retain()
	r := Rope{root: s.root, info: s.root.textInfo()}
	tail, err := r.SplitOff(s.end)
	if err != nil {
		panic(err)
	}
	tail.root.release()
	out, err := r.SplitOff(s.start)
	if err != nil {
		panic(err)
	}
	r.root.release()
	return out
}

// String returns the slice contents.
func (s RopeSlice) String() string {
	if s.light {
		return string(s.data)
	}
	var sb strings.Builder
	sb.Grow(s.info.Bytes)
	it := s.Chunks()
	for {
		chunk, ok := it.Next()
		if !ok {
			break
		}
		sb.Write(chunk)
	}
	return sb.String()
}

// EqualString reports whether the slice's contents equal str.
func (s RopeSlice) EqualString(str string) bool {
	if s.info.Bytes != len(str) {
		return false
	}
	it := s.Chunks()
	for {
		chunk, ok := it.Next()
		if !ok {
			return len(str) == 0
		}
		if string(chunk) != str[:len(chunk)] {
			return false
		}
		str = str[len(chunk):]
	}
}

func (s RopeSlice) validateByteIdx(byteIdx int) error {
	if byteIdx < 0 || byteIdx > s.info.Bytes {
		return errOutOfBounds("byte", byteIdx, s.info.Bytes)
	}
	if byteIdx == 0 || byteIdx == s.info.Bytes {
		return nil
	}
	if s.light {
		if !strutil.IsCharBoundary(s.data, byteIdx) {
			return errNotACharBoundary(byteIdx)
		}
		return nil
	}
	chunk, cstart := s.root.chunkAt(s.start + byteIdx)
	if !strutil.IsCharBoundary(chunk, s.start+byteIdx-cstart.Bytes) {
		return errNotACharBoundary(byteIdx)
	}
	return nil
}
