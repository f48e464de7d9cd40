package textrope

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dshills/textrope/internal/strutil"
)

var lfByte = []byte{'\n'}

// Rope is a UTF-8 text buffer backed by a copy-on-write b-tree. Random
// access edits run in roughly O(log N), and the cached per-subtree
// aggregates convert between byte, scalar-value, UTF-16, and line
// offsets in O(log N).
//
// Clone is O(1) and shares storage; a mutation through one handle clones
// only the shared nodes on its path, so every other handle keeps a
// stable snapshot. Distinct handles may be read and mutated from
// different goroutines without locking. A single handle is not safe for
// concurrent mutation, and plain struct assignment does not register
// sharing: use Clone.
//
// The zero value is an empty rope.
type Rope struct {
	root *node
	info TextInfo
}

// New creates an empty rope.
func New() Rope {
	return Rope{root: newEmptyLeafNode()}
}

// FromString creates a rope from s. Returns ErrNonUTF8Input when s is
// not valid UTF-8.
func FromString(s string) (Rope, error) {
	var b Builder
	if err := b.WriteString(s); err != nil {
		return Rope{}, err
	}
	return b.Build()
}

// FromBytes creates a rope from a UTF-8 byte buffer.
func FromBytes(p []byte) (Rope, error) {
	var b Builder
	if _, err := b.Write(p); err != nil {
		return Rope{}, err
	}
	return b.Build()
}

// FromReader creates a rope from the contents of rd, validating UTF-8
// incrementally as it streams.
func FromReader(rd io.Reader) (Rope, error) {
	var b Builder
	buf := make([]byte, 64*1024)
	for {
		n, err := rd.Read(buf)
		if n > 0 {
			if _, werr := b.Write(buf[:n]); werr != nil {
				return Rope{}, werr
			}
		}
		if err == io.EOF {
			return b.Build()
		}
		if err != nil {
			return Rope{}, err
		}
	}
}

// Clone returns a new handle sharing this rope's storage. O(1); no text
// is copied until one side mutates.
func (r *Rope) Clone() Rope {
	if r.root == nil {
		return New()
	}
	r.root.retain()
	return Rope{root: r.root, info: r.info}
}

// IsInstance reports whether other shares this rope's root node. It can
// only remain true until either side mutates.
func (r *Rope) IsInstance(other *Rope) bool {
	return r.root != nil && r.root == other.root
}

// Info returns the aggregate counts for the whole rope.
func (r *Rope) Info() TextInfo {
	return r.info
}

// LenBytes returns the length in bytes.
func (r *Rope) LenBytes() int {
	return r.info.Bytes
}

// LenChars returns the length in scalar values.
func (r *Rope) LenChars() int {
	return r.info.Chars
}

// LenUTF16 returns the length in UTF-16 code units.
func (r *Rope) LenUTF16() int {
	return r.info.UTF16Units()
}

// LenLines returns the number of lines for the given flavor: line breaks
// plus one. An empty rope has one empty line, and a rope ending in a
// break has a trailing empty line.
func (r *Rope) LenLines(t LineType) int {
	return r.info.LineBreaks(t) + 1
}

//-----------------------------------------------------------------------
// Edits

// Insert splices text in at byteIdx, which must lie on a scalar-value
// boundary.
func (r *Rope) Insert(byteIdx int, text string) error {
	r.ensureRoot()
	if err := r.validateByteIdx(byteIdx); err != nil {
		return err
	}
	if len(text) == 0 {
		return nil
	}
	if !utf8.ValidString(text) {
		return ErrNonUTF8Input
	}

	// Feed the tree boundary-safe pieces no larger than a leaf; the
	// recursive path handles root splits per piece.
	b := []byte(text)
	at := byteIdx
	for len(b) > 0 {
		piece := b
		if len(piece) > maxLeafBytes {
			split := strutil.FindGoodSplit(b, maxLeafBytes, true)
			if split == 0 {
				split = len(b)
			}
			piece = b[:split]
		}
		r.insertRaw(at, piece)
		at += len(piece)
		b = b[len(piece):]
	}

	r.fixSeam(byteIdx)
	r.fixSeam(byteIdx + len(text))
	return nil
}

// Remove deletes the bytes in [start, end). Both ends must lie on
// scalar-value boundaries.
func (r *Rope) Remove(start, end int) error {
	r.ensureRoot()
	if err := r.validateByteRange(start, end); err != nil {
		return err
	}
	if start == end {
		return nil
	}
	if start == 0 && end == r.info.Bytes {
		r.root.release()
		r.root = newEmptyLeafNode()
		r.info = TextInfo{}
		return nil
	}
	r.removeRaw(start, end)
	r.fixSeam(start)
	return nil
}

// Edit replaces the bytes in [start, end) with text. An empty range is a
// pure insertion; empty text is a pure removal.
func (r *Rope) Edit(start, end int, text string) error {
	if err := r.Remove(start, end); err != nil {
		return err
	}
	return r.Insert(start, text)
}

// SplitOff cuts the rope at byteIdx, retaining [0, byteIdx) and
// returning the rest as a new rope.
func (r *Rope) SplitOff(byteIdx int) (Rope, error) {
	r.ensureRoot()
	if err := r.validateByteIdx(byteIdx); err != nil {
		return Rope{}, err
	}
	if byteIdx == 0 {
		out := Rope{root: r.root, info: r.info}
		*r = New()
		return out, nil
	}
	if byteIdx == r.info.Bytes {
		return New(), nil
	}

	root := makeUnique(r.root)
	rnode := root.split(byteIdx)
	root.zipFixRight()
	rnode.zipFixLeft()

	r.root = root
	r.pullUpSingular()
	r.info = r.root.textInfo()

	other := Rope{root: rnode}
	other.pullUpSingular()
	other.info = other.root.textInfo()
	return other, nil
}

// Append concatenates other onto the end of this rope, consuming it:
// other must not be used afterward.
func (r *Rope) Append(other Rope) {
	r.ensureRoot()
	if other.root == nil || other.info.Bytes == 0 {
		return
	}
	if r.info.Bytes == 0 {
		r.root.release()
		*r = other
		return
	}

	seam := r.info.Bytes
	ld, rd := r.root.depth(), other.root.depth()
	if ld >= rd {
		root := makeUnique(r.root)
		extra := root.appendAtDepth(other.root, ld-rd)
		if extra != nil {
			c := &children{}
			c.push(root.textInfo(), root)
			c.push(extra.textInfo(), extra)
			root = newInternalNode(c)
		}
		r.root = root
	} else {
		oroot := makeUnique(other.root)
		extra := oroot.prependAtDepth(r.root, rd-ld)
		if extra != nil {
			c := &children{}
			c.push(extra.textInfo(), extra)
			c.push(oroot.textInfo(), oroot)
			oroot = newInternalNode(c)
		}
		r.root = oroot
	}
	r.info = r.root.textInfo()
	r.fixSeam(seam)
}

//-----------------------------------------------------------------------
// Index conversions

// ByteToChar returns the number of scalar values before byteIdx.
func (r *Rope) ByteToChar(byteIdx int) (int, error) {
	if err := r.validateByteIdx(byteIdx); err != nil {
		return 0, err
	}
	if r.root == nil {
		return 0, nil
	}
	return r.root.byteToChar(byteIdx), nil
}

// CharToByte returns the byte index of the charIdx-th scalar value.
func (r *Rope) CharToByte(charIdx int) (int, error) {
	if charIdx < 0 || charIdx > r.info.Chars {
		return 0, errOutOfBounds("char", charIdx, r.info.Chars)
	}
	if r.root == nil {
		return 0, nil
	}
	return r.root.charToByte(charIdx), nil
}

// ByteToUTF16 returns the number of UTF-16 code units before byteIdx.
func (r *Rope) ByteToUTF16(byteIdx int) (int, error) {
	if err := r.validateByteIdx(byteIdx); err != nil {
		return 0, err
	}
	if r.root == nil {
		return 0, nil
	}
	return r.root.byteToUTF16(byteIdx), nil
}

// UTF16ToByte returns the byte index of the u16Idx-th UTF-16 code unit.
// An index inside a surrogate pair resolves to the pair's start.
func (r *Rope) UTF16ToByte(u16Idx int) (int, error) {
	if u16Idx < 0 || u16Idx > r.info.UTF16Units() {
		return 0, errOutOfBounds("utf16", u16Idx, r.info.UTF16Units())
	}
	if r.root == nil {
		return 0, nil
	}
	return r.root.utf16ToByte(u16Idx), nil
}

// ByteToLine returns the index of the line containing byteIdx for the
// given flavor.
func (r *Rope) ByteToLine(byteIdx int, t LineType) (int, error) {
	if err := r.validateByteIdx(byteIdx); err != nil {
		return 0, err
	}
	if r.root == nil {
		return 0, nil
	}
	return r.root.byteToLine(byteIdx, t), nil
}

// LineToByte returns the byte index of the start of line lineIdx for the
// given flavor. lineIdx equal to the line count maps to the rope's end.
func (r *Rope) LineToByte(lineIdx int, t LineType) (int, error) {
	lines := r.LenLines(t)
	if lineIdx < 0 || lineIdx > lines {
		return 0, errLineOutOfBounds(lineIdx, lines)
	}
	if r.root == nil || lineIdx == 0 {
		return 0, nil
	}
	return r.root.lineToByte(lineIdx, t), nil
}

//-----------------------------------------------------------------------
// Queries

// Byte returns the byte at byteIdx.
func (r *Rope) Byte(byteIdx int) (byte, error) {
	if byteIdx < 0 || byteIdx >= r.info.Bytes {
		return 0, errOutOfBounds("byte", byteIdx, r.info.Bytes)
	}
	return r.root.byteAt(byteIdx), nil
}

// CharAtByte returns the scalar value starting at byteIdx.
func (r *Rope) CharAtByte(byteIdx int) (rune, error) {
	if byteIdx < 0 || byteIdx >= r.info.Bytes {
		return 0, errOutOfBounds("byte", byteIdx, r.info.Bytes)
	}
	chunk, start := r.root.chunkAt(byteIdx)
	off := byteIdx - start.Bytes
	if !strutil.IsCharBoundary(chunk, off) {
		return 0, errNotACharBoundary(byteIdx)
	}
	c, _ := utf8.DecodeRune(chunk[off:])
	return c, nil
}

// ChunkAtByte returns the leaf chunk containing byteIdx along with the
// aggregate counts of everything before the chunk; the counts carry the
// chunk's starting offset in every tracked metric. The returned bytes
// must not be modified.
func (r *Rope) ChunkAtByte(byteIdx int) ([]byte, TextInfo, error) {
	if byteIdx < 0 || byteIdx > r.info.Bytes {
		return nil, TextInfo{}, errOutOfBounds("byte", byteIdx, r.info.Bytes)
	}
	if r.root == nil {
		return nil, TextInfo{}, nil
	}
	chunk, start := r.root.chunkAt(byteIdx)
	return chunk, start, nil
}

// Line returns the given line as a slice, including its trailing break.
func (r *Rope) Line(lineIdx int, t LineType) (RopeSlice, error) {
	lines := r.LenLines(t)
	if lineIdx < 0 || lineIdx >= lines {
		return RopeSlice{}, errLineOutOfBounds(lineIdx, lines)
	}
	start, err := r.LineToByte(lineIdx, t)
	if err != nil {
		return RopeSlice{}, err
	}
	end := r.info.Bytes
	if lineIdx < lines-1 {
		end, err = r.LineToByte(lineIdx+1, t)
		if err != nil {
			return RopeSlice{}, err
		}
	}
	return makeSlice(r.root, start, end), nil
}

// Slice returns a read-only view of the byte range [start, end). The
// slice is valid until the rope is mutated.
func (r *Rope) Slice(start, end int) (RopeSlice, error) {
	if err := r.validateByteRange(start, end); err != nil {
		return RopeSlice{}, err
	}
	return makeSlice(r.root, start, end), nil
}

// String returns the rope's contents. Use sparingly for large ropes.
func (r *Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(r.info.Bytes)
	it := r.Chunks()
	for {
		chunk, ok := it.Next()
		if !ok {
			break
		}
		sb.Write(chunk)
	}
	return sb.String()
}

// WriteTo streams the rope's bytes to w in order. This is the canonical
// byte stream: feeding it to a hash yields the same digest for equal
// texts regardless of internal chunking.
func (r *Rope) WriteTo(w io.Writer) (int64, error) {
	var total int64
	it := r.Chunks()
	for {
		chunk, ok := it.Next()
		if !ok {
			return total, nil
		}
		n, err := w.Write(chunk)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
}

// Equal reports whether two ropes hold the same bytes, regardless of
// their internal chunking.
func (r *Rope) Equal(other *Rope) bool {
	if r.info.Bytes != other.info.Bytes {
		return false
	}
	a, b := r.Chunks(), other.Chunks()
	var ca, cb []byte
	for {
		if len(ca) == 0 {
			chunk, ok := a.Next()
			if !ok {
				return len(cb) == 0
			}
			ca = chunk
		}
		if len(cb) == 0 {
			chunk, ok := b.Next()
			if !ok {
				return false
			}
			cb = chunk
		}
		n := len(ca)
		if len(cb) < n {
			n = len(cb)
		}
		if string(ca[:n]) != string(cb[:n]) {
			return false
		}
		ca, cb = ca[n:], cb[n:]
	}
}

// EqualString reports whether the rope's contents equal s.
func (r *Rope) EqualString(s string) bool {
	if r.info.Bytes != len(s) {
		return false
	}
	it := r.Chunks()
	for {
		chunk, ok := it.Next()
		if !ok {
			return len(s) == 0
		}
		if string(chunk) != s[:len(chunk)] {
			return false
		}
		s = s[len(chunk):]
	}
}

//-----------------------------------------------------------------------
// Internals

func (r *Rope) ensureRoot() {
	if r.root == nil {
		r.root = newEmptyLeafNode()
	}
}

func (r *Rope) validateByteIdx(byteIdx int) error {
	if byteIdx < 0 || byteIdx > r.info.Bytes {
		return errOutOfBounds("byte", byteIdx, r.info.Bytes)
	}
	if byteIdx == 0 || byteIdx == r.info.Bytes {
		return nil
	}
	chunk, start := r.root.chunkAt(byteIdx)
	if !strutil.IsCharBoundary(chunk, byteIdx-start.Bytes) {
		return errNotACharBoundary(byteIdx)
	}
	return nil
}

func (r *Rope) validateByteRange(start, end int) error {
	if start > end {
		return errInvalidRange(start, end)
	}
	if err := r.validateByteIdx(start); err != nil {
		return err
	}
	return r.validateByteIdx(end)
}

// insertRaw splices a single boundary-safe piece without seam repair.
func (r *Rope) insertRaw(byteIdx int, text []byte) {
	root := makeUnique(r.root)
	extras := root.insert(byteIdx, text)
	if len(extras) > 0 {
		c := &children{}
		c.push(root.textInfo(), root)
		for _, e := range extras {
			c.push(e.textInfo(), e)
		}
		root = newInternalNode(c)
	}
	r.root = root
	r.info = r.root.textInfo()
}

// removeRaw deletes a range without seam repair. The range must not
// cover the whole rope.
func (r *Rope) removeRaw(start, end int) {
	root := makeUnique(r.root)
	if root.remove(start, end) {
		root.zipFix(start)
	}
	r.root = root
	r.pullUpSingular()
	r.info = r.root.textInfo()
}

// fixSeam repairs a leaf boundary that falls between the CR and LF of a
// CRLF pair, re-splicing the LF so it lands at the end of the left leaf.
// The line counters depend on no leaf boundary ever splitting a CRLF.
func (r *Rope) fixSeam(byteIdx int) {
	if byteIdx <= 0 || byteIdx >= r.info.Bytes {
		return
	}
	chunk, start := r.root.chunkAt(byteIdx)
	if byteIdx != start.Bytes {
		return
	}
	if len(chunk) == 0 || chunk[0] != '\n' {
		return
	}
	if r.root.byteAt(byteIdx-1) != '\r' {
		return
	}
	r.removeRaw(byteIdx, byteIdx+1)
	r.insertRaw(byteIdx, lfByte)
}

// pullUpSingular collapses the root while it is an internal node with a
// single child, reducing tree height.
func (r *Rope) pullUpSingular() {
	for !r.root.isLeaf() && r.root.kids.n == 1 {
		child := r.root.kids.nodes[0]
		if r.root.refs.Load() == 1 {
			r.root.kids.nodes[0] = nil
			r.root.kids.n = 0
		} else {
			child.retain()
		}
		r.root.release()
		r.root = child
	}
}
