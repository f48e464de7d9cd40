package textrope

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// ByteIter iterates over the bytes of a rope in order.
type ByteIter struct {
	ch     *Chunks
	chunk  []byte
	i      int
	offset int
	cur    byte
}

// Bytes returns an iterator over all bytes of the rope.
func (r *Rope) Bytes() *ByteIter {
	return &ByteIter{ch: r.Chunks(), offset: -1}
}

// Next advances to the next byte. Returns false when exhausted.
func (it *ByteIter) Next() bool {
	for it.i >= len(it.chunk) {
		chunk, ok := it.ch.Next()
		if !ok {
			return false
		}
		it.chunk = chunk
		it.i = 0
	}
	it.cur = it.chunk[it.i]
	it.i++
	it.offset++
	return true
}

// Byte returns the current byte.
func (it *ByteIter) Byte() byte {
	return it.cur
}

// Offset returns the byte offset of the current byte.
func (it *ByteIter) Offset() int {
	return it.offset
}

// RuneIter iterates over the scalar values of a rope in order. Leaf
// boundaries always fall on scalar-value boundaries, so every rune
// decodes within a single chunk.
type RuneIter struct {
	ch     *Chunks
	chunk  []byte
	i      int
	offset int
	cur    rune
	size   int
}

// Runes returns an iterator over all scalar values of the rope.
func (r *Rope) Runes() *RuneIter {
	return &RuneIter{ch: r.Chunks()}
}

// Next advances to the next scalar value. Returns false when exhausted.
func (it *RuneIter) Next() bool {
	for it.i >= len(it.chunk) {
		chunk, ok := it.ch.Next()
		if !ok {
			return false
		}
		it.chunk = chunk
		it.i = 0
	}
	it.offset += it.size
	it.cur, it.size = utf8.DecodeRune(it.chunk[it.i:])
	it.i += it.size
	return true
}

// Rune returns the current scalar value.
func (it *RuneIter) Rune() rune {
	return it.cur
}

// Size returns the byte width of the current scalar value.
func (it *RuneIter) Size() int {
	return it.size
}

// Offset returns the byte offset of the current scalar value.
func (it *RuneIter) Offset() int {
	return it.offset
}

// LineIter iterates over the lines of a rope for one line-break flavor.
// Each line includes its trailing break; a rope ending in a break yields
// a final empty line.
type LineIter struct {
	r       *Rope
	t       LineType
	lineIdx int
	cur     RopeSlice
	started bool
}

// Lines returns an iterator over the rope's lines in the given flavor.
func (r *Rope) Lines(t LineType) *LineIter {
	return &LineIter{r: r, t: t}
}

// Next advances to the next line. Returns false when exhausted.
func (it *LineIter) Next() bool {
	if it.started {
		it.lineIdx++
	}
	it.started = true
	if it.lineIdx >= it.r.LenLines(it.t) {
		return false
	}
	line, err := it.r.Line(it.lineIdx, it.t)
	if err != nil {
		return false
	}
	it.cur = line
	return true
}

// Line returns the current line as a slice.
func (it *LineIter) Line() RopeSlice {
	return it.cur
}

// Index returns the current line index.
func (it *LineIter) Index() int {
	return it.lineIdx
}

// GraphemeIter iterates over the grapheme clusters of a rope, stitching
// clusters that span chunk boundaries. A boundary at the very end of the
// pending buffer is only trusted once the source is exhausted, since
// more input could extend the cluster.
type GraphemeIter struct {
	ch      *Chunks
	buf     []byte
	offset  int
	state   int
	cur     []byte
	curAt   int
	srcDone bool
}

// Graphemes returns an iterator over the rope's grapheme clusters.
func (r *Rope) Graphemes() *GraphemeIter {
	return &GraphemeIter{ch: r.Chunks(), state: -1}
}

// GraphemesOf returns an iterator over a slice's grapheme clusters.
func GraphemesOf(s RopeSlice) *GraphemeIter {
	return &GraphemeIter{ch: s.Chunks(), state: -1}
}

func (it *GraphemeIter) fetch() bool {
	if it.srcDone {
		return false
	}
	chunk, ok := it.ch.Next()
	if !ok {
		it.srcDone = true
		return false
	}
	it.buf = append(it.buf, chunk...)
	return true
}

// Next advances to the next grapheme cluster. Returns false when
// exhausted.
func (it *GraphemeIter) Next() bool {
	for {
		if len(it.buf) == 0 {
			if !it.fetch() {
				return false
			}
			continue
		}
		cluster, rest, _, newState := uniseg.FirstGraphemeCluster(it.buf, it.state)
		if len(rest) == 0 && !it.srcDone {
			if it.fetch() {
				continue
			}
		}
		it.cur = cluster
		it.curAt = it.offset
		it.offset += len(cluster)
		it.buf = rest
		it.state = newState
		return true
	}
}

// Grapheme returns the current cluster's bytes.
func (it *GraphemeIter) Grapheme() []byte {
	return it.cur
}

// String returns the current cluster as a string.
func (it *GraphemeIter) String() string {
	return string(it.cur)
}

// Offset returns the byte offset of the current cluster.
func (it *GraphemeIter) Offset() int {
	return it.curAt
}

// graphemeContext bounds how much surrounding text the grapheme
// boundary queries examine on each side of an index. Clusters longer
// than this window are resolved approximately.
const graphemeContext = 256

// graphemeWindow gathers the bytes around byteIdx, starting and ending
// on scalar-value boundaries, and returns the window plus byteIdx's
// offset within it.
func (r *Rope) graphemeWindow(byteIdx int) ([]byte, int) {
	lo := byteIdx - graphemeContext
	if lo < 0 {
		lo = 0
	}
	lo = r.floorCharBoundary(lo)
	hi := byteIdx + graphemeContext
	if hi > r.info.Bytes {
		hi = r.info.Bytes
	}
	hi = r.floorCharBoundary(hi)

	buf := make([]byte, 0, hi-lo)
	it := &Chunks{root: r.root, start: lo, end: hi}
	for {
		chunk, ok := it.Next()
		if !ok {
			break
		}
		buf = append(buf, chunk...)
	}
	return buf, byteIdx - lo
}

func (r *Rope) floorCharBoundary(byteIdx int) int {
	if byteIdx <= 0 || byteIdx >= r.info.Bytes {
		return byteIdx
	}
	chunk, start := r.root.chunkAt(byteIdx)
	off := byteIdx - start.Bytes
	for off > 0 && chunk[off]&0xC0 == 0x80 {
		off--
	}
	return start.Bytes + off
}

// IsGraphemeBoundary reports whether byteIdx falls on a grapheme
// cluster boundary.
func (r *Rope) IsGraphemeBoundary(byteIdx int) (bool, error) {
	if err := r.validateByteIdx(byteIdx); err != nil {
		return false, err
	}
	if byteIdx == 0 || byteIdx == r.info.Bytes {
		return true, nil
	}
	buf, at := r.graphemeWindow(byteIdx)
	off := 0
	state := -1
	for len(buf) > 0 {
		cluster, rest, _, newState := uniseg.FirstGraphemeCluster(buf, state)
		off += len(cluster)
		if off == at {
			return true, nil
		}
		if off > at {
			return false, nil
		}
		buf, state = rest, newState
	}
	return false, nil
}

// PrevGraphemeBoundary returns the grapheme boundary to the left of
// byteIdx, excluding byteIdx itself. Returns 0 at the rope's start.
func (r *Rope) PrevGraphemeBoundary(byteIdx int) (int, error) {
	if err := r.validateByteIdx(byteIdx); err != nil {
		return 0, err
	}
	if byteIdx == 0 {
		return 0, nil
	}
	buf, at := r.graphemeWindow(byteIdx)
	base := byteIdx - at
	prev := 0
	off := 0
	state := -1
	for len(buf) > 0 {
		cluster, rest, _, newState := uniseg.FirstGraphemeCluster(buf, state)
		next := off + len(cluster)
		if next >= at {
			return base + off, nil
		}
		prev = next
		off = next
		buf, state = rest, newState
	}
	return base + prev, nil
}

// NextGraphemeBoundary returns the grapheme boundary to the right of
// byteIdx, excluding byteIdx itself. Returns the rope's length at its
// end.
func (r *Rope) NextGraphemeBoundary(byteIdx int) (int, error) {
	if err := r.validateByteIdx(byteIdx); err != nil {
		return 0, err
	}
	if byteIdx == r.info.Bytes {
		return r.info.Bytes, nil
	}
	buf, at := r.graphemeWindow(byteIdx)
	base := byteIdx - at
	off := 0
	state := -1
	for len(buf) > 0 {
		cluster, rest, _, newState := uniseg.FirstGraphemeCluster(buf, state)
		off += len(cluster)
		if off > at {
			return base + off, nil
		}
		buf, state = rest, newState
	}
	return r.info.Bytes, nil
}
