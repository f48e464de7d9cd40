package textrope

import "github.com/dshills/textrope/internal/strutil"

// leafText is the contiguous UTF-8 payload of a leaf node. The buffer is
// allocated with maxLeafBytes capacity so in-place edits rarely
// reallocate; a single indivisible segment larger than maxLeafBytes may
// push it past that as the documented escape hatch.
//
// Splice positions handed to leafText are always scalar-value
// boundaries; callers validate before descending.
type leafText struct {
	buf []byte
}

// newLeafText copies b into a fresh leaf buffer.
func newLeafText(b []byte) leafText {
	c := maxLeafBytes
	if len(b) > c {
		c = len(b)
	}
	buf := make([]byte, len(b), c)
	copy(buf, b)
	return leafText{buf: buf}
}

func (t *leafText) len() int {
	return len(t.buf)
}

// insert splices text in at byte index i. Size discipline is the node
// layer's job: the result may exceed maxLeafBytes, which the caller must
// resolve by splitting.
func (t *leafText) insert(i int, text []byte) {
	if len(text) == 0 {
		return
	}
	t.buf = append(t.buf, text...)
	copy(t.buf[i+len(text):], t.buf[i:len(t.buf)-len(text)])
	copy(t.buf[i:], text)
}

// remove deletes the bytes in [start, end).
func (t *leafText) remove(start, end int) {
	t.buf = append(t.buf[:start], t.buf[end:]...)
}

// appendBytes concatenates more text onto the end.
func (t *leafText) appendBytes(b []byte) {
	t.buf = append(t.buf, b...)
}

// prependBytes concatenates text onto the front.
func (t *leafText) prependBytes(b []byte) {
	t.insert(0, b)
}

// splitOff cuts the leaf at i, retaining the prefix and returning the
// suffix. i must be a safe split: on a char boundary and not between the
// CR and LF of a CRLF pair.
func (t *leafText) splitOff(i int) leafText {
	right := newLeafText(t.buf[i:])
	t.buf = t.buf[:i]
	return right
}

// distribute rebalances bytes between two adjacent leaves so that
// neither is undersized when a safe split allows it. When the combined
// text has no internal safe split, both leaves are left unchanged.
func (t *leafText) distribute(other *leafText) {
	total := t.len() + other.len()
	combined := make([]byte, 0, total)
	combined = append(combined, t.buf...)
	combined = append(combined, other.buf...)

	split := strutil.FindGoodSplit(combined, (total+1)/2, true)
	if split == 0 || split == total {
		split = strutil.NearestInternalSplit(combined, total/2)
	}
	if split == 0 || split == total {
		return
	}

	t.buf = append(t.buf[:0], combined[:split]...)
	other.buf = append(other.buf[:0], combined[split:]...)
}

// info computes the leaf's aggregate counts.
func (t *leafText) info() TextInfo {
	return computeTextInfo(t.buf)
}
