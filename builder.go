package textrope

import (
	"unicode/utf8"

	"github.com/dshills/textrope/internal/strutil"
)

// Builder incrementally constructs a rope from a stream of text chunks
// in O(N). Input is validated as UTF-8 across write boundaries, and
// every emitted leaf boundary lands on a safe split: never inside a
// scalar value, never between the CR and LF of a CRLF pair.
//
// The zero value is ready to use.
type Builder struct {
	leaves []*node
	buf    []byte
	carry  [4]byte
	ncarry int
	total  int
}

// NewBuilder creates a rope builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WriteString appends s to the rope under construction.
func (b *Builder) WriteString(s string) error {
	_, err := b.Write([]byte(s))
	return err
}

// Write appends p to the rope under construction, implementing
// io.Writer. Returns ErrNonUTF8Input when the accumulated stream is not
// valid UTF-8; a scalar value may span writes.
func (b *Builder) Write(p []byte) (int, error) {
	data := p
	if b.ncarry > 0 {
		data = make([]byte, 0, b.ncarry+len(p))
		data = append(data, b.carry[:b.ncarry]...)
		data = append(data, p...)
		b.ncarry = 0
	}

	cut := incompleteTail(data)
	head, tail := data[:cut], data[cut:]
	if !utf8.Valid(head) {
		return 0, ErrNonUTF8Input
	}
	b.ncarry = copy(b.carry[:], tail)
	b.total += len(p)

	b.buf = append(b.buf, head...)
	b.emitFullLeaves()
	return len(p), nil
}

// Len returns the number of bytes written so far.
func (b *Builder) Len() int {
	return b.total
}

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	for i := range b.leaves {
		b.leaves[i] = nil
	}
	b.leaves = b.leaves[:0]
	b.buf = b.buf[:0]
	b.ncarry = 0
	b.total = 0
}

// Build finishes construction and returns the rope, resetting the
// builder. Returns ErrNonUTF8Input when the stream ended inside a
// scalar value.
func (b *Builder) Build() (Rope, error) {
	if b.ncarry > 0 {
		b.Reset()
		return Rope{}, ErrNonUTF8Input
	}
	b.emitFullLeaves()
	if len(b.buf) > 0 {
		b.leaves = append(b.leaves, newLeafNode(newLeafText(b.buf)))
		b.buf = b.buf[:0]
	}
	leaves := b.leaves
	b.leaves = nil
	b.Reset()

	if len(leaves) == 0 {
		return New(), nil
	}

	// Rebalance a runt final leaf against its neighbor.
	if len(leaves) > 1 {
		last := leaves[len(leaves)-1]
		prev := leaves[len(leaves)-2]
		if last.text.len() < minLeafBytes {
			if prev.text.len()+last.text.len() <= maxLeafBytes {
				prev.text.appendBytes(last.text.buf)
				leaves = leaves[:len(leaves)-1]
			} else {
				prev.text.distribute(&last.text)
			}
		}
	}

	// Build the tree bottom-up in fan-out-bounded layers.
	level := leaves
	for len(level) > 1 {
		counts := balancedGroups(len(level))
		next := make([]*node, 0, len(counts))
		for _, size := range counts {
			c := &children{}
			for _, nd := range level[:size] {
				c.push(nd.textInfo(), nd)
			}
			level = level[size:]
			next = append(next, newInternalNode(c))
		}
		level = next
	}

	r := Rope{root: level[0]}
	r.info = r.root.textInfo()
	return r, nil
}

// emitFullLeaves carves completed leaves off the front of the buffer,
// always leaving at least one byte behind so a CRLF arriving across
// writes can never be split at a leaf boundary.
func (b *Builder) emitFullLeaves() {
	for len(b.buf) > maxLeafBytes {
		split := strutil.FindGoodSplit(b.buf, maxLeafBytes, true)
		if split == 0 || split == len(b.buf) {
			break
		}
		b.leaves = append(b.leaves, newLeafNode(newLeafText(b.buf[:split])))
		b.buf = append(b.buf[:0], b.buf[split:]...)
	}
}

// incompleteTail returns the index where a trailing partial scalar value
// begins, or len(b) when the buffer ends on a complete value. Anything
// that cannot become valid with more bytes is left for validation to
// reject.
func incompleteTail(b []byte) int {
	end := len(b)
	for i := end - 1; i >= 0 && i >= end-4; i-- {
		c := b[i]
		if c < 0x80 {
			return end
		}
		if c&0xC0 == 0xC0 {
			var size int
			switch {
			case c&0xE0 == 0xC0:
				size = 2
			case c&0xF0 == 0xE0:
				size = 3
			case c&0xF8 == 0xF0:
				size = 4
			default:
				return end
			}
			if i+size > end {
				return i
			}
			return end
		}
	}
	return end
}
