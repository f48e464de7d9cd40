package textrope

import (
	"sync/atomic"

	"github.com/dshills/textrope/internal/strutil"
)

// Tree tuning constants. These are internal: the exact values trade leaf
// copy cost against tree depth and are not part of the API.
const (
	// maxLeafBytes is the maximum text per leaf before splitting.
	maxLeafBytes = 1024

	// minLeafBytes is the size below which a leaf seeks a merge.
	minLeafBytes = maxLeafBytes / 2

	// maxChildren is the maximum fan-out of an internal node.
	maxChildren = 16

	// minChildren is the fan-out below which an internal node seeks a
	// merge.
	minChildren = maxChildren / 2
)

// node is the tagged union at the heart of the tree: a leaf when kids is
// nil, an internal node otherwise. All leaves of a tree sit at the same
// depth.
//
// Nodes are shared between rope clones through the atomic reference
// count. A node may only be mutated while its count proves exclusive
// ownership; makeUnique clones it otherwise, which is what gives edits
// copy-on-write semantics per node.
type node struct {
	refs atomic.Int32
	text leafText
	kids *children
}

func newLeafNode(t leafText) *node {
	n := &node{text: t}
	n.refs.Store(1)
	return n
}

func newEmptyLeafNode() *node {
	return newLeafNode(newLeafText(nil))
}

func newInternalNode(c *children) *node {
	n := &node{kids: c}
	n.refs.Store(1)
	return n
}

func (n *node) isLeaf() bool {
	return n.kids == nil
}

func (n *node) retain() {
	n.refs.Add(1)
}

func (n *node) release() {
	n.refs.Add(-1)
}

// makeUnique returns an exclusively owned equivalent of n: n itself when
// unshared, otherwise a shallow clone whose children remain shared.
func makeUnique(n *node) *node {
	if n.refs.Load() == 1 {
		return n
	}
	cp := n.clone()
	n.release()
	return cp
}

// clone makes a shallow copy: leaf bytes are duplicated, child handles
// are shared with their counts bumped.
func (n *node) clone() *node {
	if n.isLeaf() {
		return newLeafNode(newLeafText(n.text.buf))
	}
	kc := &children{}
	*kc = *n.kids
	for i := 0; i < kc.n; i++ {
		kc.nodes[i].retain()
	}
	return newInternalNode(kc)
}

// textInfo computes the aggregate counts of the subtree: a scan for
// leaves, a sum of the child info array for internal nodes.
func (n *node) textInfo() TextInfo {
	if n.isLeaf() {
		return n.text.info()
	}
	return n.kids.combinedInfo()
}

// depth returns the number of internal levels above the leaves. A leaf
// has depth zero.
func (n *node) depth() int {
	d := 0
	for !n.isLeaf() {
		d++
		n = n.kids.nodes[0]
	}
	return d
}

func (n *node) isUndersized() bool {
	if n.isLeaf() {
		return n.text.len() < minLeafBytes
	}
	return n.kids.n < minChildren
}

// chunkAt returns the leaf chunk containing byteIdx along with the
// accumulated info of everything before the chunk. byteIdx equal to the
// total length resolves to the last leaf.
func (n *node) chunkAt(byteIdx int) ([]byte, TextInfo) {
	var start TextInfo
	for !n.isLeaf() {
		i, acc := n.kids.searchBytes(byteIdx, false)
		start = start.Add(acc)
		byteIdx -= acc.Bytes
		n = n.kids.nodes[i]
	}
	return n.text.buf, start
}

// byteAt returns the byte at byteIdx.
func (n *node) byteAt(byteIdx int) byte {
	chunk, start := n.chunkAt(byteIdx)
	return chunk[byteIdx-start.Bytes]
}

// textInfoPrefix computes the aggregate counts of the first byteIdx
// bytes, treating the prefix as standalone text.
func (n *node) textInfoPrefix(byteIdx int) TextInfo {
	if n.isLeaf() {
		return computeTextInfo(n.text.buf[:byteIdx])
	}
	i, acc := n.kids.searchBytes(byteIdx, false)
	return acc.Add(n.kids.nodes[i].textInfoPrefix(byteIdx - acc.Bytes))
}

// byteToChar returns the number of scalar values before byteIdx.
func (n *node) byteToChar(byteIdx int) int {
	if n.isLeaf() {
		return strutil.ByteToCharIdx(n.text.buf, byteIdx)
	}
	i, acc := n.kids.searchBytes(byteIdx, true)
	if byteIdx == 0 {
		return 0
	}
	if byteIdx == acc.Bytes+n.kids.info[i].Bytes {
		return acc.Chars + n.kids.info[i].Chars
	}
	return acc.Chars + n.kids.nodes[i].byteToChar(byteIdx-acc.Bytes)
}

// charToByte returns the byte index of the charIdx-th scalar value.
func (n *node) charToByte(charIdx int) int {
	if n.isLeaf() {
		return strutil.CharToByteIdx(n.text.buf, charIdx)
	}
	i, acc := n.kids.searchChars(charIdx)
	if charIdx == 0 {
		return 0
	}
	if charIdx == acc.Chars+n.kids.info[i].Chars {
		return acc.Bytes + n.kids.info[i].Bytes
	}
	return acc.Bytes + n.kids.nodes[i].charToByte(charIdx-acc.Chars)
}

// byteToUTF16 returns the number of UTF-16 code units before byteIdx.
func (n *node) byteToUTF16(byteIdx int) int {
	if n.isLeaf() {
		return strutil.ByteToUTF16Idx(n.text.buf, byteIdx)
	}
	i, acc := n.kids.searchBytes(byteIdx, true)
	if byteIdx == 0 {
		return 0
	}
	if byteIdx == acc.Bytes+n.kids.info[i].Bytes {
		return acc.UTF16Units() + n.kids.info[i].UTF16Units()
	}
	return acc.UTF16Units() + n.kids.nodes[i].byteToUTF16(byteIdx-acc.Bytes)
}

// utf16ToByte returns the byte index of the u16Idx-th UTF-16 code unit.
func (n *node) utf16ToByte(u16Idx int) int {
	if n.isLeaf() {
		return strutil.UTF16ToByteIdx(n.text.buf, u16Idx)
	}
	i, acc := n.kids.searchUTF16(u16Idx)
	if u16Idx == 0 {
		return 0
	}
	if u16Idx == acc.UTF16Units()+n.kids.info[i].UTF16Units() {
		return acc.Bytes + n.kids.info[i].Bytes
	}
	return acc.Bytes + n.kids.nodes[i].utf16ToByte(u16Idx-acc.UTF16Units())
}

// byteToLine returns the line index containing byteIdx for the given
// flavor.
func (n *node) byteToLine(byteIdx int, t LineType) int {
	if n.isLeaf() {
		return strutil.ByteToLineIdx(n.text.buf, byteIdx, t.flavor())
	}
	i, acc := n.kids.searchBytes(byteIdx, true)
	if byteIdx == 0 {
		return 0
	}
	if byteIdx == acc.Bytes+n.kids.info[i].Bytes {
		return acc.LineBreaks(t) + n.kids.info[i].LineBreaks(t)
	}
	return acc.LineBreaks(t) + n.kids.nodes[i].byteToLine(byteIdx-acc.Bytes, t)
}

// lineToByte returns the byte index of the start of line lineIdx for the
// given flavor.
func (n *node) lineToByte(lineIdx int, t LineType) int {
	if n.isLeaf() {
		return strutil.LineToByteIdx(n.text.buf, lineIdx, t.flavor())
	}
	i, acc := n.kids.searchLines(lineIdx, t)
	return acc.Bytes + n.kids.nodes[i].lineToByte(lineIdx-acc.LineBreaks(t), t)
}
