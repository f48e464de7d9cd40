package textrope

// children is the payload of an internal node: up to maxChildren child
// handles and their precomputed TextInfos, kept in parallel fixed-size
// arrays so metric searches scan densely packed cache lines.
type children struct {
	nodes [maxChildren]*node
	info  [maxChildren]TextInfo
	n     int
}

func (c *children) len() int {
	return c.n
}

// push appends a child. Panics if the array is full.
func (c *children) push(info TextInfo, child *node) {
	if c.n >= maxChildren {
		panic("textrope: children overflow")
	}
	c.nodes[c.n] = child
	c.info[c.n] = info
	c.n++
}

// pop removes and returns the last child.
func (c *children) pop() (TextInfo, *node) {
	c.n--
	info, child := c.info[c.n], c.nodes[c.n]
	c.nodes[c.n] = nil
	return info, child
}

// insert places a child at index i, shifting later entries right.
// Panics if the array is full.
func (c *children) insert(i int, info TextInfo, child *node) {
	if c.n >= maxChildren {
		panic("textrope: children overflow")
	}
	copy(c.nodes[i+1:c.n+1], c.nodes[i:c.n])
	copy(c.info[i+1:c.n+1], c.info[i:c.n])
	c.nodes[i] = child
	c.info[i] = info
	c.n++
}

// remove deletes and returns the child at index i, preserving order.
// The caller takes ownership of the returned node.
func (c *children) remove(i int) (TextInfo, *node) {
	info, child := c.info[i], c.nodes[i]
	copy(c.nodes[i:c.n-1], c.nodes[i+1:c.n])
	copy(c.info[i:c.n-1], c.info[i+1:c.n])
	c.n--
	c.nodes[c.n] = nil
	return info, child
}

// splitOff cuts the array at i, retaining [0, i) and returning the rest.
func (c *children) splitOff(i int) *children {
	right := &children{}
	copy(right.nodes[:], c.nodes[i:c.n])
	copy(right.info[:], c.info[i:c.n])
	right.n = c.n - i
	for j := i; j < c.n; j++ {
		c.nodes[j] = nil
	}
	c.n = i
	return right
}

// pushSplit appends a child to a full array by splitting it in half,
// returning the right half.
func (c *children) pushSplit(info TextInfo, child *node) *children {
	lCount := (c.n + 1) - (c.n+1)/2
	right := c.splitOff(lCount)
	right.push(info, child)
	return right
}

// insertSplit inserts a child into a full array by splitting it,
// returning the right half.
func (c *children) insertSplit(i int, info TextInfo, child *node) *children {
	if i < c.n {
		extraInfo, extraNode := c.pop()
		c.insert(i, info, child)
		return c.pushSplit(extraInfo, extraNode)
	}
	return c.pushSplit(info, child)
}

// mutableChild returns the child at i, cloning it first when it is
// shared, and records the exclusive handle back into the array.
func (c *children) mutableChild(i int) *node {
	c.nodes[i] = makeUnique(c.nodes[i])
	return c.nodes[i]
}

// updateChildInfo recomputes the stored info for the child at i from
// subtree truth.
func (c *children) updateChildInfo(i int) {
	c.info[i] = c.nodes[i].textInfo()
}

// combinedInfo sums the info array.
func (c *children) combinedInfo() TextInfo {
	var total TextInfo
	for i := 0; i < c.n; i++ {
		total = total.Add(c.info[i])
	}
	return total
}

// merge folds the child at idx2 into the child at idx1. The two must be
// adjacent (idx2 == idx1+1) and their combined payload must fit in one
// node.
func (c *children) merge(idx1, idx2 int) {
	left := c.mutableChild(idx1)
	right := c.mutableChild(idx2)

	if left.isLeaf() {
		left.text.appendBytes(right.text.buf)
	} else {
		for i := 0; i < right.kids.n; i++ {
			left.kids.push(right.kids.info[i], right.kids.nodes[i])
			right.kids.nodes[i] = nil
		}
		right.kids.n = 0
	}

	c.info[idx1] = c.info[idx1].Add(c.info[idx2])
	_, husk := c.remove(idx2)
	husk.release()
}

// distribute rebalances payload between two adjacent children so that
// neither side is undersized when the data allows it.
func (c *children) distribute(idx1, idx2 int) {
	left := c.mutableChild(idx1)
	right := c.mutableChild(idx2)

	if left.isLeaf() {
		left.text.distribute(&right.text)
	} else {
		lk, rk := left.kids, right.kids
		targetR := (lk.n + rk.n) / 2
		for rk.n < targetR {
			info, child := lk.pop()
			rk.insert(0, info, child)
		}
		for rk.n > targetR {
			info, child := rk.remove(0)
			lk.push(info, child)
		}
	}

	c.updateChildInfo(idx1)
	c.updateChildInfo(idx2)
}

// mergeDistribute merges two adjacent children when their combined
// payload fits in one node, and equidistributes otherwise. Returns true
// when a merge happened.
func (c *children) mergeDistribute(idx1, idx2 int) bool {
	var canMerge bool
	l, r := c.nodes[idx1], c.nodes[idx2]
	if l.isLeaf() {
		canMerge = l.text.len()+r.text.len() <= maxLeafBytes
	} else {
		canMerge = l.kids.n+r.kids.n <= maxChildren
	}

	if canMerge {
		c.merge(idx1, idx2)
		return true
	}
	c.distribute(idx1, idx2)
	return false
}

// distributeWith equalizes the child counts of two sibling arrays,
// keeping order: c's children precede other's.
func (c *children) distributeWith(other *children) {
	targetR := (c.n + other.n) / 2
	for other.n < targetR {
		info, child := c.pop()
		other.insert(0, info, child)
	}
	for other.n > targetR {
		info, child := other.remove(0)
		c.push(info, child)
	}
}

// searchBytes returns the index of the child containing byteIdx and the
// accumulated info of the children before it. With biasLeft, a byteIdx
// on a child boundary resolves to the left child, which is what
// insertion gaps want.
func (c *children) searchBytes(byteIdx int, biasLeft bool) (int, TextInfo) {
	var acc TextInfo
	for i := 0; i < c.n-1; i++ {
		end := acc.Bytes + c.info[i].Bytes
		if byteIdx < end || (biasLeft && byteIdx == end) {
			return i, acc
		}
		acc = acc.Add(c.info[i])
	}
	return c.n - 1, acc
}

// searchChars returns the child containing the charIdx-th scalar value.
// A charIdx on a boundary resolves to the left child.
func (c *children) searchChars(charIdx int) (int, TextInfo) {
	var acc TextInfo
	for i := 0; i < c.n-1; i++ {
		if charIdx <= acc.Chars+c.info[i].Chars {
			return i, acc
		}
		acc = acc.Add(c.info[i])
	}
	return c.n - 1, acc
}

// searchUTF16 returns the child containing the u16Idx-th UTF-16 unit.
func (c *children) searchUTF16(u16Idx int) (int, TextInfo) {
	var acc TextInfo
	for i := 0; i < c.n-1; i++ {
		if u16Idx <= acc.UTF16Units()+c.info[i].UTF16Units() {
			return i, acc
		}
		acc = acc.Add(c.info[i])
	}
	return c.n - 1, acc
}

// searchLines returns the child containing the start of line lineIdx in
// the given flavor.
func (c *children) searchLines(lineIdx int, t LineType) (int, TextInfo) {
	var acc TextInfo
	for i := 0; i < c.n-1; i++ {
		if lineIdx <= acc.LineBreaks(t)+c.info[i].LineBreaks(t) {
			return i, acc
		}
		acc = acc.Add(c.info[i])
	}
	return c.n - 1, acc
}
