package textrope

import "github.com/dshills/textrope/internal/strutil"

// Recursive mutation algorithms. Upward signals are plain return values:
// insertion hands back residual siblings for the parent to place, and
// removal reports whether a zip-fix pass is needed along the edit seam.
// Ancestors are never mutated through shared handles; every descent goes
// through mutableChild.

// insert splices text at byteIdx. The node must be exclusively owned and
// text must be no larger than maxLeafBytes. The returned nodes, if any,
// are new right-hand siblings at this node's height.
func (n *node) insert(byteIdx int, text []byte) []*node {
	if n.isLeaf() {
		n.text.insert(byteIdx, text)
		if n.text.len() <= maxLeafBytes {
			return nil
		}
		return n.splitOversizedLeaf()
	}

	i, acc := n.kids.searchBytes(byteIdx, true)
	child := n.kids.mutableChild(i)
	extras := child.insert(byteIdx-acc.Bytes, text)
	n.kids.updateChildInfo(i)
	if len(extras) == 0 {
		return nil
	}
	return n.spliceSiblings(i+1, extras)
}

// splitOversizedLeaf carves an over-full leaf into safe-boundary pieces,
// retaining the first piece in place and returning the rest as fresh
// leaves. A piece may stay oversized only when it is a single
// indivisible segment with no legal internal cut.
func (n *node) splitOversizedLeaf() []*node {
	var extras []*node
	cur := &n.text
	for cur.len() > maxLeafBytes {
		split := strutil.FindGoodSplit(cur.buf, maxLeafBytes, true)
		if split == 0 || split == cur.len() {
			break
		}
		rn := newLeafNode(cur.splitOff(split))
		extras = append(extras, rn)
		cur = &rn.text
	}

	if len(extras) > 0 {
		// Rebalance a runt final piece against its left neighbor.
		last := &extras[len(extras)-1].text
		if last.len() < minLeafBytes {
			prev := &n.text
			if len(extras) >= 2 {
				prev = &extras[len(extras)-2].text
			}
			prev.distribute(last)
		}
	}
	return extras
}

// spliceSiblings inserts newKids into the child array at position at.
// When fan-out overflows, the children are regrouped into balanced nodes
// and the surplus groups are returned as siblings for the caller.
func (n *node) spliceSiblings(at int, newKids []*node) []*node {
	if n.kids.n+len(newKids) <= maxChildren {
		for j, k := range newKids {
			n.kids.insert(at+j, k.textInfo(), k)
		}
		return nil
	}

	all := make([]*node, 0, n.kids.n+len(newKids))
	all = append(all, n.kids.nodes[:at]...)
	all = append(all, newKids...)
	all = append(all, n.kids.nodes[at:n.kids.n]...)
	for i := 0; i < n.kids.n; i++ {
		n.kids.nodes[i] = nil
	}
	n.kids.n = 0

	counts := balancedGroups(len(all))
	for _, k := range all[:counts[0]] {
		n.kids.push(k.textInfo(), k)
	}
	all = all[counts[0]:]

	extras := make([]*node, 0, len(counts)-1)
	for _, size := range counts[1:] {
		c := &children{}
		for _, k := range all[:size] {
			c.push(k.textInfo(), k)
		}
		all = all[size:]
		extras = append(extras, newInternalNode(c))
	}
	return extras
}

// balancedGroups partitions count children into group sizes that each
// fall within fan-out bounds, spreading the remainder evenly.
func balancedGroups(count int) []int {
	if count <= maxChildren {
		return []int{count}
	}
	groups := (count + maxChildren - 1) / maxChildren
	base := count / groups
	rem := count % groups
	out := make([]int, groups)
	for i := range out {
		out[i] = base
		if i < rem {
			out[i]++
		}
	}
	return out
}

// remove deletes the bytes in [start, end). The node must be exclusively
// owned and the range must not cover the entire tree (the rope handles
// that case by resetting the root). Returns true when a zip-fix pass is
// needed to restore size invariants along the seam.
func (n *node) remove(start, end int) bool {
	if start == end {
		return false
	}
	if n.isLeaf() {
		n.text.remove(start, end)
		return n.text.len() < minLeafBytes
	}

	k := n.kids
	li, lacc := k.searchBytes(start, true)
	ri, racc := k.searchBytes(end, true)
	needZip := false

	if li == ri {
		lStart := start - lacc.Bytes
		lEnd := end - lacc.Bytes
		if lStart == 0 && lEnd == k.info[li].Bytes {
			_, gone := k.remove(li)
			gone.release()
		} else {
			child := k.mutableChild(li)
			needZip = child.remove(lStart, lEnd)
			k.updateChildInfo(li)
		}
	} else {
		lStart := start - lacc.Bytes
		lEnd := k.info[li].Bytes
		rEnd := end - racc.Bytes
		lGone := lStart == 0
		rGone := rEnd == k.info[ri].Bytes

		// Drop the children fully covered by the range.
		removalStart := li + 1
		if lGone {
			removalStart = li
		}
		removalEnd := ri
		if rGone {
			removalEnd = ri + 1
		}
		for j := removalStart; j < removalEnd; j++ {
			_, gone := k.remove(removalStart)
			gone.release()
		}

		ri = li + 1
		if lGone {
			ri = li
		}

		if !lGone {
			child := k.mutableChild(li)
			needZip = child.remove(lStart, lEnd) || needZip
			k.updateChildInfo(li)
		}
		if !rGone && ri < k.n {
			child := k.mutableChild(ri)
			needZip = child.remove(0, rEnd) || needZip
			k.updateChildInfo(ri)
		}
	}

	// Mend the seam: merge or redistribute undersized children, pulling
	// from the left sibling when both directions are candidates.
	if li+1 < k.n && (k.nodes[li].isUndersized() || k.nodes[li+1].isUndersized()) {
		k.mergeDistribute(li, li+1)
	}
	if li < k.n && k.n > 1 && k.nodes[li].isUndersized() {
		if li == 0 {
			k.mergeDistribute(0, 1)
		} else {
			k.mergeDistribute(li-1, li)
		}
	}

	if k.n < minChildren {
		needZip = true
	}
	if li < k.n && k.nodes[li].isUndersized() {
		needZip = true
	}
	return needZip
}

// zipFix repairs undersized nodes down the path containing byteIdx,
// merging or redistributing with siblings until no level reports
// further effects. Returns whether anything changed at this level.
func (n *node) zipFix(byteIdx int) bool {
	if n.isLeaf() {
		return false
	}
	k := n.kids
	did := false
	for {
		i, acc := k.searchBytes(byteIdx, true)
		endBytes := acc.Bytes + k.info[i].Bytes

		if endBytes == byteIdx && i+1 < k.n {
			if k.nodes[i].isUndersized() || k.nodes[i+1].isUndersized() {
				if k.mergeDistribute(i, i+1) {
					did = true
				}
			}
		} else if k.n > 1 && k.nodes[i].isUndersized() {
			if i == 0 {
				if k.mergeDistribute(0, 1) {
					did = true
				}
			} else {
				if k.mergeDistribute(i-1, i) {
					did = true
				}
			}
		}

		i, acc = k.searchBytes(byteIdx, true)
		endBytes = acc.Bytes + k.info[i].Bytes
		if endBytes == byteIdx && i+1 < k.n {
			e1 := k.mutableChild(i).zipFix(k.info[i].Bytes)
			e2 := k.mutableChild(i + 1).zipFix(0)
			if !e1 && !e2 {
				break
			}
		} else {
			if !k.mutableChild(i).zipFix(byteIdx - acc.Bytes) {
				break
			}
		}
	}
	return did
}

// zipFixLeft repairs undersized nodes down the left fringe.
func (n *node) zipFixLeft() bool {
	if n.isLeaf() {
		return false
	}
	k := n.kids
	did := false
	for {
		if k.n > 1 && k.nodes[0].isUndersized() {
			if k.mergeDistribute(0, 1) {
				did = true
			}
		}
		if !k.mutableChild(0).zipFixLeft() {
			break
		}
	}
	return did
}

// zipFixRight repairs undersized nodes down the right fringe.
func (n *node) zipFixRight() bool {
	if n.isLeaf() {
		return false
	}
	k := n.kids
	did := false
	for {
		last := k.n - 1
		if k.n > 1 && k.nodes[last].isUndersized() {
			if k.mergeDistribute(last-1, last) {
				did = true
			}
			last = k.n - 1
		}
		if !k.mutableChild(last).zipFixRight() {
			break
		}
	}
	return did
}
