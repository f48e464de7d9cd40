package textrope

import (
	"fmt"
	"unicode/utf8"

	"github.com/dshills/textrope/internal/strutil"
)

// Debug-only structural checks, exercised by tests and fuzzing. They
// verify the invariants the tree is supposed to maintain at rest:
//
//  1. every leaf sits at the same depth
//  2. fan-out bounds hold (root internal has at least two children)
//  3. stored child infos match subtree truth
//  4. leaves are non-empty except a root leaf
//  5. no leaf boundary cuts a scalar value or a CRLF pair
//  6. leaves stay at or below maxLeafBytes, except leaves holding a
//     single indivisible segment; the minLeafBytes bound is not checked,
//     so undersized non-root leaves are not reported

// checkInvariants verifies every structural invariant, returning the
// first violation found.
func (r *Rope) checkInvariants() error {
	if r.root == nil {
		return nil
	}
	if _, err := r.root.checkBalance(); err != nil {
		return err
	}
	if err := r.root.checkNodeSize(true); err != nil {
		return err
	}
	if err := r.root.checkInfo(); err != nil {
		return err
	}
	if err := r.checkLeafBoundaries(); err != nil {
		return err
	}
	if got := r.root.textInfo(); got != r.info {
		return fmt.Errorf("cached root info %+v does not match tree %+v", r.info, got)
	}
	return nil
}

// checkBalance verifies that every leaf is at the same depth, returning
// the subtree depth.
func (n *node) checkBalance() (int, error) {
	if n.isLeaf() {
		return 1, nil
	}
	first, err := n.kids.nodes[0].checkBalance()
	if err != nil {
		return 0, err
	}
	for i := 1; i < n.kids.n; i++ {
		d, err := n.kids.nodes[i].checkBalance()
		if err != nil {
			return 0, err
		}
		if d != first {
			return 0, fmt.Errorf("uneven leaf depth: %d vs %d", d, first)
		}
	}
	return first + 1, nil
}

// checkNodeSize verifies fan-out bounds, non-empty non-root leaves, and
// the upper leaf-size bound. Leaves below minLeafBytes are not flagged.
func (n *node) checkNodeSize(isRoot bool) error {
	if n.isLeaf() {
		if !isRoot && n.text.len() == 0 {
			return fmt.Errorf("empty non-root leaf")
		}
		if n.text.len() > maxLeafBytes {
			// Only a single indivisible segment may stay oversized.
			if s := strutil.NearestInternalSplit(n.text.buf, n.text.len()/2); s != 0 && s != n.text.len() {
				return fmt.Errorf("oversized splittable leaf: %d bytes", n.text.len())
			}
		}
		return nil
	}
	if isRoot {
		if n.kids.n < 2 {
			return fmt.Errorf("root internal node with %d children", n.kids.n)
		}
	} else if n.kids.n < minChildren || n.kids.n > maxChildren {
		return fmt.Errorf("internal node with %d children", n.kids.n)
	}
	for i := 0; i < n.kids.n; i++ {
		if err := n.kids.nodes[i].checkNodeSize(false); err != nil {
			return err
		}
	}
	return nil
}

// checkInfo verifies that every stored child info equals the true info
// of the corresponding subtree.
func (n *node) checkInfo() error {
	if n.isLeaf() {
		return nil
	}
	for i := 0; i < n.kids.n; i++ {
		if got := n.kids.nodes[i].textInfo(); got != n.kids.info[i] {
			return fmt.Errorf("stale child info at %d: stored %+v, actual %+v", i, n.kids.info[i], got)
		}
		if err := n.kids.nodes[i].checkInfo(); err != nil {
			return err
		}
	}
	return nil
}

// checkLeafBoundaries verifies that every leaf is valid UTF-8 on its own
// (so no boundary cuts a scalar value) and that no boundary splits a
// CRLF pair.
func (r *Rope) checkLeafBoundaries() error {
	it := r.Chunks()
	var prev []byte
	for {
		chunk, ok := it.Next()
		if !ok {
			return nil
		}
		if !utf8.Valid(chunk) {
			return fmt.Errorf("leaf boundary cuts a scalar value")
		}
		if len(prev) > 0 && prev[len(prev)-1] == '\r' && chunk[0] == '\n' {
			return fmt.Errorf("leaf boundary splits a CRLF pair")
		}
		prev = chunk
	}
}
