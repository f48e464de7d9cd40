// Package textrope provides a UTF-8 text buffer backed by a
// copy-on-write b-tree rope, suitable as the in-memory backing store of
// a text editor.
//
// Leaves hold bounded runs of contiguous text; internal nodes store
// per-child aggregates (bytes, scalar values, UTF-16 code units, and
// line breaks in several flavors). Those aggregates give O(log n)
// random-access editing and O(log n) conversion between byte,
// scalar-value, UTF-16, and line offsets, over texts into the gigabyte
// range.
//
// Key properties:
//   - O(log n) insert, remove, split, and concatenate
//   - Clone is O(1): clones share storage, and a mutation copies only
//     the shared nodes on its path
//   - Distinct clones are safe to read and mutate from different
//     goroutines without locking
//   - Leaf boundaries never fall inside a scalar value or between the
//     CR and LF of a CRLF pair, so per-leaf line counts stay additive
//
// Basic usage:
//
//	r := textrope.MustFromString("Hello, world!\n")
//	r.MustInsert(5, " there")
//	snapshot := r.Clone()
//	r.MustRemove(0, 5)
//	_ = snapshot.String() // unaffected by the removal
//
// Fallible forms return errors; Must* forms panic on invalid indices.
// Byte indices handed to the API must lie on scalar-value boundaries.
package textrope
