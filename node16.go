package art

import (
	"github.com/flier/art/internal/debug"
	"github.com/flier/art/internal/xunsafe"
)

// node16 represents the second-smallest inner node type, holding 5 to 16
// children in the same sorted parallel-array shape as node4.
//
// Child search stays a portable linear scan: at 16 sorted keys neither
// binary search nor a SIMD compare pays for its overhead in Go, and the
// scan keeps the code free of per-architecture build tags.
//
// Memory Layout:
//   - header: version word, type tag, child count, prefix storage
//   - keys array: 16 bytes (fixed size)
//   - children array: 16 tagged pointers (fixed size)
//
// Performance Characteristics:
//   - Lookup: O(n) where n ≤ 16 (linear search)
//   - Insertion: O(n) with shifting to keep sorted order
//   - Growth: converts to node48 when full
//   - Shrink: converts back to node4 at 4 children
type node16 struct {
	header

	// keys stores the key bytes in ascending order.
	//
	// Only the first numChildren elements contain valid keys.
	keys [16]byte

	// children stores the child refs corresponding to keys.
	//
	// children[i] corresponds to keys[i] for all valid indices.
	children [16]ref
}

// full reports whether the node has reached its maximum capacity of 16
// children.
func (n *node16) full() bool { return n.numChildren == 16 }

// findChild returns the child slot for the given key byte, or nil if the
// byte has no child.
func (n *node16) findChild(b byte) *ref {
	for i := 0; i < n.numChildren; i++ {
		if n.keys[i] == b {
			return &n.children[i]
		}
	}

	return nil
}

// addChild inserts (b, child) in sorted position, shifting later entries
// right to keep the keys array ordered.
//
// The caller must ensure the node is not full.
func (n *node16) addChild(b byte, child ref) {
	debug.Assert(!n.full(), "node must not be full")

	i := 0
	for ; i < n.numChildren; i++ {
		if b < n.keys[i] {
			break
		}
	}

	copy(n.keys[i+1:n.numChildren+1], n.keys[i:n.numChildren])
	copy(n.children[i+1:n.numChildren+1], n.children[i:n.numChildren])

	n.keys[i] = b
	n.children[i] = child
	n.numChildren++
}

// removeChildAt removes the entry at position pos, shifting later entries
// left to close the gap.
func (n *node16) removeChildAt(pos int) {
	debug.Assert(pos < n.numChildren, "child must be in the node")

	copy(n.keys[pos:n.numChildren-1], n.keys[pos+1:n.numChildren])
	copy(n.children[pos:n.numChildren-1], n.children[pos+1:n.numChildren])
	n.numChildren--
}

// indexOf recovers a child slot's position from a pointer into n.children,
// avoiding a second scan after findChild.
func (n *node16) indexOf(child *ref) int {
	return xunsafe.IndexOf(child, &n.children[0])
}

// grow converts a full node16 into a node48, translating the sorted arrays
// into the side-table layout: each key byte's table entry receives the
// 1-based index of its child slot.
func (n *node16) grow() *node48 {
	g := getNode48()
	g.header.copyMeta(&n.header)

	for i := 0; i < n.numChildren; i++ {
		g.index[n.keys[i]] = uint8(i + 1)
		g.children[i] = n.children[i]
	}

	return g
}

// shrink converts a node16 that has fallen to 4 children back into a node4.
//
// The first four entries are already the complete, sorted contents of the
// node, so they transfer positionally.
func (n *node16) shrink() *node4 {
	s := getNode4()
	s.header.copyMeta(&n.header)

	copy(s.keys[:n.numChildren], n.keys[:n.numChildren])
	copy(s.children[:n.numChildren], n.children[:n.numChildren])

	return s
}

// minimum returns the leftmost leaf in the subtree rooted at this node.
func (n *node16) minimum() ref {
	if n.numChildren == 0 {
		return 0
	}

	return minimumOf(n.children[0])
}
