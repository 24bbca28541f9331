package art

import (
	"github.com/flier/art/internal/debug"
	"github.com/flier/art/internal/xunsafe"
)

// node4 represents the smallest inner node type in the tree, capable of
// storing up to 4 children. It is the entry point for most tree growth and
// provides the most memory-efficient storage for nodes with few children.
//
// node4 uses a simple parallel-array representation where:
//   - Key bytes are stored in ascending order
//   - Children are stored in the same order as their corresponding keys
//   - Both arrays have a fixed size of 4 elements
//
// This design prioritizes memory efficiency over lookup performance for
// small fan-out, making it ideal for sparse regions of the tree near the
// leaves.
//
// Memory Layout:
//   - header: version word, type tag, child count, prefix storage
//   - keys array: 4 bytes (fixed size)
//   - children array: 4 tagged pointers (fixed size)
//
// Performance Characteristics:
//   - Lookup: O(n) where n ≤ 4 (linear search)
//   - Insertion: O(n) with shifting to keep sorted order
//   - Memory: most efficient among all node types
//   - Growth: converts to node16 when full
type node4 struct {
	header

	// keys stores the key bytes in ascending order.
	//
	// The array has a fixed size of 4 elements, with only the first
	// numChildren elements containing valid keys.
	keys [4]byte

	// children stores the child refs corresponding to keys.
	//
	// children[i] corresponds to keys[i] for all valid indices.
	children [4]ref
}

// full reports whether the node has reached its maximum capacity of 4
// children.
//
// When this returns true, the caller must grow the node into a node16
// before adding another child.
func (n *node4) full() bool { return n.numChildren == 4 }

// findChild returns the child slot for the given key byte, or nil if the
// byte has no child.
//
// The method performs a linear scan through the sorted keys array. While
// not optimal for larger node types, this approach is efficient for node4
// due to its small size and provides good cache locality.
func (n *node4) findChild(b byte) *ref {
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
func (n *node4) addChild(b byte, child ref) {
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
func (n *node4) removeChildAt(pos int) {
	debug.Assert(pos < n.numChildren, "child must be in the node")

	copy(n.keys[pos:n.numChildren-1], n.keys[pos+1:n.numChildren])
	copy(n.children[pos:n.numChildren-1], n.children[pos+1:n.numChildren])
	n.numChildren--
}

// indexOf recovers a child slot's position from a pointer into n.children,
// avoiding a second scan after findChild.
func (n *node4) indexOf(child *ref) int {
	return xunsafe.IndexOf(child, &n.children[0])
}

// grow converts a full node4 into a node16, preserving sorted order.
//
// The new node receives the old node's child count and prefix but starts
// with its own unlocked version word; the caller publishes it in the
// parent's slot and retires the old node.
func (n *node4) grow() *node16 {
	g := getNode16()
	g.header.copyMeta(&n.header)

	copy(g.keys[:], n.keys[:n.numChildren])
	copy(g.children[:], n.children[:n.numChildren])

	return g
}

// soleChild returns the first child entry, for path compression when
// numChildren has fallen to 1.
func (n *node4) soleChild() (b byte, r ref) { return n.keys[0], n.children[0] }

// minimum returns the leftmost leaf in the subtree rooted at this node.
//
// Since keys are sorted, the first child leads to the minimum key.
func (n *node4) minimum() ref {
	if n.numChildren == 0 {
		return 0
	}

	return minimumOf(n.children[0])
}
