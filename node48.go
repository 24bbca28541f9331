package art

import "github.com/flier/art/internal/debug"

// node48 represents the second-largest inner node type, holding 17 to 48
// children behind a 256-entry byte-indexed side table: index[b] is 0 when
// byte b has no child, else the 1-based position of its child slot.
//
// This trades the 256 bytes of the side table for O(1) lookup without the
// full 256-pointer array of node256. Child slots are not kept densely
// packed at the front; the side table is the authoritative index and free
// slots are found by scanning occupancy.
//
// Memory Layout:
//   - header: version word, type tag, child count, prefix storage
//   - index table: 256 bytes, one 1-based slot number per key byte
//   - children array: 48 tagged pointers (fixed size)
//
// Performance Characteristics:
//   - Lookup: O(1) via the side table
//   - Insertion: O(n) to find a free slot, O(1) to link it
//   - Growth: converts to node256 when full
//   - Shrink: converts back to node16 at 16 children
type node48 struct {
	header

	// index maps each key byte to the 1-based position of its child in
	// children; 0 means the byte has no child.
	index [256]uint8

	// children stores the child refs in unordered slots.
	//
	// Slot occupancy is defined solely by index; a slot is free when no
	// table entry points at it.
	children [48]ref
}

// full reports whether the node has reached its maximum capacity of 48
// children.
func (n *node48) full() bool { return n.numChildren == 48 }

// findChild returns the child slot for the given key byte, or nil if the
// byte has no child.
//
// The side table makes this a single array access plus one bounds-free
// index into children.
func (n *node48) findChild(b byte) *ref {
	i := n.index[b]
	if i == 0 {
		return nil
	}

	return &n.children[i-1]
}

// freeSlot returns the lowest unused children slot.
//
// Needed because, unlike node4 and node16, this layout's slots are not
// kept densely packed: removals leave holes that later insertions reuse.
func (n *node48) freeSlot() int {
	var used [48]bool

	for _, i := range n.index {
		if i != 0 {
			used[i-1] = true
		}
	}

	for i, u := range used {
		if !u {
			return i
		}
	}

	panic("art: node48 has no free slot")
}

// addChild stores child in any free slot and points the side table's entry
// for b at it.
//
// The caller must ensure the node is not full.
func (n *node48) addChild(b byte, child ref) {
	debug.Assert(!n.full(), "node must not be full")

	slot := n.freeSlot()
	n.children[slot] = child
	n.index[b] = uint8(slot + 1)
	n.numChildren++
}

// removeChild clears the side-table entry and child slot for b, leaving
// the slot free for reuse.
func (n *node48) removeChild(b byte) {
	i := n.index[b]
	if i == 0 {
		return
	}

	n.children[i-1] = 0
	n.index[b] = 0
	n.numChildren--
}

// grow converts a full node48 into a node256's direct array, writing each
// present child at the slot its key byte names.
func (n *node48) grow() *node256 {
	g := getNode256()
	g.header.copyMeta(&n.header)

	for b := 0; b < 256; b++ {
		if i := n.index[b]; i != 0 {
			g.children[b] = n.children[i-1]
		}
	}

	return g
}

// shrink converts a node48 that has fallen to 16 children back into a
// node16, collecting the present bytes in ascending order so the smaller
// layout's sorted-array invariant holds from the start.
func (n *node48) shrink() *node16 {
	s := getNode16()
	s.header.copyMeta(&n.header)

	pos := 0
	for b := 0; b < 256; b++ {
		if i := n.index[b]; i != 0 {
			s.keys[pos] = byte(b)
			s.children[pos] = n.children[i-1]
			pos++
		}
	}

	return s
}

// minimum returns the leftmost leaf in the subtree rooted at this node,
// scanning the side table upward from byte 0.
func (n *node48) minimum() ref {
	for b := 0; b < 256; b++ {
		if i := n.index[b]; i != 0 {
			return minimumOf(n.children[i-1])
		}
	}

	return 0
}
