// Package single implements a single-threaded Adaptive Radix Tree with the
// same key semantics as the concurrent engine in the parent package.
//
// It is retained for comparison: the recursive descent, the plain interface
// dispatch, and the uncapped prefix slices show what the algorithms look
// like with every concurrency concern removed. The concurrent engine's
// behavior for any single-threaded operation sequence is identical, which
// this package's tests exercise by running the two side by side.
//
// Not safe for concurrent use; callers needing that use the parent package.
package single

import "bytes"

// Tree is a single-threaded Adaptive Radix Tree keyed by arbitrary byte
// strings, mapping each key to a value of type T.
type Tree[T any] struct {
	root node
	size int
}

// New creates an empty tree.
func New[T any]() *Tree[T] {
	return &Tree[T]{}
}

// Len returns the number of keys currently stored.
func (t *Tree[T]) Len() int { return t.size }

// byteAt returns the key byte at depth, or the anchor byte 0 once depth has
// reached or passed the end of key.
func byteAt(key []byte, depth int) byte {
	if depth < len(key) {
		return key[depth]
	}

	return 0
}

// safeSlice returns key[from:], or nil if from is past the end of key.
func safeSlice(key []byte, from int) []byte {
	if from >= len(key) {
		return nil
	}

	return key[from:]
}

// commonPrefixLen returns the length of the shared leading bytes of a and b.
func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}

	return n
}

// Lookup returns the value stored for key, if any.
func (t *Tree[T]) Lookup(key []byte) (value T, found bool) {
	n := t.root
	depth := 0

	for {
		if n == nil {
			return value, false
		}

		if l, ok := n.(*leaf[T]); ok {
			if !bytes.Equal(l.key, key) {
				return value, false
			}

			return l.value, true
		}

		h := head(n)

		// If the stored prefix diverges from the key, the key is absent
		if commonPrefixLen(h.prefix, safeSlice(key, depth)) != len(h.prefix) {
			return value, false
		}

		depth += len(h.prefix)

		slot := findChild(n, byteAt(key, depth))
		if slot == nil {
			return value, false
		}

		n = *slot
		depth++
	}
}

// Contains reports whether key is present, without returning its value.
func (t *Tree[T]) Contains(key []byte) bool {
	_, found := t.Lookup(key)

	return found
}

// Minimum returns the key and value of the smallest key in the tree, in
// lexicographic order.
func (t *Tree[T]) Minimum() (key []byte, value T, found bool) {
	if t.root == nil {
		return nil, value, false
	}

	l, ok := minimum(t.root).(*leaf[T])
	if !ok {
		return nil, value, false
	}

	return append([]byte(nil), l.key...), l.value, true
}

// Upsert inserts key with value, or updates an existing key's value,
// returning the previous value and whether the key already existed.
func (t *Tree[T]) Upsert(key []byte, value T) (old T, existed bool) {
	return t.insert(&t.root, key, value, 0)
}

func (t *Tree[T]) insert(slot *node, key []byte, value T, depth int) (old T, existed bool) {
	// An empty slot takes the new leaf directly
	if *slot == nil {
		*slot = &leaf[T]{key: append([]byte(nil), key...), value: value}
		t.size++

		return old, false
	}

	// A leaf either matches the key or splits into a node4
	if l, ok := (*slot).(*leaf[T]); ok {
		if bytes.Equal(l.key, key) {
			old = l.value
			l.value = value

			return old, true
		}

		t.splitLeaf(slot, l, key, value, depth)

		return old, false
	}

	h := head(*slot)
	pref := h.prefix
	n := commonPrefixLen(pref, safeSlice(key, depth))

	// The stored prefix diverges from the key: split it at the fork
	if n != len(pref) {
		t.splitPrefix(slot, key, value, n, depth)

		return old, false
	}

	depth += len(pref)
	b := byteAt(key, depth)

	childSlot := findChild(*slot, b)
	if childSlot == nil {
		addChild(slot, b, &leaf[T]{key: append([]byte(nil), key...), value: value})
		t.size++

		return old, false
	}

	return t.insert(childSlot, key, value, depth+1)
}

// splitLeaf replaces the leaf at *slot with a node4 holding both the old
// leaf and a new leaf for key, diverging at their first mismatching byte
// past depth.
func (t *Tree[T]) splitLeaf(slot *node, old *leaf[T], key []byte, value T, depth int) {
	ea := safeSlice(old.key, depth)
	ka := safeSlice(key, depth)
	common := commonPrefixLen(ea, ka)

	branch := &node4{}
	branch.prefix = append([]byte(nil), ka[:common]...)

	var eb, nb byte
	if common < len(ea) {
		eb = ea[common]
	}

	if common < len(ka) {
		nb = ka[common]
	}

	var asNode node = branch
	addChild(&asNode, eb, old)

	// eb == nb only when one key ends exactly here (using the anchor byte
	// 0) and the other's real next byte also happens to be 0. The existing
	// leaf wins; the new key is not inserted.
	if nb != eb {
		addChild(&asNode, nb, &leaf[T]{key: append([]byte(nil), key...), value: value})
		t.size++
	}

	*slot = asNode
}

// splitPrefix inserts a node4 above the inner node at *slot, at position n
// of its stored prefix: the shared portion becomes the new node's prefix,
// the old node keeps the remainder, and a fresh leaf takes the other
// branch.
func (t *Tree[T]) splitPrefix(slot *node, key []byte, value T, n, depth int) {
	inner := *slot
	h := head(inner)
	pref := h.prefix

	branch := &node4{}
	branch.prefix = append([]byte(nil), pref[:n]...)

	cb := pref[n]

	var nb byte
	if kb := safeSlice(key, depth+n); len(kb) > 0 {
		nb = kb[0]
	}

	h.prefix = append([]byte(nil), pref[n+1:]...)

	var asNode node = branch
	addChild(&asNode, cb, inner)

	if nb != cb {
		addChild(&asNode, nb, &leaf[T]{key: append([]byte(nil), key...), value: value})
		t.size++
	}

	*slot = asNode
}

// Remove deletes key, returning its value and whether it was present.
func (t *Tree[T]) Remove(key []byte) (old T, existed bool) {
	return t.remove(nil, &t.root, key, 0)
}

func (t *Tree[T]) remove(parent *node, slot *node, key []byte, depth int) (old T, existed bool) {
	if *slot == nil {
		return old, false
	}

	// A matching leaf is detached from its parent; the root leaf simply
	// empties the tree
	if l, ok := (*slot).(*leaf[T]); ok {
		if !bytes.Equal(l.key, key) {
			return old, false
		}

		old = l.value

		if parent == nil {
			*slot = nil
		} else {
			deleteChild(parent, byteAt(key, depth-1))
		}

		t.size--

		return old, true
	}

	h := head(*slot)
	if commonPrefixLen(h.prefix, safeSlice(key, depth)) != len(h.prefix) {
		return old, false
	}

	depth += len(h.prefix)

	childSlot := findChild(*slot, byteAt(key, depth))
	if childSlot == nil {
		return old, false
	}

	return t.remove(slot, childSlot, key, depth+1)
}
