package art

import "bytes"

// leaf is the terminal node of the tree: it carries the complete original
// key (inline up to inlinePrefixMax bytes, else in an owned heap buffer) and
// the caller's value.
//
// A leaf's key never changes while the leaf is attached to the tree; only
// its value is overwritten in place, under the parent's write lock. This
// immutability is what lets inner nodes recover prefix material from any
// descendant leaf without copying it eagerly.
//
// Memory Layout:
//   - header: version word, type tag, key storage
//   - value: the caller's value, opaque to the tree
//
// Generic Type Parameter:
//   - T: the type of values stored in the tree
type leaf[T any] struct {
	header

	// value is the caller-supplied value for this key.
	value T
}

// newLeaf allocates (or recycles, via p) a leaf holding key and value.
func newLeaf[T any](p *pool[T], key []byte, value T) *leaf[T] {
	l := p.getLeaf()
	l.kind = typeLeaf
	l.setPrefix(key, true)
	l.value = value

	return l
}

// key returns the leaf's full original key, whether stored inline or in
// the overflow buffer.
func (l *leaf[T]) key() []byte {
	return leafKeyBytes(l.ref())
}

// matches reports whether this leaf's stored key equals key exactly — the
// terminal equality check at the end of lookup, insert, and delete.
func (l *leaf[T]) matches(key []byte) bool {
	return bytes.Equal(l.key(), key)
}

// ref returns the tagged pointer for this leaf, suitable for storing in a
// parent's child slot.
func (l *leaf[T]) ref() ref { return newRef(typeLeaf, l) }
