package art

import "unsafe"

// Type identifies which concrete node layout a ref points to: a small
// closed set of tags dispatched on throughout the engine instead of using
// interface method tables, keeping the hot paths (child search, version
// validation) allocation- and vtable-free.
//
// The five concrete layouts adapt an inner node's representation to its
// fan-out:
//   - typeLeaf: terminal node carrying a full key and value
//   - typeNode4: up to 4 children, sorted parallel arrays
//   - typeNode16: up to 16 children, sorted parallel arrays
//   - typeNode48: up to 48 children behind a 256-entry side table
//   - typeNode256: up to 256 children, directly byte-indexed
//
// typeUnknown is the zero value, carried only by the empty ref.
type Type uint8

const (
	typeUnknown Type = iota
	typeLeaf
	typeNode4
	typeNode16
	typeNode48
	typeNode256
)

// nodeAlign is the minimum alignment Go guarantees for heap allocations of
// our node structs (all begin with a header whose first field is a
// pointer-sized atomic word), which leaves the low 3 bits of any node
// pointer free to carry a Type tag.
const (
	nodeAlign    = 8
	nodeTypeMask = uintptr(nodeAlign - 1)
	nodePtrMask  = ^nodeTypeMask
)

// ref is a type-tagged pointer to a node: the low bits carry the Type tag,
// the high bits the node's address, packed into a single word so that
// locating a node's slot and dispatching on its kind costs no more than a
// mask-and-switch — and so a child slot can be read or replaced in one
// word-sized access.
//
// The single-word property is load-bearing for the concurrency protocol:
// optimistic readers capture child slots without locks, and a word-sized
// slot means a racing slot replacement hands the reader either the old ref
// or the new one, never a torn mixture of tag and address. The version
// validation that follows decides whether what was read may be trusted.
//
// The zero ref is the empty ref: no node, typeUnknown tag.
type ref uintptr

// newRef packs a node kind and pointer into a ref.
func newRef[N any](t Type, p *N) ref {
	addr := uintptr(unsafe.Pointer(p))

	return ref((addr & nodePtrMask) | (uintptr(t) & nodeTypeMask))
}

// typ returns the node kind tag carried by r.
//
// The tag is read from the pointer word itself; no memory is dereferenced,
// which is what makes kind dispatch safe on a ref captured optimistically.
func (r ref) typ() Type { return Type(uintptr(r) & nodeTypeMask) }

// empty reports whether r refers to no node.
func (r ref) empty() bool { return r == 0 }

func (r ref) isLeaf() bool    { return r.typ() == typeLeaf }
func (r ref) isNode4() bool   { return r.typ() == typeNode4 }
func (r ref) isNode16() bool  { return r.typ() == typeNode16 }
func (r ref) isNode48() bool  { return r.typ() == typeNode48 }
func (r ref) isNode256() bool { return r.typ() == typeNode256 }

func (r ref) isInner() bool {
	switch r.typ() {
	case typeNode4, typeNode16, typeNode48, typeNode256:
		return true
	default:
		return false
	}
}

// ptr extracts the raw pointer carried by r, discarding the type tag.
func (r ref) ptr() unsafe.Pointer {
	return unsafe.Pointer(uintptr(r) & nodePtrMask)
}

// header returns the common header embedded in whatever node r refers to.
//
// This relies on every node type (leaf and inner alike) embedding header
// as its first field, so the header's address equals the node's address
// regardless of concrete type.
func (r ref) header() *header {
	if r.empty() {
		return nil
	}

	return (*header)(r.ptr())
}
