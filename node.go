package art

// minimumOf descends to the leftmost leaf reachable from r, following the
// first occupied child slot at each inner node: any leaf under a node
// shares that node's prefix, so its key bytes at the matching depth are as
// good as the node's own. This walk takes no locks; concurrent paths use
// minimumKeyOLC instead.
func minimumOf(r ref) ref {
	for {
		switch r.typ() {
		case typeLeaf:
			return r
		case typeNode4:
			r = (*node4)(r.ptr()).minimum()
		case typeNode16:
			r = (*node16)(r.ptr()).minimum()
		case typeNode48:
			r = (*node48)(r.ptr()).minimum()
		case typeNode256:
			r = (*node256)(r.ptr()).minimum()
		default:
			return 0
		}
	}
}

// firstChild returns the lowest-keyed direct child of the inner node r, or
// the zero ref if r has none. Unlike minimumOf this does not recurse past
// r's own level, letting Tree.minimumAttempt lock-couple one level at a
// time instead of walking a whole subtree unlocked.
func firstChild(r ref) ref {
	switch r.typ() {
	case typeNode4:
		n := (*node4)(r.ptr())
		if n.numChildren == 0 {
			return 0
		}

		return n.children[0]
	case typeNode16:
		n := (*node16)(r.ptr())
		if n.numChildren == 0 {
			return 0
		}

		return n.children[0]
	case typeNode48:
		n := (*node48)(r.ptr())

		for b := 0; b < 256; b++ {
			if i := n.index[b]; i != 0 {
				return n.children[i-1]
			}
		}

		return 0
	case typeNode256:
		n := (*node256)(r.ptr())

		for b := 0; b < 256; b++ {
			if !n.children[b].empty() {
				return n.children[b]
			}
		}

		return 0
	default:
		return 0
	}
}

// findChild returns the child slot for byte b under the inner node r, or
// nil if none exists.
func findChild(r ref, b byte) *ref {
	switch r.typ() {
	case typeNode4:
		return (*node4)(r.ptr()).findChild(b)
	case typeNode16:
		return (*node16)(r.ptr()).findChild(b)
	case typeNode48:
		return (*node48)(r.ptr()).findChild(b)
	case typeNode256:
		return (*node256)(r.ptr()).findChild(b)
	default:
		return nil
	}
}

// full reports whether the inner node r has no room for another child
// without growing.
func full(r ref) bool {
	switch r.typ() {
	case typeNode4:
		return (*node4)(r.ptr()).full()
	case typeNode16:
		return (*node16)(r.ptr()).full()
	case typeNode48:
		return (*node48)(r.ptr()).full()
	case typeNode256:
		return (*node256)(r.ptr()).full()
	default:
		return true
	}
}

// resolvePrefixBytes returns the full, authoritative prefix bytes stored at
// an inner node's header: the inline bytes when length is within
// inlinePrefixMax, otherwise the first (length) bytes of a descendant
// leaf's key starting at depth.
//
// The caller must hold a lock on r: its captured read version when owned is
// false, or r's write lock when owned is true. When the prefix exceeds the
// inline cap the descent to the leftmost leaf is read-lock-coupled level by
// level below r, and errRestart is returned if any level changes underfoot
// — a recycled leaf must never supply prefix bytes that pass as current.
func resolvePrefixBytes(r ref, v uint64, owned bool, depth int) ([]byte, error) {
	h := r.header()

	if b, ok := h.inlineBytes(); ok {
		return b, nil
	}

	key, err := minimumKeyOLC(r, v, owned)
	if err != nil {
		return nil, err
	}

	end := depth + h.length
	if end > len(key) {
		end = len(key)
	}

	return key[depth:end], nil
}

// minimumKeyOLC descends to the leftmost leaf under r and returns a copy of
// its key, validating every level's version after its child pointer has
// been read. r's own level is validated against v unless owned, in which
// case the caller's write lock already pins r's children in place.
func minimumKeyOLC(r ref, v uint64, owned bool) ([]byte, error) {
	cur, curH, curV := r, r.header(), v
	validate := !owned

	for {
		child := firstChild(cur)

		if validate {
			if err := readUnlock(curH, curV); err != nil {
				return nil, err
			}
		}

		if child.empty() {
			// an inner node with no child is only ever a torn read.
			return nil, errRestart
		}

		if child.isLeaf() {
			key := append([]byte(nil), leafKeyBytes(child)...)

			// re-validate after the copy: a leaf detached (and possibly
			// recycled) mid-read must not have its bytes trusted.
			if validate {
				if err := readUnlock(curH, curV); err != nil {
					return nil, err
				}
			}

			return key, nil
		}

		h := child.header()

		cv, err := readLock(h)
		if err != nil {
			return nil, err
		}

		// re-validate the parent now that the child is locked: the child
		// must still be the one the parent held when we read it.
		if validate {
			if err := readUnlock(curH, curV); err != nil {
				return nil, err
			}
		}

		cur, curH, curV = child, h, cv
		validate = true
	}
}

// leafKeyBytes recovers a leaf's complete key bytes from a bare ref, without
// knowing its value type T: overflow and inline both live in header, which
// is every leaf[T] instantiation's first field regardless of T.
func leafKeyBytes(r ref) []byte {
	h := r.header()

	if p := h.overflow; p != nil {
		return *p
	}

	n := h.length
	if n > inlinePrefixMax {
		// torn read against a concurrent recycle; whatever is returned
		// will fail the caller's version check, it just must not fault.
		n = inlinePrefixMax
	}

	return h.inline[:n]
}

// addChildDispatch adds a new (b, child) entry to the inner node r, which
// must not be full.
func addChildDispatch(r ref, b byte, child ref) {
	switch r.typ() {
	case typeNode4:
		(*node4)(r.ptr()).addChild(b, child)
	case typeNode16:
		(*node16)(r.ptr()).addChild(b, child)
	case typeNode48:
		(*node48)(r.ptr()).addChild(b, child)
	case typeNode256:
		(*node256)(r.ptr()).addChild(b, child)
	}
}

// growDispatch returns a new, larger-capacity copy of the full inner node r.
// node256 has no larger layout and is returned unchanged.
func growDispatch(r ref) ref {
	switch r.typ() {
	case typeNode4:
		return newRef(typeNode16, (*node4)(r.ptr()).grow())
	case typeNode16:
		return newRef(typeNode48, (*node16)(r.ptr()).grow())
	case typeNode48:
		return newRef(typeNode256, (*node48)(r.ptr()).grow())
	default:
		return r
	}
}

// removeChildDispatch removes the entry for byte b from the inner node r.
// slot, when non-nil, is the child-array pointer findChild returned for b
// (used by node4/node16 to recover the removed entry's position in O(1)
// instead of re-scanning).
func removeChildDispatch(r ref, b byte, slot *ref) {
	switch r.typ() {
	case typeNode4:
		n := (*node4)(r.ptr())
		n.removeChildAt(n.indexOf(slot))
	case typeNode16:
		n := (*node16)(r.ptr())
		n.removeChildAt(n.indexOf(slot))
	case typeNode48:
		(*node48)(r.ptr()).removeChild(b)
	case typeNode256:
		(*node256)(r.ptr()).removeChild(b)
	}
}

// shrinkDispatch converts the inner node r to its next smaller layout when
// its child count has fallen to or below that layout's shrink threshold:
// 4 for node16, 16 for node48, 48 for node256. node4 has no smaller layout;
// its single-child case is handled by path compression in Tree.Remove
// instead.
func shrinkDispatch(r ref) (ref, bool) {
	switch r.typ() {
	case typeNode16:
		n := (*node16)(r.ptr())
		if n.numChildren <= 4 {
			return newRef(typeNode4, n.shrink()), true
		}
	case typeNode48:
		n := (*node48)(r.ptr())
		if n.numChildren <= 16 {
			return newRef(typeNode16, n.shrink()), true
		}
	case typeNode256:
		n := (*node256)(r.ptr())
		if n.numChildren <= 48 {
			return newRef(typeNode48, n.shrink()), true
		}
	}

	return r, false
}
