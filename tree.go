package art

import "sync/atomic"

// Tree is a concurrent Adaptive Radix Tree keyed by arbitrary byte strings,
// mapping each key to a value of type T.
//
// All methods are safe for concurrent use by multiple goroutines. Lookup
// never blocks a writer and never takes a lock of its own beyond the
// optimistic version checks described in olc.go; Upsert and Remove take
// short-lived per-node write locks only at the nodes they actually modify.
//
type Tree[T any] struct {
	// metaRoot is a fixed, always-present lock anchor whose sole purpose is
	// to give the root slot (below) something to write-lock when the very
	// first key is inserted or the root itself is replaced.
	metaRoot header

	// root is the tree's actual root slot: empty, a single leaf, or an
	// inner node, depending on how many keys have been inserted.
	root ref

	pool *pool[T]
	size atomic.Int64
}

// New creates an empty tree.
func New[T any]() *Tree[T] {
	return &Tree[T]{pool: newPool[T]()}
}

// Len returns the number of keys currently stored.
func (t *Tree[T]) Len() int { return int(t.size.Load()) }

// byteAt returns the key byte at depth, or the anchor byte 0 once depth has
// reached or passed the end of key — a key that ends at an inner node hangs
// off that node's 0 slot.
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
	for {
		v, ok, restart := t.lookupAttempt(key)
		if restart {
			continue
		}

		return v, ok
	}
}

func (t *Tree[T]) lookupAttempt(key []byte) (value T, found, restart bool) {
	ownerH := &t.metaRoot

	ownerV, err := readLock(ownerH)
	if err != nil {
		return value, false, true
	}

	cur := t.root
	depth := 0

	for {
		if cur.empty() {
			if readUnlock(ownerH, ownerV) != nil {
				return value, false, true
			}

			return value, false, false
		}

		if cur.isLeaf() {
			l := (*leaf[T])(cur.ptr())
			matches := l.matches(key)
			v := l.value // snapshot before validating: never re-read a node after its version check passes

			if readUnlock(ownerH, ownerV) != nil {
				return value, false, true
			}

			if !matches {
				return value, false, false
			}

			return v, true, false
		}

		h := cur.header()

		v, err := readLock(h)
		if err != nil {
			return value, false, true
		}

		pref, err := resolvePrefixBytes(cur, v, false, depth)
		if err != nil {
			return value, false, true
		}

		n := commonPrefixLen(pref, safeSlice(key, depth))

		if n != len(pref) {
			if readUnlock(h, v) != nil || readUnlock(ownerH, ownerV) != nil {
				return value, false, true
			}

			return value, false, false
		}

		depth += len(pref)

		slot := findChild(cur, byteAt(key, depth))

		var child ref
		if slot != nil {
			child = *slot
		}

		if readUnlock(h, v) != nil || readUnlock(ownerH, ownerV) != nil {
			return value, false, true
		}

		if slot == nil {
			return value, false, false
		}

		depth++
		ownerH, ownerV = h, v
		cur = child
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
	for {
		k, v, ok, restart := t.minimumAttempt()
		if restart {
			continue
		}

		return k, v, ok
	}
}

// minimumAttempt descends leftmost one locked level at a time, exactly like
// lookupAttempt, rather than calling the unlocked minimumOf helper over the
// whole subtree in one shot: a multi-level walk with no per-level
// validation would read raw child refs out from under a concurrent
// structural mutation with nothing to detect the tear.
func (t *Tree[T]) minimumAttempt() (key []byte, value T, found, restart bool) {
	ownerH := &t.metaRoot

	ownerV, err := readLock(ownerH)
	if err != nil {
		return nil, value, false, true
	}

	cur := t.root

	for {
		if cur.empty() {
			if readUnlock(ownerH, ownerV) != nil {
				return nil, value, false, true
			}

			return nil, value, false, false
		}

		if cur.isLeaf() {
			l := (*leaf[T])(cur.ptr())
			k := append([]byte(nil), l.key()...)
			v := l.value

			if readUnlock(ownerH, ownerV) != nil {
				return nil, value, false, true
			}

			return k, v, true, false
		}

		h := cur.header()

		v, err := readLock(h)
		if err != nil {
			return nil, value, false, true
		}

		child := firstChild(cur)

		if readUnlock(h, v) != nil || readUnlock(ownerH, ownerV) != nil {
			return nil, value, false, true
		}

		ownerH, ownerV = h, v
		cur = child
	}
}

// Upsert inserts key with value, or updates an existing key's value,
// returning the previous value and whether the key already existed.
func (t *Tree[T]) Upsert(key []byte, value T) (old T, existed bool) {
	for {
		v, existedOut, restart := t.upsertAttempt(key, value)
		if restart {
			continue
		}

		return v, existedOut
	}
}

func (t *Tree[T]) upsertAttempt(key []byte, value T) (old T, existed, restart bool) {
	ownerH := &t.metaRoot

	ownerV, err := readLock(ownerH)
	if err != nil {
		return old, false, true
	}

	slotPtr := &t.root
	depth := 0

	for {
		cur := *slotPtr

		if cur.empty() {
			if err := upgrade(ownerH, ownerV); err != nil {
				return old, false, true
			}

			l := newLeaf(t.pool, key, value)
			*slotPtr = l.ref()
			t.size.Add(1)
			writeUnlock(ownerH)

			return old, false, false
		}

		if cur.isLeaf() {
			l := (*leaf[T])(cur.ptr())

			if l.matches(key) {
				if err := upgrade(ownerH, ownerV); err != nil {
					return old, false, true
				}

				old = l.value
				l.value = value
				writeUnlock(ownerH)

				return old, true, false
			}

			if err := upgrade(ownerH, ownerV); err != nil {
				return old, false, true
			}

			t.splitLeafAt(slotPtr, l, key, value, depth)
			writeUnlock(ownerH)

			return old, false, false
		}

		h := cur.header()

		v, err := readLock(h)
		if err != nil {
			return old, false, true
		}

		pref, err := resolvePrefixBytes(cur, v, false, depth)
		if err != nil {
			return old, false, true
		}

		n := commonPrefixLen(pref, safeSlice(key, depth))

		if n != len(pref) {
			if err := upgrade(ownerH, ownerV); err != nil {
				return old, false, true
			}

			if err := upgradeAndRelease(h, v, func() { writeUnlock(ownerH) }); err != nil {
				return old, false, true
			}

			t.splitPrefixAt(slotPtr, cur, h, pref, n, key, value, depth)
			writeUnlock(h)
			writeUnlock(ownerH)

			return old, false, false
		}

		depth += len(pref)
		b := byteAt(key, depth)

		childSlot := findChild(cur, b)

		if childSlot == nil {
			if err := upgrade(h, v); err != nil {
				return old, false, true
			}

			if !t.addChildAt(ownerH, ownerV, slotPtr, cur, h, b, key, value) {
				return old, false, true
			}

			return old, false, false
		}

		if err := readUnlock(h, v); err != nil || readUnlock(ownerH, ownerV) != nil {
			return old, false, true
		}

		depth++
		ownerH, ownerV, slotPtr = h, v, childSlot
	}
}

// splitLeafAt replaces the leaf at *slotPtr (owned under an already-held
// write lock) with a new node4 holding both the old leaf and a newly
// created leaf for key/value, diverging at their first mismatching byte
// past depth.
func (t *Tree[T]) splitLeafAt(slotPtr *ref, old *leaf[T], key []byte, value T, depth int) {
	existingKey := old.key()

	ea := safeSlice(existingKey, depth)
	ka := safeSlice(key, depth)
	common := commonPrefixLen(ea, ka)

	branch := getNode4()
	branch.setPrefix(ka[:common], false)

	var eb, nb byte
	if common < len(ea) {
		eb = ea[common]
	}

	if common < len(ka) {
		nb = ka[common]
	}

	branch.addChild(eb, old.ref())

	// eb == nb only when one key ends exactly here (using the anchor byte
	// 0) and the other's real next byte also happens to be 0 — the one
	// collision the anchor-byte convention cannot distinguish. The existing
	// leaf wins; the new key is not inserted.
	if nb != eb {
		newL := newLeaf(t.pool, key, value)
		branch.addChild(nb, newL.ref())
		t.size.Add(1)
	}

	*slotPtr = newRef(typeNode4, branch)
}

// splitPrefixAt inserts a new node4 above cur, at the point where cur's own
// stored prefix first diverges from key: the shared portion becomes the
// new node4's prefix, cur keeps the remainder (shortened), and a fresh leaf
// for key/value becomes the new node4's other child.
func (t *Tree[T]) splitPrefixAt(slotPtr *ref, cur ref, h *header, pref []byte, n int, key []byte, value T, depth int) {
	branch := getNode4()
	branch.setPrefix(pref[:n], false)

	var cb byte
	if n < len(pref) {
		cb = pref[n]
	}

	kb := safeSlice(key, depth+n)

	var nb byte
	if len(kb) > 0 {
		nb = kb[0]
	}

	var remaining []byte
	if n+1 < len(pref) {
		remaining = append([]byte(nil), pref[n+1:]...)
	}

	h.setPrefix(remaining, false)

	branch.addChild(cb, cur)

	if nb != cb {
		newL := newLeaf(t.pool, key, value)
		branch.addChild(nb, newL.ref())
		t.size.Add(1)
	}

	*slotPtr = newRef(typeNode4, branch)
}

// addChildAt adds a new leaf for key/value directly into cur's own child
// array (h is cur's already write-locked header), growing cur into the
// next layout and swapping it into *slotPtr first if it has no room.
// Reports false if the owner's lock could not be acquired for a required
// grow-and-swap, in which case the caller must restart.
func (t *Tree[T]) addChildAt(ownerH *header, ownerV uint64, slotPtr *ref, cur ref, h *header, b byte, key []byte, value T) bool {
	newL := newLeaf(t.pool, key, value)

	if !full(cur) {
		addChildDispatch(cur, b, newL.ref())
		t.size.Add(1)
		writeUnlock(h)

		return true
	}

	// cur has no room: grow it, add the child to the grown copy, and
	// publish the copy in the owner's slot. The owner must also be
	// write-locked since it is the one whose slot is being rewritten.
	grown := growDispatch(cur)
	addChildDispatch(grown, b, newL.ref())

	// upgrade on an already write-locked h's owner: ownerV was read-locked
	// and never invalidated since, so this always succeeds unless a
	// concurrent writer beat us to it, in which case we must back out of
	// cur's write lock before restarting. Nothing published yet, so the
	// grown copy and the fresh leaf both go straight back to their pools.
	if err := upgradeAndRelease(ownerH, ownerV, func() {
		writeUnlock(h)
		releaseNode(grown)
		t.pool.releaseLeaf(newL)
	}); err != nil {
		return false
	}

	*slotPtr = grown
	t.size.Add(1)
	writeUnlockObsolete(h)
	writeUnlock(ownerH)
	releaseNode(cur)

	return true
}

// Remove deletes key, returning its value and whether it was present.
func (t *Tree[T]) Remove(key []byte) (old T, existed bool) {
	for {
		v, existedOut, restart := t.removeAttempt(key)
		if restart {
			continue
		}

		return v, existedOut
	}
}

func (t *Tree[T]) removeAttempt(key []byte) (old T, existed, restart bool) {
	ownerH := &t.metaRoot

	ownerV, err := readLock(ownerH)
	if err != nil {
		return old, false, true
	}

	slotPtr := &t.root
	depth := 0

	for {
		cur := *slotPtr

		if cur.empty() {
			if readUnlock(ownerH, ownerV) != nil {
				return old, false, true
			}

			return old, false, false
		}

		if cur.isLeaf() {
			l := (*leaf[T])(cur.ptr())

			if !l.matches(key) {
				if readUnlock(ownerH, ownerV) != nil {
					return old, false, true
				}

				return old, false, false
			}

			if err := upgrade(ownerH, ownerV); err != nil {
				return old, false, true
			}

			old = l.value
			*slotPtr = 0
			t.size.Add(-1)
			writeUnlock(ownerH)
			t.pool.releaseLeaf(l)

			return old, true, false
		}

		h := cur.header()

		v, err := readLock(h)
		if err != nil {
			return old, false, true
		}

		pref, err := resolvePrefixBytes(cur, v, false, depth)
		if err != nil {
			return old, false, true
		}

		n := commonPrefixLen(pref, safeSlice(key, depth))

		if n != len(pref) {
			if readUnlock(h, v) != nil || readUnlock(ownerH, ownerV) != nil {
				return old, false, true
			}

			return old, false, false
		}

		atCur := depth
		depth += len(pref)
		b := byteAt(key, depth)

		childSlot := findChild(cur, b)
		if childSlot == nil {
			if readUnlock(h, v) != nil || readUnlock(ownerH, ownerV) != nil {
				return old, false, true
			}

			return old, false, false
		}

		child := *childSlot

		if child.isLeaf() {
			cl := (*leaf[T])(child.ptr())

			if !cl.matches(key) {
				if readUnlock(h, v) != nil || readUnlock(ownerH, ownerV) != nil {
					return old, false, true
				}

				return old, false, false
			}

			if err := upgrade(h, v); err != nil {
				return old, false, true
			}

			old = cl.value

			if rerr := t.removeChildAt(ownerH, ownerV, slotPtr, cur, h, atCur, b, childSlot); rerr != nil {
				return old, false, true
			}

			t.size.Add(-1)
			t.pool.releaseLeaf(cl)

			return old, true, false
		}

		if readUnlock(h, v) != nil || readUnlock(ownerH, ownerV) != nil {
			return old, false, true
		}

		depth++
		ownerH, ownerV, slotPtr = h, v, childSlot
	}
}

// needAdjustAfterDelete reports whether removing one child from cur would
// force a structural change that rewrites the owner's slot: collapsing an
// emptied node, path-compressing a node4 down to its sole survivor, or
// shrinking a larger layout at its threshold.
func needAdjustAfterDelete(cur ref, h *header) bool {
	remaining := h.numChildren - 1

	switch cur.typ() {
	case typeNode4:
		return remaining <= 1
	case typeNode16:
		return remaining <= 4
	case typeNode48:
		return remaining <= 16
	case typeNode256:
		return remaining <= 48
	default:
		return false
	}
}

// removeChildAt removes the entry at childSlot from cur (h already
// write-locked), then shrinks or path-compresses cur as needed:
//
//   - a node4 left with a single child is merged away entirely, fusing its
//     own prefix, branch byte, and surviving child's prefix into that
//     child;
//   - a node16/node48/node256 whose count has fallen to its shrink
//     threshold converts to the next smaller layout.
//
// Either case replaces cur in the owner's slot, so the owner is write-locked
// too (via upgrade from the already-validated ownerV) — and, critically,
// BEFORE cur is touched: a failed owner upgrade must leave the tree exactly
// as the restarted attempt will find it.
func (t *Tree[T]) removeChildAt(ownerH *header, ownerV uint64, slotPtr *ref, cur ref, h *header, atCur int, b byte, childSlot *ref) error {
	if !needAdjustAfterDelete(cur, h) {
		// the owner's slot keeps pointing at cur, so only cur's own
		// write lock (already held by the caller) is involved.
		removeChildDispatch(cur, b, childSlot)
		writeUnlock(h)

		return nil
	}

	if err := upgradeAndRelease(ownerH, ownerV, func() { writeUnlock(h) }); err != nil {
		return err
	}

	// resolve before the removal, and before any mutation at all: the
	// leftmost leaf supplying prefix bytes beyond the inline cap may be
	// exactly the child being detached, and a restart must leave the tree
	// untouched.
	curPrefix, err := resolvePrefixBytes(cur, 0, true, atCur)
	if err != nil {
		writeUnlock(h)
		writeUnlock(ownerH)

		return err
	}

	curPrefix = append([]byte(nil), curPrefix...)

	var replacement ref

	switch remaining := h.numChildren - 1; {
	case remaining == 0:
		removeChildDispatch(cur, b, childSlot)
		replacement = 0

	case cur.typ() == typeNode4 && remaining == 1:
		n4 := (*node4)(cur.ptr())

		// the survivor is the entry we are NOT removing.
		soleB, soleChild := n4.soleChild()
		if soleB == b {
			soleB, soleChild = n4.keys[1], n4.children[1]
		}

		if !soleChild.isLeaf() {
			childH := soleChild.header()
			writeLock(childH)

			childDepth := atCur + len(curPrefix) + 1

			childPrefix, err := resolvePrefixBytes(soleChild, 0, true, childDepth)
			if err != nil {
				writeUnlock(childH)
				writeUnlock(h)
				writeUnlock(ownerH)

				return err
			}

			combined := make([]byte, 0, len(curPrefix)+1+len(childPrefix))
			combined = append(combined, curPrefix...)
			combined = append(combined, soleB)
			combined = append(combined, childPrefix...)

			childH.setPrefix(combined, false)
			removeChildDispatch(cur, b, childSlot)
			*slotPtr = soleChild
			writeUnlock(childH)
			writeUnlockObsolete(h)
			writeUnlock(ownerH)
			releaseNode(cur)

			return nil
		}

		removeChildDispatch(cur, b, childSlot)
		replacement = soleChild

	default:
		removeChildDispatch(cur, b, childSlot)
		replacement, _ = shrinkDispatch(cur)
	}

	*slotPtr = replacement

	writeUnlockObsolete(h)
	writeUnlock(ownerH)
	releaseNode(cur)

	return nil
}

// Release discards every key in the tree and hands all of its nodes back to
// their pools for reuse, leaving t empty but usable.
//
// Release may run concurrently with other operations: the root is detached
// under the sentinel's write lock, so in-flight readers fail their version
// checks and restart against the now-empty tree, and every reclaimed node is
// marked obsolete before being recycled so a stale pointer is never trusted.
func (t *Tree[T]) Release() {
	writeLock(&t.metaRoot)

	root := t.root
	t.root = 0
	t.size.Store(0)

	writeUnlock(&t.metaRoot)

	t.releaseSubtree(root)
}

// releaseSubtree destroys the subtree rooted at r post-order: children
// first, then r itself, each write-locked, marked obsolete, and returned to
// its pool.
func (t *Tree[T]) releaseSubtree(r ref) {
	if r.empty() {
		return
	}

	h := r.header()
	writeLock(h)

	switch r.typ() {
	case typeLeaf:
		writeUnlockObsolete(h)
		t.pool.releaseLeaf((*leaf[T])(r.ptr()))

		return
	case typeNode4:
		n := (*node4)(r.ptr())
		for i := 0; i < n.numChildren; i++ {
			t.releaseSubtree(n.children[i])
		}
	case typeNode16:
		n := (*node16)(r.ptr())
		for i := 0; i < n.numChildren; i++ {
			t.releaseSubtree(n.children[i])
		}
	case typeNode48:
		n := (*node48)(r.ptr())
		for b := 0; b < 256; b++ {
			if i := n.index[b]; i != 0 {
				t.releaseSubtree(n.children[i-1])
			}
		}
	case typeNode256:
		n := (*node256)(r.ptr())
		for b := 0; b < 256; b++ {
			t.releaseSubtree(n.children[b])
		}
	}

	writeUnlockObsolete(h)
	releaseNode(r)
}
