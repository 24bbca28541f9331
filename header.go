package art

import "sync/atomic"

// inlinePrefixMax is the number of prefix (or leaf key) bytes stored inline
// in a node's header before falling back to a descendant-leaf consultation
// (inner nodes) or a heap buffer (leaves).
//
// This is a layout constant only; it is not observable through the public
// API.
const inlinePrefixMax = 8

// version-word bit layout:
//
//	bit 0     obsolete
//	bit 1     write-locked
//	bits 2-63 change counter, incremented by 2 on every write-unlock
const (
	versionObsoleteBit = uint64(1) << 0
	versionLockedBit   = uint64(1) << 1
	versionLockMask    = versionObsoleteBit | versionLockedBit
)

// header is the common prefix every node layout embeds as its first field,
// giving all five node kinds a byte-compatible common header so a bare ref
// can be reinterpreted as any concrete type once its Type tag has been
// inspected.
//
// The header unifies three concerns that every node shares:
//   - Concurrency: the atomic version word readers validate against and
//     writers lock through (see olc.go for the protocol).
//   - Identity: the Type tag and pool-provenance flag that control how the
//     node is dispatched on and reclaimed.
//   - Key material: the compressed prefix of an inner node, or the full
//     key of a leaf, stored inline up to inlinePrefixMax bytes.
//
// Memory Layout:
//   - version: 8 bytes, atomic
//   - kind + fromPool: 2 bytes plus padding
//   - numChildren, length: child count and prefix/key length
//   - inline: the first inlinePrefixMax prefix/key bytes
//   - overflow: one pointer, leaf keys beyond the inline cap
//
// Sharing one storage slot between "inner prefix" and "leaf key" is what
// lets path compression transfer bytes between the two without copying
// through a third representation.
type header struct {
	// version is the OLC version word: see versionObsoleteBit/versionLockedBit.
	version atomic.Uint64

	// kind is this node's Type tag, duplicated from the owning ref for
	// contexts that only have a bare *header (e.g. the sentinel's child).
	kind Type

	// fromPool marks whether this node was handed out by a pool (and must
	// be returned to it) or allocated fresh with new (and must simply be
	// dropped for the GC to reclaim).
	fromPool bool

	// numChildren is the child count for inner nodes; unused (conceptually
	// 1) for leaves.
	numChildren int

	// length is the inner-node prefix length, or the leaf's full key
	// length.
	length int

	// inline holds the first min(length, inlinePrefixMax) bytes of the
	// prefix/key. For inner nodes whose length exceeds inlinePrefixMax,
	// inline is not authoritative — see resolvePrefixBytes.
	inline [inlinePrefixMax]byte

	// overflow holds the full key for a leaf whose length exceeds
	// inlinePrefixMax. Always nil for inner nodes: an inner node keeps only
	// the length beyond the inline cap (the bytes are recovered on demand
	// from a descendant leaf), while a leaf needs its own bytes available
	// independent of tree structure.
	//
	// Stored as a pointer to an immutable buffer rather than a slice so a
	// reader racing a pool recycle reads one word — either the old buffer
	// or the new one, never a torn ptr/len combination. The buffer itself
	// is never written after publication.
	overflow *[]byte
}

// setPrefix stores b as this header's prefix/key, inlining up to
// inlinePrefixMax bytes and copying the rest into overflow only when
// keepOverflow is true. Leaves always keep overflow; inner nodes never do —
// beyond the inline cap they keep only the length and recover the bytes
// from a descendant leaf.
func (h *header) setPrefix(b []byte, keepOverflow bool) {
	h.length = len(b)

	n := len(b)
	if n > inlinePrefixMax {
		n = inlinePrefixMax
	}

	copy(h.inline[:n], b[:n])

	if keepOverflow && len(b) > inlinePrefixMax {
		buf := append([]byte(nil), b...)
		h.overflow = &buf
	} else {
		h.overflow = nil
	}
}

// resetPrefix clears the stored prefix/key, freeing any overflow buffer.
func (h *header) resetPrefix() {
	h.length = 0
	h.overflow = nil
}

// inlineBytes returns the inline bytes when they are authoritative, i.e.
// length is within inlinePrefixMax.
func (h *header) inlineBytes() ([]byte, bool) {
	if h.length <= inlinePrefixMax {
		return h.inline[:h.length], true
	}

	return nil, false
}

// recycle resets h for reuse from a pool. The version word is advanced past
// its retired value — obsolete and lock bits cleared, counter bumped —
// rather than zeroed, so the node keeps one monotonic version lineage
// across recycles and a reader still holding a pre-recycle snapshot always
// observes a mismatch, never a coincidental match against the fresh state.
func (h *header) recycle(kind Type) {
	v := h.version.Load()
	h.version.Store((v &^ versionLockMask) + 4)

	h.kind = kind
	h.fromPool = true
	h.numChildren = 0
	h.length = 0
	h.inline = [inlinePrefixMax]byte{}
	h.overflow = nil
}

// copyMeta copies src's child count and prefix storage into h, leaving h's
// own version word, pool flag, and kind tag untouched. Used by grow/shrink
// when transplanting a node's contents into a replacement layout: the
// replacement must come up with its own unlocked version, not inherit the
// write-locked word of the node it replaces.
func (h *header) copyMeta(src *header) {
	h.numChildren = src.numChildren
	h.length = src.length
	h.inline = src.inline
	h.overflow = src.overflow
}
