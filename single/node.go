package single

// kind identifies which concrete layout a node value is.
type kind uint8

const (
	kindLeaf kind = iota
	kindNode4
	kindNode16
	kindNode48
	kindNode256
)

// node is the closed set of tree node layouts. Child slots hold node
// values directly; a nil slot means absence. Unlike the concurrent
// engine's tagged-pointer refs, plain interface dispatch is fine here —
// there is no optimistic reader that needs a single-word slot, and no
// version word to collocate.
type node interface {
	kind() kind
}

// header carries what every inner layout shares: the compressed prefix of
// all descendants and the child count.
//
// The prefix is a plain byte slice with no inline cap: a single-threaded
// tree never needs to consult a descendant leaf to recover prefix bytes,
// so the whole compressed run is kept where it is compared.
type header struct {
	prefix   []byte
	childNum int
}

type node4 struct {
	header

	keys     [4]byte
	children [4]node
}

type node16 struct {
	header

	keys     [16]byte
	children [16]node
}

// node48 keeps a 256-entry byte-to-slot side table; index[b] is 0 for
// absent, else the 1-based child slot.
type node48 struct {
	header

	index    [256]uint8
	children [48]node
}

type node256 struct {
	header

	children [256]node
}

// leaf carries the full original key and the caller's value.
type leaf[T any] struct {
	key   []byte
	value T
}

func (n *node4) kind() kind   { return kindNode4 }
func (n *node16) kind() kind  { return kindNode16 }
func (n *node48) kind() kind  { return kindNode48 }
func (n *node256) kind() kind { return kindNode256 }
func (l *leaf[T]) kind() kind { return kindLeaf }

// head returns the embedded header of an inner node, or nil for a leaf.
func head(n node) *header {
	switch v := n.(type) {
	case *node4:
		return &v.header
	case *node16:
		return &v.header
	case *node48:
		return &v.header
	case *node256:
		return &v.header
	default:
		return nil
	}
}

// findChild returns the child slot for byte b under the inner node n, or
// nil if none exists. Returning the slot (not the child) lets callers
// replace the child in place when it grows or collapses.
func findChild(n node, b byte) *node {
	switch v := n.(type) {
	case *node4:
		for i := 0; i < v.childNum; i++ {
			if v.keys[i] == b {
				return &v.children[i]
			}
		}
	case *node16:
		for i := 0; i < v.childNum; i++ {
			if v.keys[i] == b {
				return &v.children[i]
			}
		}
	case *node48:
		if i := v.index[b]; i != 0 {
			return &v.children[i-1]
		}
	case *node256:
		if v.children[b] != nil {
			return &v.children[b]
		}
	}

	return nil
}

// addChild inserts (b, child) under *slot, growing the node into the next
// larger layout in place when it is full.
func addChild(slot *node, b byte, child node) {
	switch v := (*slot).(type) {
	case *node4:
		if v.childNum < 4 {
			i := 0
			for ; i < v.childNum; i++ {
				if b < v.keys[i] {
					break
				}
			}

			copy(v.keys[i+1:v.childNum+1], v.keys[i:v.childNum])
			copy(v.children[i+1:v.childNum+1], v.children[i:v.childNum])
			v.keys[i] = b
			v.children[i] = child
			v.childNum++

			return
		}

		g := &node16{header: v.header}
		copy(g.keys[:], v.keys[:v.childNum])
		copy(g.children[:], v.children[:v.childNum])
		*slot = g
		addChild(slot, b, child)

	case *node16:
		if v.childNum < 16 {
			i := 0
			for ; i < v.childNum; i++ {
				if b < v.keys[i] {
					break
				}
			}

			copy(v.keys[i+1:v.childNum+1], v.keys[i:v.childNum])
			copy(v.children[i+1:v.childNum+1], v.children[i:v.childNum])
			v.keys[i] = b
			v.children[i] = child
			v.childNum++

			return
		}

		g := &node48{header: v.header}
		for i := 0; i < v.childNum; i++ {
			g.index[v.keys[i]] = uint8(i + 1)
			g.children[i] = v.children[i]
		}
		*slot = g
		addChild(slot, b, child)

	case *node48:
		if v.childNum < 48 {
			slotIdx := freeSlot48(v)
			v.children[slotIdx] = child
			v.index[b] = uint8(slotIdx + 1)
			v.childNum++

			return
		}

		g := &node256{header: v.header}
		for i := 0; i < 256; i++ {
			if j := v.index[i]; j != 0 {
				g.children[i] = v.children[j-1]
			}
		}
		*slot = g
		addChild(slot, b, child)

	case *node256:
		v.children[b] = child
		v.childNum++
	}
}

func freeSlot48(n *node48) int {
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

	panic("art/single: node48 has no free slot")
}

// deleteChild removes the entry for byte b under *slot, shrinking the node
// to the next smaller layout at its threshold, or collapsing a node4 left
// with one child into that child via path compression.
func deleteChild(slot *node, b byte) {
	switch v := (*slot).(type) {
	case *node4:
		i := 0
		for ; i < v.childNum; i++ {
			if v.keys[i] == b {
				break
			}
		}

		if i == v.childNum {
			return
		}

		copy(v.keys[i:v.childNum-1], v.keys[i+1:v.childNum])
		copy(v.children[i:v.childNum-1], v.children[i+1:v.childNum])
		v.childNum--
		v.children[v.childNum] = nil

		if v.childNum == 1 {
			// path compression: the surviving child absorbs this node's
			// prefix plus the branch byte leading to it. A leaf already
			// carries its full key, so only inner survivors merge.
			child := v.children[0]
			if h := head(child); h != nil {
				merged := make([]byte, 0, len(v.prefix)+1+len(h.prefix))
				merged = append(merged, v.prefix...)
				merged = append(merged, v.keys[0])
				merged = append(merged, h.prefix...)
				h.prefix = merged
			}

			*slot = child
		}

	case *node16:
		i := 0
		for ; i < v.childNum; i++ {
			if v.keys[i] == b {
				break
			}
		}

		if i == v.childNum {
			return
		}

		copy(v.keys[i:v.childNum-1], v.keys[i+1:v.childNum])
		copy(v.children[i:v.childNum-1], v.children[i+1:v.childNum])
		v.childNum--
		v.children[v.childNum] = nil

		if v.childNum == 4 {
			s := &node4{header: v.header}
			copy(s.keys[:], v.keys[:4])
			copy(s.children[:], v.children[:4])
			*slot = s
		}

	case *node48:
		i := v.index[b]
		if i == 0 {
			return
		}

		v.children[i-1] = nil
		v.index[b] = 0
		v.childNum--

		if v.childNum == 16 {
			s := &node16{header: v.header}
			pos := 0
			for c := 0; c < 256; c++ {
				if j := v.index[c]; j != 0 {
					s.keys[pos] = byte(c)
					s.children[pos] = v.children[j-1]
					pos++
				}
			}
			*slot = s
		}

	case *node256:
		if v.children[b] == nil {
			return
		}

		v.children[b] = nil
		v.childNum--

		if v.childNum == 48 {
			s := &node48{header: v.header}
			pos := 0
			for c := 0; c < 256; c++ {
				if v.children[c] != nil {
					s.children[pos] = v.children[c]
					s.index[c] = uint8(pos + 1)
					pos++
				}
			}
			*slot = s
		}
	}
}

// minimum returns the leftmost leaf under n.
func minimum(n node) node {
	for {
		switch v := n.(type) {
		case *node4:
			if v.childNum == 0 {
				return nil
			}

			n = v.children[0]
		case *node16:
			if v.childNum == 0 {
				return nil
			}

			n = v.children[0]
		case *node48:
			n = nil
			for b := 0; b < 256; b++ {
				if i := v.index[b]; i != 0 {
					n = v.children[i-1]
					break
				}
			}

			if n == nil {
				return nil
			}
		case *node256:
			n = nil
			for b := 0; b < 256; b++ {
				if v.children[b] != nil {
					n = v.children[b]
					break
				}
			}

			if n == nil {
				return nil
			}
		default:
			return n
		}
	}
}
