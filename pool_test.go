package art

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolSeedsAndRecirculates(t *testing.T) {
	fl := newTLFreeList(func() *node4 {
		n := &node4{}
		n.kind = typeNode4
		n.fromPool = true

		return n
	})

	n, ok := fl.get()
	require.True(t, ok, "first get must prime the reservoir")
	assert.True(t, n.fromPool)

	fl.put(n)

	again, ok := fl.get()
	require.True(t, ok)
	assert.Same(t, n, again, "the reservoir hands back what was returned, LIFO")
}

func TestPoolReportsExhaustion(t *testing.T) {
	fl := newTLFreeList(func() *node16 {
		n := &node16{}
		n.kind = typeNode16
		n.fromPool = true

		return n
	})

	for i := 0; i < freeListSeed; i++ {
		_, ok := fl.get()
		require.True(t, ok)
	}

	_, ok := fl.get()
	assert.False(t, ok, "an exhausted reservoir must fall back to fresh allocation")
}

func TestGetNodeFallsBackToFreshAllocation(t *testing.T) {
	taken := make([]*node48, 0, freeListSeed+1)
	for i := 0; i < freeListSeed; i++ {
		n, ok := node48Pool.get()
		require.True(t, ok)
		taken = append(taken, n)
	}

	fresh := getNode48()
	assert.False(t, fresh.fromPool, "overflow allocations are never pooled")
	assert.Equal(t, typeNode48, fresh.kind)

	// put the reservoir back so other tests on this goroutine see a full pool.
	for _, n := range taken {
		node48Pool.put(n)
	}

	releaseNode(newRef(typeNode48, fresh))

	n, ok := node48Pool.get()
	require.True(t, ok)
	assert.NotSame(t, fresh, n, "a fresh node must not re-enter the pool on release")
	node48Pool.put(n)
}

func TestReleaseNodeReturnsPooledNodes(t *testing.T) {
	n := getNode256()
	if !n.fromPool {
		t.Skip("reservoir exhausted by sibling tests on this goroutine")
	}

	n.numChildren = 3
	writeLock(&n.header)
	writeUnlockObsolete(&n.header)

	releaseNode(newRef(typeNode256, n))

	got := getNode256()
	require.Same(t, n, got, "pooled node must be recycled LIFO")
	assert.Equal(t, 0, got.numChildren)
	assert.False(t, isObsolete(got.version.Load()))
	assert.False(t, isLocked(got.version.Load()))

	releaseNode(newRef(typeNode256, got))
}

func TestLeafPoolRecyclesPerTree(t *testing.T) {
	p := newPool[string]()

	l := newLeaf(p, []byte("first"), "one")
	require.True(t, l.fromPool)

	p.releaseLeaf(l)

	l2 := newLeaf(p, []byte("second, much longer than the inline cap"), "two")
	assert.Same(t, l, l2, "the leaf reservoir hands back the released leaf")
	assert.Equal(t, []byte("second, much longer than the inline cap"), l2.key())
	assert.Equal(t, "two", l2.value)
}
