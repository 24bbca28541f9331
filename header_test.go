package art

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderSetPrefix(t *testing.T) {
	var h header

	h.setPrefix([]byte("abc"), false)
	assert.Equal(t, 3, h.length)

	b, ok := h.inlineBytes()
	require.True(t, ok)
	assert.Equal(t, []byte("abc"), b)
	assert.Nil(t, h.overflow)
}

func TestHeaderSetPrefixBeyondInlineCap(t *testing.T) {
	long := bytes.Repeat([]byte("x"), inlinePrefixMax+4)

	t.Run("inner nodes keep only the length", func(t *testing.T) {
		var h header

		h.setPrefix(long, false)
		assert.Equal(t, len(long), h.length)
		assert.Nil(t, h.overflow)

		_, ok := h.inlineBytes()
		assert.False(t, ok, "inline bytes are not authoritative past the cap")
	})

	t.Run("leaves keep the full key in overflow", func(t *testing.T) {
		var h header

		h.setPrefix(long, true)
		assert.Equal(t, len(long), h.length)
		require.NotNil(t, h.overflow)
		assert.Equal(t, long, *h.overflow)
	})
}

func TestHeaderResetPrefix(t *testing.T) {
	var h header

	h.setPrefix(bytes.Repeat([]byte("y"), 20), true)
	h.resetPrefix()

	assert.Equal(t, 0, h.length)
	assert.Nil(t, h.overflow)

	b, ok := h.inlineBytes()
	require.True(t, ok)
	assert.Empty(t, b)
}

func TestHeaderRecycleAdvancesVersion(t *testing.T) {
	var h header

	// retire the node the way the tree does: lock, then unlock-obsolete.
	writeLock(&h)
	writeUnlockObsolete(&h)

	retired := h.version.Load()
	require.True(t, isObsolete(retired))

	h.recycle(typeNode4)

	v := h.version.Load()
	assert.False(t, isObsolete(v), "recycled node must be readable again")
	assert.False(t, isLocked(v))
	assert.Greater(t, v, retired, "version lineage must stay monotonic across recycles")

	assert.Equal(t, typeNode4, h.kind)
	assert.True(t, h.fromPool)
	assert.Equal(t, 0, h.numChildren)
	assert.Equal(t, 0, h.length)
}

func TestHeaderCopyMetaLeavesVersionAlone(t *testing.T) {
	var src, dst header

	src.setPrefix([]byte("pre"), false)
	src.numChildren = 5
	writeLock(&src)

	dst.copyMeta(&src)

	assert.Equal(t, 5, dst.numChildren)
	assert.Equal(t, 3, dst.length)

	b, ok := dst.inlineBytes()
	require.True(t, ok)
	assert.Equal(t, []byte("pre"), b)

	assert.False(t, isLocked(dst.version.Load()),
		"the replacement node must not inherit the replaced node's lock bit")

	writeUnlock(&src)
}
