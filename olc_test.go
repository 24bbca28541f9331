package art

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLockReadUnlock(t *testing.T) {
	var h header

	v, err := readLock(&h)
	require.NoError(t, err)

	assert.NoError(t, readUnlock(&h, v), "unchanged version must validate")
}

func TestReadUnlockDetectsInterleavedWriter(t *testing.T) {
	var h header

	v, err := readLock(&h)
	require.NoError(t, err)

	writeLock(&h)
	writeUnlock(&h)

	assert.ErrorIs(t, readUnlock(&h, v), errRestart)
}

func TestReadLockRestartsOnObsolete(t *testing.T) {
	var h header

	writeLock(&h)
	writeUnlockObsolete(&h)

	_, err := readLock(&h)
	assert.ErrorIs(t, err, errRestart)
}

func TestUpgrade(t *testing.T) {
	var h header

	v, err := readLock(&h)
	require.NoError(t, err)

	require.NoError(t, upgrade(&h, v))
	assert.True(t, isLocked(h.version.Load()))

	writeUnlock(&h)

	assert.False(t, isLocked(h.version.Load()))
	assert.Greater(t, h.version.Load(), v, "write-unlock must advance the change counter")
}

func TestUpgradeFailsOnStaleVersion(t *testing.T) {
	var h header

	v, err := readLock(&h)
	require.NoError(t, err)

	writeLock(&h)
	writeUnlock(&h)

	assert.ErrorIs(t, upgrade(&h, v), errRestart)
	assert.False(t, isLocked(h.version.Load()), "a failed upgrade must leave no lock behind")
}

func TestUpgradeAndReleaseRunsReleaseOnlyOnFailure(t *testing.T) {
	var h, held header

	v, err := readLock(&h)
	require.NoError(t, err)

	released := false

	require.NoError(t, upgradeAndRelease(&h, v, func() { released = true }))
	assert.False(t, released)
	writeUnlock(&h)

	v, err = readLock(&h)
	require.NoError(t, err)

	writeLock(&h)
	writeUnlock(&h)

	writeLock(&held)
	err = upgradeAndRelease(&h, v, func() { writeUnlock(&held); released = true })

	assert.ErrorIs(t, err, errRestart)
	assert.True(t, released)
	assert.False(t, isLocked(held.version.Load()))
}

func TestWriteUnlockObsolete(t *testing.T) {
	var h header

	before := h.version.Load()

	writeLock(&h)
	writeUnlockObsolete(&h)

	v := h.version.Load()
	assert.True(t, isObsolete(v))
	assert.False(t, isLocked(v))
	assert.Greater(t, v, before)
}

func TestWriteLockExcludesConcurrentWriters(t *testing.T) {
	var (
		h       header
		wg      sync.WaitGroup
		counter int
	)

	const (
		goroutines = 8
		iterations = 1000
	)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := 0; i < iterations; i++ {
				writeLock(&h)
				counter++
				writeUnlock(&h)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, goroutines*iterations, counter)
	assert.False(t, isLocked(h.version.Load()))
}
