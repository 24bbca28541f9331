package art

import "runtime"

// errRestart signals that an optimistic read observed a torn or obsolete
// node and the whole operation must restart from the root. It is a
// sentinel error, never returned across the public API.
type restartError struct{}

func (restartError) Error() string { return "art: optimistic read invalidated, restart" }

var errRestart error = restartError{}

// readLock spins until h's version word is unlocked, then returns the
// observed version for later validation. An obsolete node also yields a
// restart, since no reader should ever traverse into one.
func readLock(h *header) (uint64, error) {
	for {
		v := h.version.Load()

		if v&versionLockedBit != 0 {
			runtime.Gosched()
			continue
		}

		if v&versionObsoleteBit != 0 {
			return 0, errRestart
		}

		return v, nil
	}
}

// readUnlock validates that h's version is unchanged since v was observed
// by readLock. A mismatch means a writer interleaved with the read, and the
// caller must restart.
func readUnlock(h *header, v uint64) error {
	if h.version.Load() != v {
		return errRestart
	}

	return nil
}

// upgrade attempts to convert a read lock (validated against v) directly
// into a write lock via CAS, without ever letting another writer intervene.
// On failure the caller must restart; no lock is held after a failed
// upgrade.
func upgrade(h *header, v uint64) error {
	if !h.version.CompareAndSwap(v, v|versionLockedBit) {
		return errRestart
	}

	return nil
}

// upgradeAndRelease is upgrade for a node whose PARENT lock must be dropped
// before restarting on failure, since lock coupling never leaves a held
// lock behind when an operation gives up partway through a chain.
func upgradeAndRelease(h *header, v uint64, release func()) error {
	if err := upgrade(h, v); err != nil {
		release()

		return err
	}

	return nil
}

// writeLock spins to acquire h's write lock unconditionally, used when a
// node is reached for the first time without a prior optimistic read (e.g.
// the sentinel meta-root at the start of every mutating operation).
func writeLock(h *header) {
	for {
		v := h.version.Load()
		if v&versionLockMask != 0 {
			runtime.Gosched()
			continue
		}

		if h.version.CompareAndSwap(v, v|versionLockedBit) {
			return
		}
	}
}

// writeUnlock releases h's write lock and bumps the change counter by 2,
// signalling to any concurrent optimistic reader that the node changed.
func writeUnlock(h *header) {
	h.version.Add(2)
}

// writeUnlockObsolete releases h's write lock, bumps the change counter,
// and marks h permanently obsolete: used when h is being removed from the
// tree (merged away, or recycled), so any reader still holding a ref to it
// restarts instead of trusting stale content.
func writeUnlockObsolete(h *header) {
	h.version.Add(3)
}

// isObsolete reports whether h has been marked obsolete (low bit of the raw
// version word).
func isObsolete(v uint64) bool { return v&versionObsoleteBit != 0 }

// isLocked reports whether the raw version word v indicates a held write
// lock.
func isLocked(v uint64) bool { return v&versionLockedBit != 0 }
