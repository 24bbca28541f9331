// Package art implements a concurrent Adaptive Radix Tree (ART): an
// in-memory ordered associative index keyed by variable-length byte strings.
//
// # Overview
//
// An ART is a trie whose internal fan-out nodes adapt among four concrete
// layouts (Node4, Node16, Node48, Node256) to keep both memory and
// pointer-chasing cost low on real key distributions. This implementation
// supports concurrent readers and writers through optimistic-lock-coupling:
// every node carries an atomic version word, readers validate their snapshot
// rather than blocking, and writers upgrade to an exclusive lock only for the
// duration of a structural mutation.
//
// # Node Types
//
//   - Node4: up to 4 children, sorted parallel arrays.
//   - Node16: up to 16 children, sorted parallel arrays.
//   - Node48: up to 48 children, a 256-entry byte→slot side table.
//   - Node256: up to 256 children, direct byte-indexed array.
//   - Leaf: the full key and the caller's value.
//
// # Concurrency
//
// Tree is safe for concurrent use by multiple goroutines. No operation
// takes a blocking lock: Lookup, Upsert and Remove spin only while a node
// they need is write-locked by another goroutine, and restart from the root
// on any detected version mismatch. See the package-level OLC helpers in olc.go for
// the exact protocol.
//
// # Non-goals
//
// Persistence, crash recovery, range scans, iteration beyond
// lexicographic-on-byte order, multi-key transactions, value lifetime
// management (values are opaque to the index), and Unicode awareness are all
// out of scope — keys are plain byte strings.
package art
