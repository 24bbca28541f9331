// Package xunsafe provides a small set of pointer-arithmetic helpers used by
// the node layouts to compute slot indices without re-scanning their arrays.
package xunsafe

import "unsafe"

// IndexOf returns the index of slot within the array whose first element is
// base, assuming slot points somewhere inside that array.
//
// This is how the sorted node layouts recover a slot's position from the
// pointer their child search returned, without a second scan.
func IndexOf[E any](slot *E, base *E) int {
	return int(uintptr(unsafe.Pointer(slot))-uintptr(unsafe.Pointer(base))) / int(unsafe.Sizeof(*base))
}
