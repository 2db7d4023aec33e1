package xunsafe

import (
	"fmt"
	"unsafe"

	"github.com/lordwindy/samrena/pkg/xunsafe/layout"
)

// intptr is an integer type with the same layout as a uintptr but signed.
//
// On every platform we support, int and uintptr have the same layout.
type intptr int

// Addr is a typed raw address.
//
// Unlike a true pointer, loading and storing values of this type issues no
// write barriers, and the garbage collector will not trace through it. It is
// only valid to convert an Addr back into a pointer while the memory it names
// is known to be live.
type Addr[T any] intptr

// AddrOf gets the address of a pointer.
func AddrOf[P ~*E, E any](p P) Addr[E] {
	return Addr[E](uintptr(unsafe.Pointer(p)))
}

// AssertValid asserts that this address is a valid pointer.
//
//go:nosplit
func (a Addr[T]) AssertValid() *T {
	return (*T)(unsafe.Pointer(uintptr(a)))
}

// Add adds the given offset to this address, scaled by the size of T.
func (a Addr[T]) Add(n int) Addr[T] {
	return a + Addr[T](n*layout.Size[T]())
}

// ByteAdd adds the given unscaled offset to this address.
func (a Addr[T]) ByteAdd(n int) Addr[T] {
	return a + Addr[T](n)
}

// Sub computes the difference between two addresses, scaled by the size of T.
func (a Addr[T]) Sub(b Addr[T]) int {
	return int(a-b) / layout.Size[T]()
}

// Padding returns the number of bytes between this address and the next
// address aligned to the given alignment, which must be a power of two.
func (a Addr[T]) Padding(align int) int {
	return layout.Padding(int(a), align)
}

// RoundUpTo rounds this address upwards to align, which must be a power of
// two.
func (a Addr[T]) RoundUpTo(align int) Addr[T] {
	return Addr[T](layout.RoundUp(uintptr(a), uintptr(align)))
}

// Format implements [fmt.Formatter].
func (a Addr[T]) Format(state fmt.State, verb rune) {
	if verb == 'v' {
		fmt.Fprintf(state, "%#x", uintptr(a))
		return
	}

	fmt.Fprintf(state, fmt.FormatString(state, verb), uintptr(a))
}
