package arena

import (
	"fmt"

	"github.com/lordwindy/samrena/pkg/xunsafe"
	"github.com/lordwindy/samrena/pkg/xunsafe/layout"
)

// Alloc allocates an uninitialized value of type T on an arena.
func Alloc[T any](a *Arena) (*T, error) {
	l := layout.Of[T]()

	var (
		p   *byte
		err error
	)
	if l.Align > Align {
		p, err = a.AllocAligned(l.Size, l.Align)
	} else {
		p, err = a.Alloc(l.Size)
	}
	if err != nil {
		return nil, err
	}

	return xunsafe.Cast[T](p), nil
}

// NewIn allocates a new value of type T on an arena.
func NewIn[T any](a *Arena, value T) (*T, error) {
	p, err := Alloc[T](a)
	if err != nil {
		return nil, err
	}

	*p = value
	return p, nil
}

// Make allocates a slice of n values of type T on an arena.
//
// The returned slice aliases arena memory: it must not be used after the
// arena is reset or closed, and it cannot be appended past its capacity.
func Make[T any](a *Arena, n int) ([]T, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}

	l := layout.Of[T]()

	var (
		p   *byte
		err error
	)
	if l.Align > Align {
		p, err = a.AllocAligned(l.Size*n, l.Align)
	} else {
		p, err = a.Alloc(l.Size * n)
	}
	if err != nil {
		return nil, err
	}

	return xunsafe.Slice(xunsafe.Cast[T](p), n), nil
}

// MakeAligned is [Make] with an explicit alignment for the start of the
// slice, for callers that need SIMD-friendly boundaries.
func MakeAligned[T any](a *Arena, n, align int) ([]T, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}

	p, err := a.AllocAligned(layout.Size[T]()*n, align)
	if err != nil {
		return nil, err
	}

	return xunsafe.Slice(xunsafe.Cast[T](p), n), nil
}
