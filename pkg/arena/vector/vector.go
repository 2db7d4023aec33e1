// Package vector provides a growable sequence of fixed-size elements whose
// storage is drawn from an arena.
//
// A [Vector] either borrows an arena supplied by the caller ([NewIn]) or
// owns a private one created for it ([New]); ownership decides what
// [Vector.Close] releases. Storage grows in place when it is the arena's most
// recent allocation, and otherwise by re-bumping the arena and copying;
// superseded regions stay allocated in the arena until it is reset, which is
// the documented cost of bump allocation.
//
// Indexed accessors ([Vector.Get], [Vector.Set]) are the default API.
// Pointer-returning accessors ([Vector.At], [Vector.Push], [Vector.Pop])
// stay valid only until the next operation that may grow or replace the
// vector's storage.
package vector

import (
	"errors"
	"fmt"
	"math"

	"github.com/lordwindy/samrena/internal/debug"
	"github.com/lordwindy/samrena/pkg/arena"
	"github.com/lordwindy/samrena/pkg/xunsafe"
	"github.com/lordwindy/samrena/pkg/xunsafe/layout"
)

const (
	// DefaultGrowthFactor is the capacity multiplier applied when a full
	// vector grows.
	DefaultGrowthFactor = 1.5

	// DefaultMinGrowth is the minimum number of element slots added per
	// growth step.
	DefaultMinGrowth = 8
)

// ErrOutOfBounds is returned when an index is outside [0, Len).
var ErrOutOfBounds = errors.New("samrena: out of bounds")

// Vector is an ordered, dense sequence of values of type T backed by arena
// storage.
type Vector[T any] struct {
	arena *arena.Arena
	owns  bool

	data     *T
	len, cap int

	// GrowthFactor and MinGrowth tune the growth policy. Values of
	// GrowthFactor not greater than 1 and negative MinGrowth fall back to
	// the defaults.
	GrowthFactor float64
	MinGrowth    int
}

// New constructs a vector that owns a private default arena; Close releases
// it. An initialCap of zero is upgraded to 1.
func New[T any](initialCap int) (*Vector[T], error) {
	a, err := arena.NewDefault()
	if err != nil {
		return nil, err
	}

	v, err := NewIn[T](a, initialCap)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	v.owns = true
	return v, nil
}

// NewIn constructs a vector that borrows the given arena; the caller remains
// responsible for the arena's lifetime. An initialCap of zero is upgraded
// to 1. The initial data region is zeroed.
func NewIn[T any](a *arena.Arena, initialCap int) (*Vector[T], error) {
	if a == nil {
		return nil, arena.ErrNilPointer
	}
	if initialCap < 0 {
		return nil, fmt.Errorf("%w: capacity %d", arena.ErrInvalidParameter, initialCap)
	}
	if initialCap == 0 {
		initialCap = 1
	}

	data, err := allocData[T](a, initialCap)
	if err != nil {
		return nil, err
	}
	xunsafe.Clear(data, initialCap)

	return &Vector[T]{
		arena:        a,
		data:         data,
		cap:          initialCap,
		GrowthFactor: DefaultGrowthFactor,
		MinGrowth:    DefaultMinGrowth,
	}, nil
}

// Push appends elem and returns a pointer to the stored copy.
//
// The pointer stays valid until the next operation that may grow or replace
// the vector's storage. On arena exhaustion the vector is unchanged.
func (v *Vector[T]) Push(elem T) (*T, error) {
	if v == nil {
		return nil, arena.ErrNilPointer
	}

	if v.len == v.cap {
		if err := v.grow(1); err != nil {
			return nil, err
		}
	}

	p := xunsafe.Add(v.data, v.len)
	*p = elem
	v.len++
	v.log("push", "len %d, cap %d", v.len, v.cap)
	return p, nil
}

// Pop removes the last element and returns a pointer to the slot it occupied,
// or nil when the vector is empty.
//
// The slot's contents stay intact until a later mutation overwrites or
// relocates them.
func (v *Vector[T]) Pop() (*T, bool) {
	if v == nil || v.len == 0 {
		return nil, false
	}

	v.len--
	return xunsafe.Add(v.data, v.len), true
}

// Get copies element i out of the vector.
func (v *Vector[T]) Get(i int) (T, error) {
	var z T
	if v == nil {
		return z, arena.ErrNilPointer
	}
	if i < 0 || i >= v.len {
		return z, fmt.Errorf("%w: index %d of %d", ErrOutOfBounds, i, v.len)
	}

	return xunsafe.Load(v.data, i), nil
}

// Set overwrites element i.
func (v *Vector[T]) Set(i int, elem T) error {
	if v == nil {
		return arena.ErrNilPointer
	}
	if i < 0 || i >= v.len {
		return fmt.Errorf("%w: index %d of %d", ErrOutOfBounds, i, v.len)
	}

	xunsafe.Store(v.data, i, elem)
	return nil
}

// At returns a pointer to element i, or nil when i is out of bounds or v is
// nil.
func (v *Vector[T]) At(i int) *T {
	if v == nil || i < 0 || i >= v.len {
		return nil
	}
	return xunsafe.Add(v.data, i)
}

// AtUnchecked returns a pointer to element i without a bounds check.
//
// It is undefined when i is outside [0, Len). It exists so tight inner loops
// can hoist the bounds check out.
func (v *Vector[T]) AtUnchecked(i int) *T {
	debug.Assert(i >= 0 && i < v.len, "index %d of %d", i, v.len)
	return xunsafe.Add(v.data, i)
}

// Resize changes the capacity.
//
// Growing goes through the arena's realloc: the storage is extended in place
// when it is the arena's most recent allocation, and otherwise copied into a
// fresh region. Shrinking below the length truncates; zero drops the data
// region entirely. On arena
// exhaustion the vector is unchanged.
func (v *Vector[T]) Resize(newCap int) error {
	if v == nil {
		return arena.ErrNilPointer
	}
	if newCap < 0 {
		return fmt.Errorf("%w: capacity %d", arena.ErrInvalidParameter, newCap)
	}

	switch {
	case newCap == v.cap:
		return nil

	case newCap == 0:
		v.data = nil
		v.len, v.cap = 0, 0

	case newCap > v.cap:
		if err := v.relocate(newCap); err != nil {
			return err
		}

	default:
		v.cap = newCap
		if v.len > newCap {
			v.len = newCap
		}
	}

	v.log("resize", "len %d, cap %d", v.len, v.cap)
	return nil
}

// Clear sets the length to zero; capacity and storage are untouched.
func (v *Vector[T]) Clear() {
	if v == nil {
		return
	}
	v.len = 0
}

// Truncate shortens the vector to n elements. Truncating beyond the current
// length fails.
func (v *Vector[T]) Truncate(n int) error {
	if v == nil {
		return arena.ErrNilPointer
	}
	if n < 0 || n > v.len {
		return fmt.Errorf("%w: truncate to %d of %d", ErrOutOfBounds, n, v.len)
	}

	v.len = n
	return nil
}

// Reset is [Vector.Resize] followed by [Vector.Clear].
func (v *Vector[T]) Reset(newCap int) error {
	if err := v.Resize(newCap); err != nil {
		return err
	}

	v.Clear()
	return nil
}

// Len returns the element count. Zero on a nil vector.
func (v *Vector[T]) Len() int {
	if v == nil {
		return 0
	}
	return v.len
}

// Cap returns the slot count. Zero on a nil vector.
func (v *Vector[T]) Cap() int {
	if v == nil {
		return 0
	}
	return v.cap
}

// IsEmpty reports whether the vector holds no elements. True on a nil
// vector.
func (v *Vector[T]) IsEmpty() bool {
	return v.Len() == 0
}

// IsFull reports whether the next push must grow. False on a nil vector.
func (v *Vector[T]) IsFull() bool {
	if v == nil {
		return false
	}
	return v.len == v.cap
}

// Available returns the number of free slots. Zero on a nil vector.
func (v *Vector[T]) Available() int {
	if v == nil {
		return 0
	}
	return v.cap - v.len
}

// Arena returns the backing arena.
func (v *Vector[T]) Arena() *arena.Arena {
	if v == nil {
		return nil
	}
	return v.arena
}

// Close releases the private arena when the vector owns one; a borrowed
// arena is left to its caller. Safe on nil.
func (v *Vector[T]) Close() error {
	if v == nil || !v.owns {
		return nil
	}

	a := v.arena
	v.arena, v.data = nil, nil
	v.len, v.cap, v.owns = 0, 0, false
	return a.Close()
}

// grow extends the capacity so at least n more elements fit, following the
// growth policy.
func (v *Vector[T]) grow(n int) error {
	factor := v.GrowthFactor
	if factor <= 1 {
		factor = DefaultGrowthFactor
	}
	minGrowth := v.MinGrowth
	if minGrowth < 0 {
		minGrowth = DefaultMinGrowth
	}

	target := int(math.Ceil(float64(v.cap) * factor))
	if target-v.cap < minGrowth {
		target = v.cap + minGrowth
	}
	if v.cap == 0 {
		target = max(1, minGrowth)
	}
	target = max(target, v.len+n)

	return v.relocate(target)
}

// relocate moves the occupied prefix into a region of newCap slots.
//
// Growth goes through the arena's realloc so that a vector whose data is the
// arena's tail allocation extends in place without copying.
func (v *Vector[T]) relocate(newCap int) error {
	size := layout.Size[T]()

	if v.data == nil {
		data, err := allocData[T](v.arena, newCap)
		if err != nil {
			return err
		}
		v.data = data
		v.cap = newCap
		return nil
	}

	p, err := v.arena.Realloc(xunsafe.Cast[byte](v.data), v.cap*size, newCap*size)
	if err != nil {
		return err
	}

	v.data = xunsafe.Cast[T](p)
	v.cap = newCap
	return nil
}

func allocData[T any](a *arena.Arena, n int) (*T, error) {
	l := layout.Of[T]()

	var (
		p   *byte
		err error
	)
	if l.Align > arena.Align {
		p, err = a.AllocAligned(l.Size*n, l.Align)
	} else {
		p, err = a.Alloc(l.Size * n)
	}
	if err != nil {
		return nil, err
	}

	return xunsafe.Cast[T](p), nil
}

func (v *Vector[T]) log(op, format string, args ...any) {
	debug.Log([]any{"%p", v}, op, format, args...)
}
