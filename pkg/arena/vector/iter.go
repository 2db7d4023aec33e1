package vector

import (
	"iter"

	"github.com/lordwindy/samrena/pkg/arena"
	"github.com/lordwindy/samrena/pkg/xunsafe"
)

// Iterator is a stateful cursor over a vector.
//
// The cursor observes the vector live: growing the vector mid-iteration is
// safe (the cursor re-reads the data pointer on every step), but elements
// appended behind the cursor are visited too.
type Iterator[T any] struct {
	v     *Vector[T]
	idx   int
	valid bool
}

// Begin returns a cursor positioned at the first element.
func (v *Vector[T]) Begin() Iterator[T] {
	return Iterator[T]{v: v, valid: v.Len() > 0}
}

// HasNext reports whether the cursor is still within bounds.
func (it *Iterator[T]) HasNext() bool {
	return it.valid && it.idx < it.v.Len()
}

// Next returns a pointer to the current element and advances the cursor, or
// nil when the cursor is exhausted.
func (it *Iterator[T]) Next() *T {
	if !it.HasNext() {
		return nil
	}

	p := xunsafe.Add(it.v.data, it.idx)
	it.idx++
	return p
}

// Reset returns the cursor to the first element and revalidates it.
func (it *Iterator[T]) Reset() {
	it.idx = 0
	it.valid = it.v.Len() > 0
}

// All returns an index/value iterator over the vector, front to back.
func (v *Vector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < v.Len(); i++ {
			if !yield(i, xunsafe.Load(v.data, i)) {
				return
			}
		}
	}
}

// Values returns a value iterator over the vector, front to back.
func (v *Vector[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < v.Len(); i++ {
			if !yield(xunsafe.Load(v.data, i)) {
				return
			}
		}
	}
}

// ForEach invokes fn with a pointer to each element in order. A nil vector
// or nil fn is a no-op.
func (v *Vector[T]) ForEach(fn func(*T)) {
	if v == nil || fn == nil {
		return
	}

	for i := 0; i < v.len; i++ {
		fn(xunsafe.Add(v.data, i))
	}
}

// Filter produces a new vector on target containing, in original order, each
// element for which pred returns true. The source is not mutated.
func (v *Vector[T]) Filter(pred func(T) bool, target *arena.Arena) (*Vector[T], error) {
	if v == nil || pred == nil || target == nil {
		return nil, arena.ErrNilPointer
	}

	out, err := NewIn[T](target, v.len)
	if err != nil {
		return nil, err
	}

	for i := 0; i < v.len; i++ {
		elem := xunsafe.Load(v.data, i)
		if !pred(elem) {
			continue
		}
		if _, err := out.Push(elem); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Map produces a new vector on target whose i-th element is fn applied to
// the i-th element of src. The source is not mutated.
func Map[T, U any](src *Vector[T], fn func(T) U, target *arena.Arena) (*Vector[U], error) {
	if src == nil || fn == nil || target == nil {
		return nil, arena.ErrNilPointer
	}

	out, err := NewIn[U](target, src.len)
	if err != nil {
		return nil, err
	}

	for i := 0; i < src.len; i++ {
		if _, err := out.Push(fn(xunsafe.Load(src.data, i))); err != nil {
			return nil, err
		}
	}

	return out, nil
}
