// Package vmem provides the virtual-memory primitives the arena is built on:
// reserving a contiguous range of address space without physical backing,
// committing pages inside it on demand, discarding the physical backing of a
// committed range, and releasing the whole reservation.
//
// The platform divergence (mmap/mprotect/madvise on POSIX, VirtualAlloc and
// friends on Windows) lives behind this package; one conforming
// implementation per platform is selected at compile time.
package vmem

import (
	"errors"
	"fmt"

	"github.com/lordwindy/samrena/internal/debug"
)

// ErrInvalidSize is returned when a reservation or range size is not
// positive.
var ErrInvalidSize = errors.New("vmem: invalid size")

// ErrReleased is returned when operating on a released mapping.
var ErrReleased = errors.New("vmem: mapping released")

// Mapping is one contiguous reservation of virtual address space.
//
// The byte range [0, Len()) exists in the process's address map but is
// inaccessible until committed. Committed sub-ranges are readable and
// writable.
type Mapping struct {
	buf []byte
}

// PageSize returns the OS page size.
func PageSize() int {
	return pageSize()
}

// Granularity returns the OS allocation granularity: the alignment the base
// and size of every reservation is rounded to.
func Granularity() int {
	return granularity()
}

// DiscardZeroes reports whether [Mapping.Discard] guarantees that subsequent
// reads of the discarded range observe zeros. True on Linux
// (MADV_DONTNEED); false where contents are merely undefined (Darwin
// MADV_FREE, Windows MEM_RESET).
func DiscardZeroes() bool {
	return discardZeroes
}

// Reserve reserves size bytes of address space with no physical backing.
//
// size is rounded up to the OS allocation granularity. The returned mapping
// is entirely uncommitted.
func Reserve(size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	buf, err := reserve(roundUp(size, granularity()))
	if err != nil {
		return nil, fmt.Errorf("vmem: reserve %d bytes: %w", size, err)
	}

	return &Mapping{buf: buf}, nil
}

// Bytes returns the full reserved range.
//
// Only committed sub-ranges may be read or written.
func (m *Mapping) Bytes() []byte {
	return m.buf
}

// Len returns the reserved size in bytes.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.buf)
}

// Commit grants read/write access to the range [off, off+n), backing it with
// physical pages on first touch. off and n must be page-aligned.
func (m *Mapping) Commit(off, n int) error {
	if err := m.check(off, n); err != nil {
		return err
	}

	if err := commit(m.buf[off : off+n]); err != nil {
		return fmt.Errorf("vmem: commit [%d:%d): %w", off, off+n, err)
	}
	return nil
}

// Discard hints the OS that the physical backing of the committed range
// [off, off+n) is no longer needed. The range stays committed; see
// [DiscardZeroes] for what subsequent reads observe.
func (m *Mapping) Discard(off, n int) error {
	if err := m.check(off, n); err != nil {
		return err
	}

	if err := discard(m.buf[off : off+n]); err != nil {
		return fmt.Errorf("vmem: discard [%d:%d): %w", off, off+n, err)
	}
	return nil
}

// Release unmaps the entire reservation. The mapping must not be used
// afterwards. Release on a nil mapping is a no-op.
func (m *Mapping) Release() error {
	if m == nil || m.buf == nil {
		return nil
	}

	buf := m.buf
	m.buf = nil
	if err := release(buf); err != nil {
		return fmt.Errorf("vmem: release: %w", err)
	}
	return nil
}

func (m *Mapping) check(off, n int) error {
	if m == nil || m.buf == nil {
		return ErrReleased
	}
	if n <= 0 || off < 0 || off+n > len(m.buf) {
		return ErrInvalidSize
	}

	debug.Assert(off%pageSize() == 0, "offset %d not page-aligned", off)
	debug.Assert(n%pageSize() == 0, "length %d not page-aligned", n)
	return nil
}

func roundUp(v, align int) int {
	return (v + align - 1) &^ (align - 1)
}
