// Package arena provides a virtual-memory bump allocator.
//
// An [Arena] reserves a large contiguous range of address space up front and
// commits physical pages lazily as allocations extend the high-water mark.
// Allocation is a pointer bump; there is no per-object free. Memory is
// reclaimed by [Arena.Reset], which returns the bump pointer to zero and
// hints the OS to drop the physical backing, or by [Arena.Close], which
// releases the whole reservation.
//
// Because the reservation is contiguous and never moves, a pointer handed
// out by the arena stays valid until Reset or Close, and growth never
// relocates previously allocated memory.
//
// Arenas are not safe for concurrent mutation; callers serialize access.
package arena

import (
	"fmt"
	"unsafe"

	"github.com/lordwindy/samrena/internal/debug"
	"github.com/lordwindy/samrena/pkg/vmem"
	"github.com/lordwindy/samrena/pkg/xunsafe"
	"github.com/lordwindy/samrena/pkg/xunsafe/layout"
)

// Align is the alignment floor of all allocations on the arena.
const Align = int(unsafe.Sizeof(uintptr(0)))

// Arena is a bump allocator over one contiguous virtual-memory reservation.
//
// Invariant: 0 <= allocated <= committed <= reserved, with committed a
// multiple of the commit granularity.
type Arena struct {
	_ xunsafe.NoCopy

	m    *vmem.Mapping
	base xunsafe.Addr[byte]

	allocated int
	committed int
	reserved  int

	pageSize   int
	commitSize int

	enableStats bool
	enableDebug bool
	stats       Stats
}

// New constructs an arena from cfg.
//
// The reservation is made with no physical backing, then
// cfg.InitialPages * page size bytes are committed at its start. If the OS
// cannot satisfy the reservation, construction fails; there is no silent
// downgrade to a smaller range.
func New(cfg Config) (*Arena, error) {
	cfg, err := cfg.validate()
	if err != nil {
		cfg.report(err)
		return nil, err
	}

	m, err := vmem.Reserve(cfg.MaxReserve)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}

	initial := cfg.InitialPages * cfg.PageSize
	if err := m.Commit(0, initial); err != nil {
		_ = m.Release()
		return nil, fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}

	a := &Arena{
		m:           m,
		base:        xunsafe.AddrOf(&m.Bytes()[0]),
		committed:   initial,
		reserved:    m.Len(),
		pageSize:    cfg.PageSize,
		commitSize:  cfg.CommitSize,
		enableStats: cfg.EnableStats,
		enableDebug: cfg.EnableDebug,
	}
	a.Log("new", "reserved %d, committed %d, page %d", a.reserved, a.committed, a.pageSize)
	return a, nil
}

// NewDefault constructs an arena with [DefaultConfig]: a 256 MiB
// reservation.
func NewDefault() (*Arena, error) {
	return New(DefaultConfig())
}

// NewSession constructs an arena with [SessionConfig]: a 256 GiB
// reservation.
func NewSession() (*Arena, error) {
	return New(SessionConfig())
}

// NewGlobal constructs an arena with [GlobalConfig]: a 4 TiB reservation.
func NewGlobal() (*Arena, error) {
	return New(GlobalConfig())
}

// Alloc allocates size bytes and returns a pointer to them.
//
// The memory is uninitialized and aligned to [Align]. The returned pointer
// stays valid until [Arena.Reset] or [Arena.Close]. On failure the arena is
// unchanged.
func (a *Arena) Alloc(size int) (*byte, error) {
	if a == nil || a.m == nil {
		return nil, ErrNilPointer
	}
	if size <= 0 {
		a.fail()
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	padded := layout.RoundUp(size, Align)
	if err := a.ensure(a.allocated + padded); err != nil {
		a.fail()
		return nil, err
	}

	p := a.base.ByteAdd(a.allocated).AssertValid()
	a.allocated += padded
	a.note()
	a.Log("alloc", "%v:%d, %d:%d", xunsafe.AddrOf(p), a.allocated, padded, Align)
	a.check()

	return p, nil
}

// AllocZero is [Arena.Alloc] followed by zeroing the returned range.
func (a *Arena) AllocZero(size int) (*byte, error) {
	p, err := a.Alloc(size)
	if err != nil {
		return nil, err
	}

	xunsafe.Clear(p, size)
	return p, nil
}

// AllocAligned allocates size bytes whose address is divisible by align,
// which must be a power of two. Any padding needed to reach the boundary is
// consumed from the arena in the same bump.
func (a *Arena) AllocAligned(size, align int) (*byte, error) {
	if a == nil || a.m == nil {
		return nil, ErrNilPointer
	}
	if size <= 0 {
		a.fail()
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if !layout.IsPow2(align) {
		a.fail()
		return nil, fmt.Errorf("%w: alignment %d is not a power of two", ErrInvalidParameter, align)
	}

	pad := a.base.ByteAdd(a.allocated).Padding(align)
	padded := pad + layout.RoundUp(size, Align)
	if err := a.ensure(a.allocated + padded); err != nil {
		a.fail()
		return nil, err
	}

	p := a.base.ByteAdd(a.allocated + pad).AssertValid()
	a.allocated += padded
	a.note()
	a.Log("alloc", "%v:%d, %d:%d", xunsafe.AddrOf(p), a.allocated, size, align)
	a.check()

	return p, nil
}

// Realloc grows or shrinks an allocation of oldSize bytes at p to newSize
// bytes.
//
// When p is the most recent allocation, the bump pointer is adjusted in
// place and p is returned. Otherwise a growing reallocation copies the old
// contents into a fresh region; the old region stays allocated in the arena
// (bump allocators do not free individual objects). A nil p behaves like
// [Arena.Alloc].
func (a *Arena) Realloc(p *byte, oldSize, newSize int) (*byte, error) {
	if a == nil || a.m == nil {
		return nil, ErrNilPointer
	}
	if newSize <= 0 {
		a.fail()
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, newSize)
	}
	if p == nil {
		return a.Alloc(newSize)
	}

	oldPadded := layout.RoundUp(oldSize, Align)
	newPadded := layout.RoundUp(newSize, Align)

	// Fast path: p is the tail allocation, so the bump pointer can move
	// directly. Works for both growth and shrinkage.
	tail := a.base.ByteAdd(a.allocated - oldPadded)
	if xunsafe.AddrOf(p) == tail {
		if err := a.ensure(a.allocated - oldPadded + newPadded); err != nil {
			a.fail()
			return nil, err
		}
		a.allocated += newPadded - oldPadded
		a.note()
		a.Log("fast realloc", "%v, %d->%d:%d", xunsafe.AddrOf(p), oldSize, newSize, Align)
		a.check()
		return p, nil
	}

	if newPadded <= oldPadded {
		a.Log("realloc", "%v, %d->%d:%d", xunsafe.AddrOf(p), oldSize, newSize, Align)
		return p, nil
	}

	q, err := a.Alloc(newSize)
	if err != nil {
		return nil, err
	}
	xunsafe.Copy(q, p, oldSize)
	a.Log("realloc", "%v->%v, %d->%d:%d", xunsafe.AddrOf(p), xunsafe.AddrOf(q), oldSize, newSize, Align)
	return q, nil
}

// Reserve ensures at least minBytes are committed without advancing the
// high-water mark. A no-op when the committed range already satisfies it.
func (a *Arena) Reserve(minBytes int) error {
	if a == nil || a.m == nil {
		return ErrNilPointer
	}
	if minBytes < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, minBytes)
	}
	if minBytes > a.reserved {
		return fmt.Errorf("%w: reserve %d exceeds the %d byte reservation", ErrOutOfMemory, minBytes, a.reserved)
	}

	return a.ensure(minBytes)
}

// ReserveWithGrowth commits room for an immediate need plus expected growth:
// max(2*immediate, expectedTotal/4), capped at the reservation.
func (a *Arena) ReserveWithGrowth(immediate, expectedTotal int) error {
	if a == nil || a.m == nil {
		return ErrNilPointer
	}
	if immediate < 0 || expectedTotal < 0 {
		return fmt.Errorf("%w: %d/%d", ErrInvalidSize, immediate, expectedTotal)
	}

	want := max(2*immediate, expectedTotal/4)
	want = min(want, a.reserved)
	return a.ensure(want)
}

// Reset returns the bump pointer to zero and hints the OS to discard the
// physical backing of the committed range. The reservation stays mapped and
// the next allocation reuses the same addresses. Reports whether the reset
// took effect.
func (a *Arena) Reset() bool {
	if a == nil || a.m == nil {
		return false
	}

	if a.committed > 0 {
		if err := a.m.Discard(0, a.committed); err != nil {
			a.Log("reset", "discard failed: %v", err)
			return false
		}
	}

	a.allocated = 0
	a.Log("reset", "committed %d retained", a.committed)
	a.check()
	return true
}

// Close releases the entire reservation. Close on a nil or already-closed
// arena is a no-op.
func (a *Arena) Close() error {
	if a == nil || a.m == nil {
		return nil
	}

	a.Log("close", "allocated %d, committed %d", a.allocated, a.committed)
	m := a.m
	a.m = nil
	a.allocated, a.committed, a.reserved = 0, 0, 0
	return m.Release()
}

// ensure extends the committed range to cover at least n bytes, in
// commit-granularity steps clamped to the reservation.
func (a *Arena) ensure(n int) error {
	if n > a.reserved {
		return fmt.Errorf("%w: need %d of %d reserved", ErrOutOfMemory, n, a.reserved)
	}
	if n <= a.committed {
		return nil
	}

	grow := layout.RoundUp(n-a.committed, a.commitSize)
	grow = min(grow, a.reserved-a.committed)

	if err := a.m.Commit(a.committed, grow); err != nil {
		return fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}

	a.committed += grow
	a.Log("commit", "%d -> %d of %d", a.committed-grow, a.committed, a.reserved)
	return nil
}

func (a *Arena) note() {
	if a.enableStats {
		a.stats.TotalAllocs++
		if a.allocated > a.stats.PeakAllocated {
			a.stats.PeakAllocated = a.allocated
		}
	}
}

func (a *Arena) fail() {
	if a != nil && a.enableStats {
		a.stats.FailedAllocs++
	}
}

// check verifies the arena invariants when extra checking is enabled.
func (a *Arena) check() {
	if !a.enableDebug && !debug.Enabled {
		return
	}
	if a.allocated < 0 || a.allocated > a.committed || a.committed > a.reserved {
		panic(fmt.Sprintf("samrena: invariant violated: allocated %d, committed %d, reserved %d",
			a.allocated, a.committed, a.reserved))
	}
}

// Log emits a debug trace for one arena operation.
func (a *Arena) Log(op, format string, args ...any) {
	debug.Log([]any{"%p %d:%d:%d", a, a.allocated, a.committed, a.reserved}, op, format, args...)
}
