package arena

// Info is a snapshot of an arena's memory accounting.
type Info struct {
	// Allocated is the current high-water mark in bytes.
	Allocated int

	// Committed is the number of bytes backed by physical pages.
	Committed int

	// Reserved is the size of the virtual reservation in bytes.
	Reserved int

	// PageSize is the commit page size.
	PageSize int

	// Contiguous reports whether the arena is one contiguous range. Always
	// true in this design.
	Contiguous bool
}

// Capabilities describes what this arena supports.
type Capabilities struct {
	// Contiguous memory: every allocation lives in one address range.
	Contiguous bool

	// ZeroCopyGrowth: extending the committed range never moves existing
	// allocations.
	ZeroCopyGrowth bool

	// Reset and Reserve report support for the respective operations.
	Reset   bool
	Reserve bool

	// Alignment is the largest alignment [Arena.AllocAligned] guarantees
	// without explicit padding overhead accounting; plain [Arena.Alloc]
	// guarantees [Align].
	Alignment int

	// MaxAllocationSize is the largest single allocation that can still
	// succeed: reserved minus allocated.
	MaxAllocationSize int
}

// Stats are the counters maintained when Config.EnableStats is set.
type Stats struct {
	// TotalAllocs counts successful allocations.
	TotalAllocs uint64

	// FailedAllocs counts allocations that returned an error.
	FailedAllocs uint64

	// PeakAllocated is the largest high-water mark observed.
	PeakAllocated int
}

// Allocated returns the current high-water mark in bytes. Zero on a nil
// arena.
func (a *Arena) Allocated() int {
	if a == nil {
		return 0
	}
	return a.allocated
}

// Committed returns the number of committed bytes. Zero on a nil arena.
func (a *Arena) Committed() int {
	if a == nil {
		return 0
	}
	return a.committed
}

// Reserved returns the reservation size in bytes. Zero on a nil arena.
func (a *Arena) Reserved() int {
	if a == nil {
		return 0
	}
	return a.reserved
}

// PageSize returns the commit page size.
func (a *Arena) PageSize() int {
	if a == nil {
		return 0
	}
	return a.pageSize
}

// Info returns a snapshot of the arena's accounting.
func (a *Arena) Info() Info {
	if a == nil {
		return Info{}
	}
	return Info{
		Allocated:  a.allocated,
		Committed:  a.committed,
		Reserved:   a.reserved,
		PageSize:   a.pageSize,
		Contiguous: true,
	}
}

// Capabilities returns the capability set of this arena.
func (a *Arena) Capabilities() Capabilities {
	caps := Capabilities{
		Contiguous:     true,
		ZeroCopyGrowth: true,
		Reset:          true,
		Reserve:        true,
		Alignment:      16,
	}
	if a != nil {
		caps.MaxAllocationSize = a.reserved - a.allocated
	}
	return caps
}

// Stats returns the allocation counters and whether they are being
// maintained.
func (a *Arena) Stats() (Stats, bool) {
	if a == nil || !a.enableStats {
		return Stats{}, false
	}
	return a.stats, true
}
