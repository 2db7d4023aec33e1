package vmem

import "golang.org/x/sys/unix"

// MADV_DONTNEED drops the physical pages immediately; the next read in the
// range faults in a fresh zero page.
const discardZeroes = true

func discard(b []byte) error {
	return unix.Madvise(b, unix.MADV_DONTNEED)
}
