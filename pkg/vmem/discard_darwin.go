package vmem

import "golang.org/x/sys/unix"

// MADV_FREE lets the kernel reclaim the pages lazily; until it does, reads
// may still observe the old contents.
const discardZeroes = false

func discard(b []byte) error {
	return unix.Madvise(b, unix.MADV_FREE)
}
