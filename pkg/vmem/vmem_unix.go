//go:build linux || darwin

package vmem

import (
	"os"

	"golang.org/x/sys/unix"
)

// reserve maps size bytes of anonymous private memory with no access rights.
// The kernel hands out address space only; no physical pages are backing the
// range until a sub-range is committed.
func reserve(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
}

// commit grants read/write access to a reserved sub-range. Physical pages
// are faulted in lazily on first touch and start out zeroed.
func commit(b []byte) error {
	return unix.Mprotect(b, unix.PROT_READ|unix.PROT_WRITE)
}

func release(b []byte) error {
	return unix.Munmap(b)
}

func pageSize() int {
	return os.Getpagesize()
}

// granularity is the alignment mmap rounds reservations to, which on POSIX
// is the page size.
func granularity() int {
	return os.Getpagesize()
}
