package vmem

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// VirtualAlloc rounds reservation bases to 64 KiB regardless of the page
// size.
const allocationGranularity = 64 << 10

// MEM_RESET may discard page contents but leaves the pages committed;
// whatever survives is unspecified.
const discardZeroes = false

func reserve(size int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_RESERVE, windows.PAGE_NOACCESS)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

func commit(b []byte) error {
	_, err := windows.VirtualAlloc(base(b), uintptr(len(b)), windows.MEM_COMMIT, windows.PAGE_READWRITE)
	return err
}

func discard(b []byte) error {
	_, err := windows.VirtualAlloc(base(b), uintptr(len(b)), windows.MEM_RESET, windows.PAGE_READWRITE)
	return err
}

func release(b []byte) error {
	return windows.VirtualFree(base(b), 0, windows.MEM_RELEASE)
}

func base(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

func pageSize() int {
	return os.Getpagesize()
}

func granularity() int {
	return allocationGranularity
}
