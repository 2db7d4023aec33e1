package arena

import "errors"

// The error kinds every fallible operation reports. Callers match them with
// [errors.Is]; returned errors may wrap these with call-site context.
var (
	// ErrNilPointer is returned when a required pointer argument is nil,
	// including operations on a nil or closed arena.
	ErrNilPointer = errors.New("samrena: nil pointer")

	// ErrInvalidSize is returned when an allocation size is zero or negative
	// where a positive size is required.
	ErrInvalidSize = errors.New("samrena: invalid size")

	// ErrOutOfMemory is returned when the reservation is exhausted or the OS
	// refuses to commit more pages. The arena is left unchanged.
	ErrOutOfMemory = errors.New("samrena: out of memory")

	// ErrInvalidParameter is returned for misconfigured construction, bad
	// alignment, or bad capacity arguments.
	ErrInvalidParameter = errors.New("samrena: invalid parameter")

	// ErrUnsupported is returned when an optional operation is requested on
	// an adapter that lacks it.
	ErrUnsupported = errors.New("samrena: unsupported operation")
)
