package memutils

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

var (
	// ErrInvalidArgument is returned when a required handle is absent, a size or length is zero or negative
	// where a positive value is required, or a handle has already been released or destroyed. It is always
	// detected before any state is changed.
	ErrInvalidArgument error = errors.New("invalid argument")

	// ErrOutOfMemory is returned when the underlying allocator, or the configured heap size limit, cannot
	// satisfy a requested acquisition or growth. Existing resources are left intact.
	ErrOutOfMemory error = errors.New("out of memory")

	// ErrNotFound is returned when a search found no matching element. It is a normal negative result,
	// not a fault.
	ErrNotFound error = errors.New("not found")

	// ErrConcurrentAccess is returned when a resource that requires a single logical owner is entered while
	// another call is already operating on it. Errors wrapping it also match ErrInvalidArgument.
	ErrConcurrentAccess error = errors.Wrap(ErrInvalidArgument, "resource is already in use")
)
