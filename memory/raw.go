package memory

import "github.com/cockroachdb/errors"

//go:generate mockgen -destination=mocks/mocks.go -package=mock_memory . RawAllocator

// RawAllocator is the underlying source of byte storage for an Allocator. Implementations may
// return recycled storage; the Allocator zero-fills everything it hands out.
type RawAllocator interface {
	// Allocate returns a region of at least size bytes, or an error if the request cannot be
	// satisfied. Any error is reported to Allocator callers as memutils.ErrOutOfMemory.
	Allocate(size int) ([]byte, error)
	// Free returns a region previously produced by Allocate. It is called exactly once per region.
	Free(data []byte)
}

// HeapAllocator is a RawAllocator backed by the Go heap. It is the default when
// CreateOptions.RawAllocator is nil.
type HeapAllocator struct{}

var _ RawAllocator = HeapAllocator{}

// Allocate returns a fresh zeroed slice. A size the runtime refuses to make is reported as an
// error rather than a panic.
func (HeapAllocator) Allocate(size int) (data []byte, err error) {
	if size < 0 {
		return nil, errors.Newf("cannot allocate a negative %d bytes", size)
	}

	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = errors.Newf("heap allocation of %d bytes failed: %v", size, r)
		}
	}()

	return make([]byte, size), nil
}

func (HeapAllocator) Free(data []byte) {}
