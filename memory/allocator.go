package memory

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/linkage/internal/utils"
	"github.com/vkngwrapper/linkage/memutils"
	"golang.org/x/exp/slog"
)

// Allocator hands out zero-filled, single-owner Buffer handles and tracks every live one. Releasing
// a Buffer clears its handle, so a released Buffer can be released again, or resized back to life,
// without touching storage that no longer belongs to it.
//
// An Allocator expects a single logical owner at a time. Unless it was created with
// AllocatorCreateExternallySynchronized, a call that overlaps another call on the same Allocator
// fails with memutils.ErrConcurrentAccess instead of waiting.
type Allocator struct {
	mutex       utils.OptionalRWMutex
	logger      *slog.Logger
	raw         RawAllocator
	callbacks   memoryCallbacks
	createFlags CreateFlags
	granularity int

	budget     currentBudgetData
	nextHandle BufferHandle
	buffers    *swiss.Map[BufferHandle, *Buffer]
	destroyed  bool
}

var _ memutils.Validatable = &Allocator{}

// Logger returns the logger the allocator was created with. Containers built on top of an
// Allocator log through it as well.
func (a *Allocator) Logger() *slog.Logger { return a.logger }

// Flags returns the CreateFlags the allocator was created with
func (a *Allocator) Flags() CreateFlags { return a.createFlags }

// Granularity returns the unit, in bytes, that buffer sizes are rounded up to when charged against
// the heap size limit
func (a *Allocator) Granularity() int { return a.granularity }

// Budget returns a snapshot of the bytes currently charged against the heap size limit
func (a *Allocator) Budget() Budget { return a.budget.snapshot() }

func (a *Allocator) enter() error {
	if !a.mutex.TryLock() {
		return errors.Wrap(memutils.ErrConcurrentAccess, "allocator was entered while another call was in progress")
	}

	if a.destroyed {
		a.mutex.Unlock()
		return errors.Wrap(memutils.ErrInvalidArgument, "allocator has been destroyed")
	}

	return nil
}

func (a *Allocator) checkOwnership(buffer *Buffer) error {
	if buffer == nil {
		return errors.Wrap(memutils.ErrInvalidArgument, "buffer is nil")
	}

	if buffer.parentAllocator != nil && buffer.parentAllocator != a {
		return errors.Wrapf(memutils.ErrInvalidArgument, "buffer %d belongs to a different allocator", buffer.handle)
	}

	return nil
}

// reservedSize returns the bytes charged against the heap size limit for a size-byte buffer. Sizes
// that cannot be rounded up to the granularity without overflowing fail with memutils.ErrOutOfMemory.
func (a *Allocator) reservedSize(size int) (int, error) {
	memutils.DebugCheckPow2(a.granularity, "granularity")

	if size > math.MaxInt-(a.granularity-1) {
		return 0, errors.Wrapf(memutils.ErrOutOfMemory, "%d bytes cannot be rounded up to a granularity of %d", size, a.granularity)
	}

	return memutils.AlignUp(size, uint(a.granularity)), nil
}

// allocateRaw charges the budget for size bytes and takes zero-filled storage from the
// RawAllocator. On failure the budget is left as it was.
func (a *Allocator) allocateRaw(size, reserved int, charge func(int) error, refund func(int)) ([]byte, error) {
	err := charge(reserved)
	if err != nil {
		return nil, err
	}

	data, err := a.raw.Allocate(size)
	if err == nil && len(data) < size {
		a.raw.Free(data)
		err = errors.Newf("raw allocator returned %d bytes for a %d byte request", len(data), size)
	}
	if err != nil {
		refund(reserved)
		return nil, errors.Mark(errors.Wrapf(err, "failed to allocate %d bytes", size), memutils.ErrOutOfMemory)
	}

	data = data[:size:size]
	clear(data)

	return data, nil
}

func (a *Allocator) allocateInto(buffer *Buffer, size int) error {
	reserved, err := a.reservedSize(size)
	if err != nil {
		return err
	}

	data, err := a.allocateRaw(size, reserved, a.budget.AddAllocationWithBudget, a.budget.RemoveAllocation)
	if err != nil {
		return err
	}

	a.nextHandle++
	if a.nextHandle == NoBuffer {
		a.nextHandle++
	}

	buffer.handle = a.nextHandle
	buffer.data = data
	buffer.reserved = reserved
	buffer.parentAllocator = a
	a.buffers.Put(buffer.handle, buffer)

	a.callbacks.Allocate(buffer.handle, size)
	return nil
}

func (a *Allocator) release(buffer *Buffer) {
	if buffer.handle == NoBuffer {
		return
	}

	handle := buffer.handle
	size := len(buffer.data)

	a.buffers.Delete(handle)
	a.raw.Free(buffer.data)
	a.budget.RemoveAllocation(buffer.reserved)

	buffer.handle = NoBuffer
	buffer.data = nil
	buffer.reserved = 0

	a.callbacks.Free(handle, size)
}

// Acquire creates a new Buffer of exactly size bytes, all zero.
//
// A size of 0 produces an empty Buffer that is already in the released state; it owns no storage,
// but it can be grown later with Resize. A negative size fails with memutils.ErrInvalidArgument. If
// the RawAllocator or the heap size limit cannot satisfy the request, Acquire fails with
// memutils.ErrOutOfMemory and nothing is registered.
func (a *Allocator) Acquire(size int) (*Buffer, error) {
	a.logger.Debug("Allocator::Acquire", slog.Int("Size", size))

	err := a.enter()
	if err != nil {
		return nil, err
	}
	defer a.mutex.Unlock()

	if size < 0 {
		return nil, errors.Wrapf(memutils.ErrInvalidArgument, "attempted to acquire a buffer of size %d", size)
	}

	buffer := &Buffer{parentAllocator: a}
	if size == 0 {
		return buffer, nil
	}

	err = a.allocateInto(buffer, size)
	if err != nil {
		a.logger.Debug("  Acquire FAILED", slog.Int("Size", size))
		return nil, err
	}

	memutils.DebugValidate(a)
	return buffer, nil
}

// Resize changes the length of buffer to newSize bytes. The first min(old, new) bytes are preserved
// and any added bytes are zero.
//
// Resizing to 0 is identical to Release. Resizing a released Buffer to a positive size acquires new
// storage for it. If growth fails, Resize returns memutils.ErrOutOfMemory and buffer is left exactly
// as it was, still valid and still owned by the caller.
func (a *Allocator) Resize(buffer *Buffer, newSize int) error {
	a.logger.Debug("Allocator::Resize", slog.Int("NewSize", newSize))

	err := a.enter()
	if err != nil {
		return err
	}
	defer a.mutex.Unlock()

	err = a.checkOwnership(buffer)
	if err != nil {
		return err
	}

	if newSize < 0 {
		return errors.Wrapf(memutils.ErrInvalidArgument, "attempted to resize buffer %d to size %d", buffer.handle, newSize)
	}

	if newSize == 0 {
		a.release(buffer)
		return nil
	}

	if buffer.handle == NoBuffer {
		return a.allocateInto(buffer, newSize)
	}

	oldSize := len(buffer.data)
	if newSize == oldSize {
		return nil
	}

	oldReserved := buffer.reserved
	newReserved, err := a.reservedSize(newSize)
	if err != nil {
		a.logger.Debug("  Resize FAILED", slog.Int("OldSize", oldSize), slog.Int("NewSize", newSize))
		return err
	}

	data, err := a.allocateRaw(newSize, newReserved,
		func(int) error { return a.budget.ResizeAllocation(oldReserved, newReserved) },
		func(int) { _ = a.budget.ResizeAllocation(newReserved, oldReserved) },
	)
	if err != nil {
		a.logger.Debug("  Resize FAILED", slog.Int("OldSize", oldSize), slog.Int("NewSize", newSize))
		return err
	}

	copy(data, buffer.data)
	a.raw.Free(buffer.data)
	a.callbacks.Free(buffer.handle, oldSize)

	buffer.data = data
	buffer.reserved = newReserved
	a.callbacks.Allocate(buffer.handle, newSize)

	memutils.DebugValidate(a)
	return nil
}

// Release returns buffer's storage and clears its handle. Releasing a nil or already-released
// Buffer is a no-op. A Buffer that belongs to another Allocator is rejected with
// memutils.ErrInvalidArgument.
func (a *Allocator) Release(buffer *Buffer) error {
	a.logger.Debug("Allocator::Release")

	if buffer == nil || buffer.handle == NoBuffer {
		return nil
	}

	err := a.enter()
	if err != nil {
		return err
	}
	defer a.mutex.Unlock()

	err = a.checkOwnership(buffer)
	if err != nil {
		return err
	}

	a.release(buffer)
	return nil
}

// Move transfers ownership of buffer's storage to a new Buffer handle and leaves buffer in the
// released state. Moving a released Buffer produces another released Buffer.
func (a *Allocator) Move(buffer *Buffer) (*Buffer, error) {
	a.logger.Debug("Allocator::Move")

	err := a.enter()
	if err != nil {
		return nil, err
	}
	defer a.mutex.Unlock()

	err = a.checkOwnership(buffer)
	if err != nil {
		return nil, err
	}

	moved := &Buffer{
		handle:          buffer.handle,
		data:            buffer.data,
		reserved:        buffer.reserved,
		parentAllocator: a,
		name:            buffer.name,
		userData:        buffer.userData,
	}

	if buffer.handle != NoBuffer {
		a.buffers.Put(moved.handle, moved)
	}

	buffer.handle = NoBuffer
	buffer.data = nil
	buffer.reserved = 0

	return moved, nil
}

// Destroy retires the allocator. If any buffers are still live, each one is logged as unreleased
// memory and an error is returned; the allocator stays usable so the consumer can release them and
// try again. After a successful Destroy every call fails with memutils.ErrInvalidArgument.
func (a *Allocator) Destroy() error {
	a.logger.Debug("Allocator::Destroy")

	err := a.enter()
	if err != nil {
		return err
	}
	defer a.mutex.Unlock()

	liveCount := a.buffers.Count()
	if liveCount > 0 {
		for _, buffer := range a.liveBuffers() {
			a.logUnreleasedMemory(buffer)
		}

		return errors.Newf("%d buffers were not released before the destruction of this allocator", liveCount)
	}

	a.destroyed = true
	return nil
}

func (a *Allocator) logUnreleasedMemory(buffer *Buffer) {
	name := buffer.name
	if name == "" {
		name = "empty"
	}

	a.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED MEMORY] unreleased buffer",
		slog.Uint64("handle", uint64(buffer.handle)),
		slog.Int("size", len(buffer.data)),
		slog.Any("userData", buffer.userData),
		slog.String("name", name),
	)
}

// Validate performs internal consistency checks on the allocator's registry and budget. When the
// allocator is functioning correctly, it should not be possible for this method to return an error.
func (a *Allocator) Validate() error {
	var count, reserved int
	var err error

	a.buffers.Iter(func(handle BufferHandle, buffer *Buffer) bool {
		switch {
		case buffer == nil:
			err = errors.Newf("handle %d is registered with a nil buffer", handle)
		case buffer.handle != handle:
			err = errors.Newf("handle %d is registered with a buffer that believes its handle is %d", handle, buffer.handle)
		case buffer.parentAllocator != a:
			err = errors.Newf("buffer %d is registered with an allocator that does not own it", handle)
		case len(buffer.data) == 0:
			err = errors.Newf("buffer %d is registered but has no storage", handle)
		case buffer.reserved != memutils.AlignUp(len(buffer.data), uint(a.granularity)):
			err = errors.Newf("buffer %d has %d bytes but is charged %d bytes", handle, len(buffer.data), buffer.reserved)
		}
		if err != nil {
			return true
		}

		count++
		reserved += buffer.reserved
		return false
	})
	if err != nil {
		return err
	}

	if count != a.budget.allocationCount {
		return errors.Newf("the registry holds %d buffers, but the budget counts %d", count, a.budget.allocationCount)
	}

	if reserved != a.budget.allocationBytes {
		return errors.Newf("the registry's buffers reserve %d bytes, but the budget counts %d", reserved, a.budget.allocationBytes)
	}

	if a.budget.limit > 0 && a.budget.allocationBytes > a.budget.limit {
		return errors.Newf("the allocator has %d bytes live, past its limit of %d", a.budget.allocationBytes, a.budget.limit)
	}

	return nil
}
