package memory

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/linkage/memutils"
)

// BufferHandle is a numeric handle used to identify individual live buffers within an Allocator
type BufferHandle uint64

const (
	// NoBuffer is the handle of a Buffer that owns no storage: one that was acquired with size 0,
	// released, resized to 0, or moved from.
	NoBuffer BufferHandle = 0
)

// noCopy may be embedded into structs which must not be copied after first use.
// See https://golang.org/issues/8005#issuecomment-190753527 for details; go vet's
// copylocks check reports copies.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Buffer is a single-owner handle to a contiguous, zero-initialized byte region acquired from an
// Allocator. Buffers must be passed by pointer; use Move to hand ownership to another holder.
//
// Once released, Bytes returns nil and Handle returns NoBuffer. Releasing a released Buffer is a
// no-op.
type Buffer struct {
	noCopy noCopy

	handle          BufferHandle
	data            []byte
	reserved        int
	parentAllocator *Allocator

	name     string
	userData any
}

func (b *Buffer) Handle() BufferHandle { return b.handle }
func (b *Buffer) Len() int             { return len(b.data) }
func (b *Buffer) IsReleased() bool     { return b.handle == NoBuffer }

// Reserved returns the number of bytes this buffer is charged against its allocator's heap
// size limit
func (b *Buffer) Reserved() int { return b.reserved }

// Bytes returns the buffer's storage. The returned slice is only valid until the next Resize,
// Release, or Move of this Buffer. It is nil for a released Buffer.
func (b *Buffer) Bytes() []byte { return b.data }

// Allocator returns the allocator that owns this buffer's storage, or nil for a zero Buffer
func (b *Buffer) Allocator() *Allocator { return b.parentAllocator }

func (b *Buffer) SetName(name string) {
	b.name = name
}

func (b *Buffer) Name() string {
	return b.name
}

func (b *Buffer) SetUserData(userData any) {
	b.userData = userData
}

func (b *Buffer) UserData() any {
	return b.userData
}

// Release returns this buffer's storage to its allocator and clears the handle. It is a no-op
// for a nil, zero, or already-released Buffer.
func (b *Buffer) Release() error {
	if b == nil || b.parentAllocator == nil || b.handle == NoBuffer {
		return nil
	}

	return b.parentAllocator.Release(b)
}

// Resize changes the length of this buffer. See Allocator.Resize.
func (b *Buffer) Resize(newSize int) error {
	if b == nil || b.parentAllocator == nil {
		return errors.Wrap(memutils.ErrInvalidArgument, "buffer does not belong to an allocator")
	}

	return b.parentAllocator.Resize(b, newSize)
}

// Move transfers this buffer's storage to a new handle. See Allocator.Move.
func (b *Buffer) Move() (*Buffer, error) {
	if b == nil || b.parentAllocator == nil {
		return nil, errors.Wrap(memutils.ErrInvalidArgument, "buffer does not belong to an allocator")
	}

	return b.parentAllocator.Move(b)
}

// CopyFrom copies src into the start of the buffer. The buffer must be live, src must not be empty,
// and src must fit within the buffer.
func (b *Buffer) CopyFrom(src []byte) error {
	if b == nil || b.handle == NoBuffer {
		return errors.Wrap(memutils.ErrInvalidArgument, "attempted to copy into a released buffer")
	}

	if len(src) == 0 {
		return errors.Wrap(memutils.ErrInvalidArgument, "attempted to copy an empty source")
	}

	if len(src) > len(b.data) {
		return errors.Wrapf(memutils.ErrInvalidArgument, "source is %d bytes but buffer %d is only %d bytes", len(src), b.handle, len(b.data))
	}

	copy(b.data, src)
	return nil
}

// Fill sets every byte of the buffer to value. The buffer must be live.
func (b *Buffer) Fill(value byte) error {
	if b == nil || b.handle == NoBuffer {
		return errors.Wrap(memutils.ErrInvalidArgument, "attempted to fill a released buffer")
	}

	for i := range b.data {
		b.data[i] = value
	}
	return nil
}
