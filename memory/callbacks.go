package memory

type AllocateBufferCallback func(
	allocator *Allocator,
	handle BufferHandle,
	size int,
	userData interface{},
)

type FreeBufferCallback func(
	allocator *Allocator,
	handle BufferHandle,
	size int,
	userData interface{},
)

// MemoryCallbackOptions holds informative callbacks fired whenever the allocator takes storage
// from, or returns storage to, its RawAllocator. A resize fires Free for the old region followed
// by Allocate for the new one.
type MemoryCallbackOptions struct {
	Allocate AllocateBufferCallback
	Free     FreeBufferCallback
	UserData interface{}
}

type memoryCallbacks struct {
	Callbacks *MemoryCallbackOptions
	Allocator *Allocator
}

func (c *memoryCallbacks) Allocate(
	handle BufferHandle,
	size int,
) {
	if c.Callbacks != nil && c.Callbacks.Allocate != nil {
		c.Callbacks.Allocate(c.Allocator, handle, size, c.Callbacks.UserData)
	}
}

func (c *memoryCallbacks) Free(
	handle BufferHandle,
	size int,
) {
	if c.Callbacks != nil && c.Callbacks.Free != nil {
		c.Callbacks.Free(c.Allocator, handle, size, c.Callbacks.UserData)
	}
}
