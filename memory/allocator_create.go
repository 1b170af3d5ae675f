package memory

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/linkage/internal/utils"
	"github.com/vkngwrapper/linkage/memutils"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific allocator behaviors to activate or deactivate
type CreateFlags int32

const (
	// AllocatorCreateExternallySynchronized disables the allocator's ownership guard. By default,
	// an Acquire, Resize, Release or Move that begins while another one is still running on the same
	// allocator fails with memutils.ErrConcurrentAccess. With this flag the consumer guarantees
	// exclusive use and the check is skipped.
	AllocatorCreateExternallySynchronized CreateFlags = 1 << iota
)

var allocatorCreateFlagsMapping = map[CreateFlags]string{
	AllocatorCreateExternallySynchronized: "AllocatorCreateExternallySynchronized",
}

func (f CreateFlags) String() string {
	if f == 0 {
		return "None"
	}

	var names []string
	for i := 0; i < 32; i++ {
		bit := CreateFlags(uint32(1) << i)
		if f&bit == 0 {
			continue
		}

		name, ok := allocatorCreateFlagsMapping[bit]
		if !ok {
			name = "Unknown"
		}
		names = append(names, name)
	}

	return strings.Join(names, "|")
}

const (
	// defaultGranularity is the accounting granularity used when CreateOptions.Granularity is 0
	defaultGranularity int = 8
	// initialRegistrySize is the starting capacity of the live buffer registry
	initialRegistrySize uint32 = 42
)

// CreateOptions contains optional settings when creating an allocator
type CreateOptions struct {
	// Flags indicates specific allocator behaviors to activate or deactivate
	Flags CreateFlags

	// Granularity is the unit, in bytes, that every buffer's size is rounded up to when it is charged
	// against HeapSizeLimit. It must be a power of two. 0 selects a granularity of 8.
	Granularity int

	// HeapSizeLimit is the maximum number of bytes, after rounding to Granularity, that may be live
	// at once. Acquisitions and growth past the limit fail with memutils.ErrOutOfMemory. 0 means no limit.
	HeapSizeLimit int

	// RawAllocator is the underlying source of storage. If nil, HeapAllocator is used.
	RawAllocator RawAllocator

	// MemoryCallbackOptions is an optional set of callbacks that will be executed when storage is
	// taken from or returned to the RawAllocator
	MemoryCallbackOptions *MemoryCallbackOptions
}

// New creates a new Allocator
//
// logger - Receives debug traces of allocator calls and error reports for buffers that are
// still live when the allocator is destroyed. If nil, slog.Default() is used.
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, options CreateOptions) (*Allocator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	granularity := options.Granularity
	if granularity == 0 {
		granularity = defaultGranularity
	}

	err := memutils.CheckPow2(granularity, "memory.CreateOptions.Granularity")
	if err != nil {
		return nil, errors.Mark(err, memutils.ErrInvalidArgument)
	}

	if options.HeapSizeLimit < 0 {
		return nil, errors.Wrapf(memutils.ErrInvalidArgument, "memory.CreateOptions.HeapSizeLimit is %d, but must not be negative", options.HeapSizeLimit)
	}

	raw := options.RawAllocator
	if raw == nil {
		raw = HeapAllocator{}
	}

	allocator := &Allocator{
		mutex:       utils.OptionalRWMutex{UseMutex: options.Flags&AllocatorCreateExternallySynchronized == 0},
		logger:      logger,
		raw:         raw,
		createFlags: options.Flags,
		granularity: granularity,
		budget:      currentBudgetData{limit: options.HeapSizeLimit},
		buffers:     swiss.NewMap[BufferHandle, *Buffer](initialRegistrySize),
	}
	allocator.callbacks = memoryCallbacks{
		Callbacks: options.MemoryCallbackOptions,
		Allocator: allocator,
	}

	logger.Debug("Allocator::New",
		slog.String("Flags", options.Flags.String()),
		slog.Int("Granularity", granularity),
		slog.Int("HeapSizeLimit", options.HeapSizeLimit),
	)

	return allocator, nil
}
