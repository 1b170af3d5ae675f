package list

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/linkage/internal/utils"
	"github.com/vkngwrapper/linkage/memory"
	"github.com/vkngwrapper/linkage/memutils"
	"golang.org/x/exp/slog"
)

const (
	// headerSize is the size of the managed buffer mirroring a list's head, tail and count
	headerSize int = 24
	// nodeSize is the size of the managed buffer holding a single node's payload
	nodeSize int = 8

	defaultName string = "list"
)

// CreateOptions contains optional settings when creating a list
type CreateOptions struct {
	// Name is attached to the list's header buffer and appears in diagnostics. If empty, "list" is used.
	Name string

	// InitialCapacity is the number of node slots to reserve up front. Slots are bookkeeping only:
	// node storage is always acquired from the allocator one node at a time.
	InitialCapacity int
}

// New creates an empty List whose nodes are acquired from allocator. The list inherits the
// allocator's logger, and it is externally synchronized if the allocator is.
//
// If the allocator cannot provide the list's header storage, New fails with
// memutils.ErrOutOfMemory and no list is returned.
func New(allocator *memory.Allocator, options CreateOptions) (*List, error) {
	if allocator == nil {
		return nil, errors.Wrap(memutils.ErrInvalidArgument, "attempted to create a list without an allocator")
	}

	if options.InitialCapacity < 0 {
		return nil, errors.Wrapf(memutils.ErrInvalidArgument, "list.CreateOptions.InitialCapacity is %d, but must not be negative", options.InitialCapacity)
	}

	name := options.Name
	if name == "" {
		name = defaultName
	}

	logger := allocator.Logger()
	logger.Debug("List::New", slog.String("Name", name), slog.Int("InitialCapacity", options.InitialCapacity))

	header, err := allocator.Acquire(headerSize)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to acquire the header for list %q", name)
	}
	header.SetName(name)

	list := &List{
		mutex: utils.OptionalRWMutex{
			UseMutex: allocator.Flags()&memory.AllocatorCreateExternallySynchronized == 0,
		},
		allocator: allocator,
		logger:    logger,
		name:      name,
		header:    header,
		nodes:     make([]node, 0, options.InitialCapacity),
		head:      noSlot,
		tail:      noSlot,
	}
	list.syncHeader()

	return list, nil
}
