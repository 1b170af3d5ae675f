package list

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/linkage/internal/utils"
	"github.com/vkngwrapper/linkage/memory"
	"github.com/vkngwrapper/linkage/memutils"
	"golang.org/x/exp/slog"
)

// List is a doubly linked list of int payloads. Nodes live in an arena of slots owned by the
// list, and each node's payload is stored in its own managed buffer acquired from the list's
// allocator. Nodes are addressed from outside the list with NodeRef values, never pointers.
//
// A List expects a single logical owner. A call that overlaps another call on the same List fails
// with memutils.ErrConcurrentAccess.
type List struct {
	mutex     utils.OptionalRWMutex
	allocator *memory.Allocator
	logger    *slog.Logger
	name      string
	header    *memory.Buffer

	nodes     []node
	freeSlots []int
	head      int
	tail      int
	count     int

	// mods counts structural mutations so that traversals can detect them
	mods      int
	destroyed bool
}

var _ memutils.Validatable = &List{}

// NodeRef is a borrowed reference to a node in a List. It stays valid until that node is removed;
// afterward, resolving it fails with memutils.ErrInvalidArgument even if the slot has been reused.
type NodeRef struct {
	slot       int
	generation uint32
}

func (l *List) Name() string { return l.name }

// Len returns the number of nodes in the list, or 0 for a nil or destroyed list
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return l.count
}

func (l *List) IsEmpty() bool {
	return l.Len() == 0
}

func (l *List) checkUsable() error {
	if l == nil {
		return errors.Wrap(memutils.ErrInvalidArgument, "list is nil")
	}

	if l.allocator == nil || l.header == nil {
		return errors.Wrap(memutils.ErrInvalidArgument, "list was not created with list.New")
	}

	return nil
}

func (l *List) enter() error {
	err := l.checkUsable()
	if err != nil {
		return err
	}

	if !l.mutex.TryLock() {
		return errors.Wrapf(memutils.ErrConcurrentAccess, "list %q was entered while another call was in progress", l.name)
	}

	if l.destroyed {
		l.mutex.Unlock()
		return errors.Wrapf(memutils.ErrInvalidArgument, "list %q has been destroyed", l.name)
	}

	return nil
}

func (l *List) enterRead() error {
	err := l.checkUsable()
	if err != nil {
		return err
	}

	if !l.mutex.TryRLock() {
		return errors.Wrapf(memutils.ErrConcurrentAccess, "list %q was read while another call was in progress", l.name)
	}

	if l.destroyed {
		l.mutex.RUnlock()
		return errors.Wrapf(memutils.ErrInvalidArgument, "list %q has been destroyed", l.name)
	}

	return nil
}

// Append adds value at the tail of the list. If node storage cannot be acquired, Append fails with
// memutils.ErrOutOfMemory and the list is unchanged.
func (l *List) Append(value int) error {
	err := l.enter()
	if err != nil {
		return err
	}
	defer l.mutex.Unlock()

	l.logger.Debug("List::Append", slog.String("List", l.name), slog.Int("Value", value))

	payload, err := l.allocator.Acquire(nodeSize)
	if err != nil {
		l.logger.Debug("  Append FAILED", slog.String("List", l.name), slog.Int("Count", l.count))
		return errors.Wrapf(err, "failed to acquire a node for list %q", l.name)
	}
	binary.LittleEndian.PutUint64(payload.Bytes(), uint64(int64(value)))

	slot := l.claimSlot(payload)
	l.pushNode(slot)

	memutils.DebugValidate(l)
	return nil
}

func (l *List) findSlot(value int) int {
	for slot := l.head; slot != noSlot; slot = l.nodes[slot].next {
		if l.valueAt(slot) == value {
			return slot
		}
	}

	return noSlot
}

// RemoveFirst removes the node nearest the head whose payload equals value and releases its
// storage. Later duplicates are left in place. If no node matches, RemoveFirst fails with
// memutils.ErrNotFound and the list is unchanged.
func (l *List) RemoveFirst(value int) error {
	err := l.enter()
	if err != nil {
		return err
	}
	defer l.mutex.Unlock()

	l.logger.Debug("List::RemoveFirst", slog.String("List", l.name), slog.Int("Value", value))

	slot := l.findSlot(value)
	if slot == noSlot {
		return errors.Wrapf(memutils.ErrNotFound, "value %d is not in list %q", value, l.name)
	}

	err = l.allocator.Release(l.nodes[slot].payload)
	if err != nil {
		return errors.Wrapf(err, "failed to release a node of list %q", l.name)
	}

	l.removeNode(slot)
	l.freeSlot(slot)

	memutils.DebugValidate(l)
	return nil
}

// Find returns a reference to the node nearest the head whose payload equals value, or
// memutils.ErrNotFound. The reference is a borrow: it is invalidated when its node is removed.
func (l *List) Find(value int) (NodeRef, error) {
	err := l.enterRead()
	if err != nil {
		return NodeRef{}, err
	}
	defer l.mutex.RUnlock()

	slot := l.findSlot(value)
	if slot == noSlot {
		return NodeRef{}, errors.Wrapf(memutils.ErrNotFound, "value %d is not in list %q", value, l.name)
	}

	return l.refTo(slot), nil
}

func (l *List) refTo(slot int) NodeRef {
	return NodeRef{slot: slot, generation: l.nodes[slot].generation}
}

func (l *List) resolve(ref NodeRef) (int, error) {
	if ref.generation == 0 || ref.slot < 0 || ref.slot >= len(l.nodes) {
		return noSlot, errors.Wrapf(memutils.ErrInvalidArgument, "node reference does not belong to list %q", l.name)
	}

	n := &l.nodes[ref.slot]
	if n.payload == nil || n.generation != ref.generation {
		return noSlot, errors.Wrapf(memutils.ErrInvalidArgument, "node reference into list %q is stale", l.name)
	}

	return ref.slot, nil
}

// Value returns the payload of the referenced node
func (l *List) Value(ref NodeRef) (int, error) {
	err := l.enterRead()
	if err != nil {
		return 0, err
	}
	defer l.mutex.RUnlock()

	slot, err := l.resolve(ref)
	if err != nil {
		return 0, err
	}

	return l.valueAt(slot), nil
}

func (l *List) neighbor(ref NodeRef, forward bool) (NodeRef, error) {
	err := l.enterRead()
	if err != nil {
		return NodeRef{}, err
	}
	defer l.mutex.RUnlock()

	slot, err := l.resolve(ref)
	if err != nil {
		return NodeRef{}, err
	}

	next := l.nodes[slot].prev
	if forward {
		next = l.nodes[slot].next
	}

	if next == noSlot {
		return NodeRef{}, errors.Wrapf(memutils.ErrNotFound, "node is at the end of list %q", l.name)
	}

	return l.refTo(next), nil
}

// Next returns the node after ref, or memutils.ErrNotFound if ref is the tail
func (l *List) Next(ref NodeRef) (NodeRef, error) {
	return l.neighbor(ref, true)
}

// Prev returns the node before ref, or memutils.ErrNotFound if ref is the head
func (l *List) Prev(ref NodeRef) (NodeRef, error) {
	return l.neighbor(ref, false)
}

func (l *List) endpoint(slotOf func() int) (NodeRef, error) {
	err := l.enterRead()
	if err != nil {
		return NodeRef{}, err
	}
	defer l.mutex.RUnlock()

	slot := slotOf()
	if slot == noSlot {
		return NodeRef{}, errors.Wrapf(memutils.ErrNotFound, "list %q is empty", l.name)
	}

	return l.refTo(slot), nil
}

// Front returns the head node, or memutils.ErrNotFound if the list is empty
func (l *List) Front() (NodeRef, error) {
	return l.endpoint(func() int { return l.head })
}

// Back returns the tail node, or memutils.ErrNotFound if the list is empty
func (l *List) Back() (NodeRef, error) {
	return l.endpoint(func() int { return l.tail })
}

// Values copies the list's payloads, head to tail, into a new slice
func (l *List) Values() ([]int, error) {
	err := l.enterRead()
	if err != nil {
		return nil, err
	}
	defer l.mutex.RUnlock()

	values := make([]int, 0, l.count)
	for slot := l.head; slot != noSlot; slot = l.nodes[slot].next {
		values = append(values, l.valueAt(slot))
	}

	return values, nil
}

// Destroy releases every node's storage, then the list's header. It is valid to destroy an empty
// list. Afterward, every call on the list fails with memutils.ErrInvalidArgument.
//
// If the allocator refuses a release, Destroy stops and returns the error; the nodes that remain
// are still linked and the list can be destroyed again.
func (l *List) Destroy() error {
	err := l.enter()
	if err != nil {
		return err
	}
	defer l.mutex.Unlock()

	l.logger.Debug("List::Destroy", slog.String("List", l.name), slog.Int("Count", l.count))

	for l.head != noSlot {
		slot := l.head
		err = l.allocator.Release(l.nodes[slot].payload)
		if err != nil {
			return errors.Wrapf(err, "failed to release a node while destroying list %q", l.name)
		}

		l.removeNode(slot)
		l.freeSlot(slot)
	}

	err = l.allocator.Release(l.header)
	if err != nil {
		return errors.Wrapf(err, "failed to release the header of list %q", l.name)
	}

	l.nodes = nil
	l.freeSlots = nil
	l.mods++
	l.destroyed = true

	return nil
}

// Validate performs internal consistency checks on the list's links, arena and header. When the
// list is functioning correctly, it should not be possible for this method to return an error.
func (l *List) Validate() error {
	err := l.checkUsable()
	if err != nil {
		return err
	}

	if l.destroyed {
		return nil
	}

	if (l.count == 0) != (l.head == noSlot) || (l.count == 0) != (l.tail == noSlot) {
		return errors.Errorf("list %q has count %d but head %d and tail %d", l.name, l.count, l.head, l.tail)
	}

	head, tail, count := l.headerFields()
	if head != l.head || tail != l.tail || count != l.count {
		return errors.Errorf("list %q header records head %d, tail %d, count %d, but the list has head %d, tail %d, count %d",
			l.name, head, tail, count, l.head, l.tail, l.count)
	}

	visited := 0
	prev := noSlot
	for slot := l.head; slot != noSlot; slot = l.nodes[slot].next {
		if slot < 0 || slot >= len(l.nodes) {
			return errors.Errorf("list %q links to slot %d outside its arena of %d", l.name, slot, len(l.nodes))
		}

		n := &l.nodes[slot]
		if n.payload == nil || n.payload.IsReleased() || n.payload.Len() != nodeSize {
			return errors.Errorf("list %q links to slot %d, which has no live payload", l.name, slot)
		}

		if n.prev != prev {
			return errors.Errorf("list %q slot %d points back to %d, but was reached from %d", l.name, slot, n.prev, prev)
		}

		visited++
		if visited > l.count {
			return errors.Errorf("list %q has more reachable nodes than its count of %d", l.name, l.count)
		}

		prev = slot
	}

	if visited != l.count {
		return errors.Errorf("the listed number of nodes in list %q (%d) does not match the actual number of nodes (%d)", l.name, l.count, visited)
	}

	if prev != l.tail {
		return errors.Errorf("list %q ends at slot %d, but its tail is %d", l.name, prev, l.tail)
	}

	if len(l.nodes)-len(l.freeSlots) != l.count {
		return errors.Errorf("list %q has %d occupied slots but a count of %d", l.name, len(l.nodes)-len(l.freeSlots), l.count)
	}

	for _, slot := range l.freeSlots {
		if l.nodes[slot].payload != nil {
			return errors.Errorf("list %q slot %d is marked free but still holds a payload", l.name, slot)
		}
	}

	return nil
}
