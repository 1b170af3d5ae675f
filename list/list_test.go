package list_test

import (
	"encoding/json"
	"math/rand"
	"slices"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/linkage/list"
	"github.com/vkngwrapper/linkage/memory"
	"github.com/vkngwrapper/linkage/memutils"
	"golang.org/x/exp/slog"
)

func newAllocator(t *testing.T, options memory.CreateOptions) *memory.Allocator {
	allocator, err := memory.New(slog.Default(), options)
	require.NoError(t, err)
	return allocator
}

func newList(t *testing.T, allocator *memory.Allocator, values ...int) *list.List {
	l, err := list.New(allocator, list.CreateOptions{Name: t.Name()})
	require.NoError(t, err)

	for _, value := range values {
		require.NoError(t, l.Append(value))
	}

	return l
}

func collect(t *testing.T, l *list.List) []int {
	var forward []int
	for value := range l.All() {
		forward = append(forward, value)
	}

	var backward []int
	for value := range l.Backward() {
		backward = append(backward, value)
	}
	slices.Reverse(backward)

	require.Equal(t, forward, backward)
	require.Len(t, forward, l.Len())

	return forward
}

func TestNewListIsEmpty(t *testing.T) {
	allocator := newAllocator(t, memory.CreateOptions{})
	l := newList(t, allocator)

	require.True(t, l.IsEmpty())
	require.Equal(t, 0, l.Len())
	require.Equal(t, t.Name(), l.Name())
	require.Empty(t, collect(t, l))
	require.NoError(t, l.Validate())

	_, err := l.Front()
	require.True(t, errors.Is(err, memutils.ErrNotFound))
	_, err = l.Back()
	require.True(t, errors.Is(err, memutils.ErrNotFound))

	require.NoError(t, l.Destroy())
	require.NoError(t, allocator.Destroy())
}

func TestNewListRequiresAllocator(t *testing.T) {
	l, err := list.New(nil, list.CreateOptions{})
	require.Nil(t, l)
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))

	allocator := newAllocator(t, memory.CreateOptions{})
	l, err = list.New(allocator, list.CreateOptions{InitialCapacity: -1})
	require.Nil(t, l)
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))

	l, err = list.New(allocator, list.CreateOptions{})
	require.NoError(t, err)
	require.Equal(t, "list", l.Name())
	require.NoError(t, l.Destroy())
}

func TestNewListOutOfMemory(t *testing.T) {
	allocator := newAllocator(t, memory.CreateOptions{HeapSizeLimit: 16})

	l, err := list.New(allocator, list.CreateOptions{})
	require.Nil(t, l)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))
	require.Equal(t, memory.Budget{Limit: 16}, allocator.Budget())
}

func TestRemoveMiddle(t *testing.T) {
	allocator := newAllocator(t, memory.CreateOptions{})
	l := newList(t, allocator, 10, 20, 30)

	require.NoError(t, l.RemoveFirst(20))
	require.Equal(t, []int{10, 30}, collect(t, l))
	require.Equal(t, 2, l.Len())
	require.Equal(t, "List (count: 2): 10 30", l.String())
	require.NoError(t, l.Validate())

	require.NoError(t, l.Destroy())
	require.Equal(t, memory.Budget{}, allocator.Budget())
	require.NoError(t, allocator.Destroy())
}

func TestRemoveEndpoints(t *testing.T) {
	allocator := newAllocator(t, memory.CreateOptions{})
	l := newList(t, allocator, 1, 2, 3)

	require.NoError(t, l.RemoveFirst(1))
	require.Equal(t, []int{2, 3}, collect(t, l))

	require.NoError(t, l.RemoveFirst(3))
	require.Equal(t, []int{2}, collect(t, l))

	front, err := l.Front()
	require.NoError(t, err)
	back, err := l.Back()
	require.NoError(t, err)
	require.Equal(t, front, back)

	require.NoError(t, l.RemoveFirst(2))
	require.True(t, l.IsEmpty())
	require.Empty(t, collect(t, l))
	require.NoError(t, l.Validate())

	require.NoError(t, l.Append(4))
	require.Equal(t, []int{4}, collect(t, l))
	require.NoError(t, l.Destroy())
}

func TestRemoveOnlyFirstDuplicate(t *testing.T) {
	allocator := newAllocator(t, memory.CreateOptions{})
	l := newList(t, allocator, 5, 7, 5, 9, 5)

	require.NoError(t, l.RemoveFirst(5))
	require.Equal(t, []int{7, 5, 9, 5}, collect(t, l))

	require.NoError(t, l.RemoveFirst(5))
	require.Equal(t, []int{7, 9, 5}, collect(t, l))
	require.NoError(t, l.Destroy())
}

func TestRemoveNotFound(t *testing.T) {
	allocator := newAllocator(t, memory.CreateOptions{})
	l := newList(t, allocator, 1, 2, 3)
	before := allocator.Budget()

	err := l.RemoveFirst(42)
	require.True(t, errors.Is(err, memutils.ErrNotFound))
	require.Equal(t, []int{1, 2, 3}, collect(t, l))
	require.Equal(t, before, allocator.Budget())
	require.NoError(t, l.Validate())

	empty := newList(t, allocator)
	require.True(t, errors.Is(empty.RemoveFirst(1), memutils.ErrNotFound))

	require.NoError(t, l.Destroy())
	require.NoError(t, empty.Destroy())
}

func TestAppendOutOfMemoryLeavesListIntact(t *testing.T) {
	// Header is 24 bytes and each node 8, so the limit fits exactly two nodes
	allocator := newAllocator(t, memory.CreateOptions{HeapSizeLimit: 40})
	l := newList(t, allocator, 1, 2)

	err := l.Append(3)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))
	require.Equal(t, []int{1, 2}, collect(t, l))
	require.Equal(t, "List (count: 2): 1 2", l.String())
	require.NoError(t, l.Validate())
	require.NoError(t, allocator.Validate())

	require.NoError(t, l.RemoveFirst(1))
	require.NoError(t, l.Append(3))
	require.Equal(t, []int{2, 3}, collect(t, l))

	require.NoError(t, l.Destroy())
	require.Equal(t, memory.Budget{Limit: 40}, allocator.Budget())
}

func TestFind(t *testing.T) {
	allocator := newAllocator(t, memory.CreateOptions{})
	l := newList(t, allocator, 10, 20, 30, 20)

	ref, err := l.Find(20)
	require.NoError(t, err)

	value, err := l.Value(ref)
	require.NoError(t, err)
	require.Equal(t, 20, value)

	prev, err := l.Prev(ref)
	require.NoError(t, err)
	value, err = l.Value(prev)
	require.NoError(t, err)
	require.Equal(t, 10, value)

	next, err := l.Next(ref)
	require.NoError(t, err)
	value, err = l.Value(next)
	require.NoError(t, err)
	require.Equal(t, 30, value)

	_, err = l.Prev(prev)
	require.True(t, errors.Is(err, memutils.ErrNotFound))

	back, err := l.Back()
	require.NoError(t, err)
	_, err = l.Next(back)
	require.True(t, errors.Is(err, memutils.ErrNotFound))

	_, err = l.Find(99)
	require.True(t, errors.Is(err, memutils.ErrNotFound))

	require.NoError(t, l.Destroy())
}

func TestStaleNodeRef(t *testing.T) {
	allocator := newAllocator(t, memory.CreateOptions{})
	l := newList(t, allocator, 1, 2, 3)

	ref, err := l.Find(2)
	require.NoError(t, err)
	require.NoError(t, l.RemoveFirst(2))

	_, err = l.Value(ref)
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))

	// The freed slot is reused, but the old reference still must not resolve
	require.NoError(t, l.Append(4))
	_, err = l.Value(ref)
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))
	_, err = l.Next(ref)
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))

	_, err = l.Value(list.NodeRef{})
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))

	require.NoError(t, l.Destroy())
}

func TestValues(t *testing.T) {
	allocator := newAllocator(t, memory.CreateOptions{})
	l := newList(t, allocator, 3, -1, 4, -1, 5)

	values, err := l.Values()
	require.NoError(t, err)
	require.Equal(t, []int{3, -1, 4, -1, 5}, values)

	values[0] = 100
	require.Equal(t, []int{3, -1, 4, -1, 5}, collect(t, l))

	require.NoError(t, l.Destroy())
}

func TestTraversalIsRestartable(t *testing.T) {
	allocator := newAllocator(t, memory.CreateOptions{})
	l := newList(t, allocator, 1, 2, 3)

	seq := l.All()

	var first, second []int
	for value := range seq {
		first = append(first, value)
	}
	for value := range seq {
		second = append(second, value)
	}

	require.Equal(t, []int{1, 2, 3}, first)
	require.Equal(t, first, second)

	var partial []int
	for value := range l.All() {
		partial = append(partial, value)
		if value == 2 {
			break
		}
	}
	require.Equal(t, []int{1, 2}, partial)

	require.NoError(t, l.Destroy())
}

func TestTraversalStopsOnMutation(t *testing.T) {
	allocator := newAllocator(t, memory.CreateOptions{})
	l := newList(t, allocator, 1, 2, 3)

	var seen []int
	for value := range l.All() {
		seen = append(seen, value)
		require.NoError(t, l.Append(value*10))
	}
	require.Equal(t, []int{1}, seen)
	require.Equal(t, []int{1, 2, 3, 10}, collect(t, l))

	seen = nil
	for value := range l.Backward() {
		seen = append(seen, value)
		require.NoError(t, l.RemoveFirst(value))
	}
	require.Equal(t, []int{10}, seen)
	require.NoError(t, l.Validate())

	require.NoError(t, l.Destroy())
}

func TestDestroyReleasesEverything(t *testing.T) {
	var freed int
	allocator := newAllocator(t, memory.CreateOptions{
		MemoryCallbackOptions: &memory.MemoryCallbackOptions{
			Free: func(allocator *memory.Allocator, handle memory.BufferHandle, size int, userData interface{}) {
				freed++
			},
		},
	})
	l := newList(t, allocator, 1, 2, 3, 4)

	var stats memutils.Statistics
	l.AddStatistics(&stats)
	require.Equal(t, memutils.Statistics{AllocationCount: 5, AllocationBytes: 56, ReservedBytes: 56}, stats)

	require.NoError(t, l.Destroy())
	require.Equal(t, 5, freed)
	require.Equal(t, memory.Budget{}, allocator.Budget())
	require.NoError(t, allocator.Destroy())
}

func TestDestroyedListIsRejected(t *testing.T) {
	allocator := newAllocator(t, memory.CreateOptions{})
	l := newList(t, allocator, 1)
	require.NoError(t, l.Destroy())

	require.True(t, errors.Is(l.Append(1), memutils.ErrInvalidArgument))
	require.True(t, errors.Is(l.RemoveFirst(1), memutils.ErrInvalidArgument))
	require.True(t, errors.Is(l.Destroy(), memutils.ErrInvalidArgument))

	_, err := l.Find(1)
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))
	_, err = l.Values()
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))

	require.Empty(t, collect(t, l))
	require.Equal(t, "List (destroyed)", l.String())
}

func TestNilListIsRejected(t *testing.T) {
	var l *list.List

	require.True(t, errors.Is(l.Append(1), memutils.ErrInvalidArgument))
	require.True(t, errors.Is(l.RemoveFirst(1), memutils.ErrInvalidArgument))
	require.True(t, errors.Is(l.Destroy(), memutils.ErrInvalidArgument))
	require.True(t, errors.Is(l.Validate(), memutils.ErrInvalidArgument))
	require.Equal(t, 0, l.Len())
	require.True(t, l.IsEmpty())

	var zero list.List
	require.True(t, errors.Is(zero.Append(1), memutils.ErrInvalidArgument))
	require.Equal(t, "List (invalid)", zero.String())
}

func TestOverlappingCallsAreRejected(t *testing.T) {
	var l *list.List
	var nestedErr error

	allocator := newAllocator(t, memory.CreateOptions{
		MemoryCallbackOptions: &memory.MemoryCallbackOptions{
			Allocate: func(allocator *memory.Allocator, handle memory.BufferHandle, size int, userData interface{}) {
				if l != nil {
					nestedErr = l.Append(99)
				}
			},
		},
	})
	l = newList(t, allocator)

	require.NoError(t, l.Append(1))
	require.True(t, errors.Is(nestedErr, memutils.ErrConcurrentAccess))
	require.Equal(t, []int{1}, collect(t, l))
	require.NoError(t, l.Validate())
}

func TestPrintJSON(t *testing.T) {
	allocator := newAllocator(t, memory.CreateOptions{})
	l := newList(t, allocator, 7, 8)

	writer := jwriter.NewWriter()
	l.PrintJSON(&writer)

	var doc struct {
		Name      string
		Destroyed bool
		Count     int
		Values    []int
	}
	require.NoError(t, json.Unmarshal(writer.Bytes(), &doc))
	require.Equal(t, t.Name(), doc.Name)
	require.False(t, doc.Destroyed)
	require.Equal(t, 2, doc.Count)
	require.Equal(t, []int{7, 8}, doc.Values)

	require.NoError(t, l.Destroy())
}

func TestRandomOperationsKeepInvariants(t *testing.T) {
	allocator := newAllocator(t, memory.CreateOptions{})
	l := newList(t, allocator)
	rng := rand.New(rand.NewSource(1))

	var model []int
	for i := 0; i < 2000; i++ {
		value := rng.Intn(20)

		if rng.Intn(3) == 0 {
			err := l.RemoveFirst(value)
			index := slices.Index(model, value)
			if index < 0 {
				require.True(t, errors.Is(err, memutils.ErrNotFound))
			} else {
				require.NoError(t, err)
				model = slices.Delete(model, index, index+1)
			}
		} else {
			require.NoError(t, l.Append(value))
			model = append(model, value)
		}

		require.NoError(t, l.Validate())
		require.Equal(t, len(model), l.Len())

		_, err := l.Find(value)
		if slices.Contains(model, value) {
			require.NoError(t, err)
		} else {
			require.True(t, errors.Is(err, memutils.ErrNotFound))
		}
	}

	require.Equal(t, model, collect(t, l))
	require.Equal(t, len(model)+1, allocator.Budget().AllocationCount)

	require.NoError(t, l.Destroy())
	require.Equal(t, memory.Budget{}, allocator.Budget())
}

func TestAppendThenRemoveRestoresList(t *testing.T) {
	allocator := newAllocator(t, memory.CreateOptions{})
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		initial := make([]int, rng.Intn(10))
		for i := range initial {
			initial[i] = rng.Intn(5)
		}

		l := newList(t, allocator, initial...)
		value := 100 + rng.Intn(5)

		require.NoError(t, l.Append(value))
		require.NoError(t, l.RemoveFirst(value))

		require.Equal(t, initial, nilIfEmpty(collect(t, l)))
		require.NoError(t, l.Validate())
		require.NoError(t, l.Destroy())
	}

	require.Equal(t, memory.Budget{}, allocator.Budget())
}

func nilIfEmpty(values []int) []int {
	if len(values) == 0 {
		return []int{}
	}
	return values
}
