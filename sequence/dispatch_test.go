package sequence_test

import (
	"encoding/binary"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/linkage/list"
	"github.com/vkngwrapper/linkage/memory"
	"github.com/vkngwrapper/linkage/memutils"
	"github.com/vkngwrapper/linkage/sequence"
)

type summer struct {
	total  int
	visits int
}

func (s *summer) Visit(element int) {
	s.total += element
	s.visits++
}

func TestForEachVisitsInOrder(t *testing.T) {
	var seen []int
	err := sequence.ForEach(sequence.Of([]int{4, 8, 15, 16, 23, 42}), sequence.CallbackFunc[int](func(element int) {
		seen = append(seen, element)
	}))
	require.NoError(t, err)
	require.Equal(t, []int{4, 8, 15, 16, 23, 42}, seen)
}

func TestForEachStatefulCallback(t *testing.T) {
	s := &summer{}

	require.NoError(t, sequence.ForEach[int](sequence.NewView([]int{1, 2, 3, 4}, 3), s))
	require.Equal(t, 6, s.total)
	require.Equal(t, 3, s.visits)
}

func TestForEachEmptyView(t *testing.T) {
	s := &summer{}

	require.NoError(t, sequence.ForEach[int](sequence.Of([]int{}), s))
	require.NoError(t, sequence.ForEach[int](sequence.Of[int](nil), s))
	require.Zero(t, s.visits)
}

func TestForEachRejectsBadInput(t *testing.T) {
	err := sequence.ForEach[int](sequence.Of([]int{1}), nil)
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))

	var nilFunc sequence.CallbackFunc[int]
	err = sequence.ForEach[int](sequence.Of([]int{1}), nilFunc)
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))

	s := &summer{}
	err = sequence.ForEach[int](sequence.NewView[int](nil, 3), s)
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))
	require.Zero(t, s.visits)
}

func TestProcessBufferReturnsProcessorError(t *testing.T) {
	data := []byte{1, 2, 3}
	sentinel := errors.New("processor refused")

	var gotLength int
	err := sequence.ProcessBuffer(data, sequence.ProcessorFunc(func(buffer []byte, length int) error {
		gotLength = length
		require.Equal(t, data, buffer)
		return sentinel
	}))
	require.Same(t, sentinel, err)
	require.Equal(t, 3, gotLength)

	err = sequence.ProcessBuffer(data, sequence.ProcessorFunc(func(buffer []byte, length int) error {
		return nil
	}))
	require.NoError(t, err)
}

func TestProcessBufferRejectsBadInput(t *testing.T) {
	called := false
	p := sequence.ProcessorFunc(func(buffer []byte, length int) error {
		called = true
		return nil
	})

	require.True(t, errors.Is(sequence.ProcessBuffer(nil, p), memutils.ErrInvalidArgument))
	require.True(t, errors.Is(sequence.ProcessBuffer([]byte{}, p), memutils.ErrInvalidArgument))
	require.False(t, called)

	require.True(t, errors.Is(sequence.ProcessBuffer([]byte{1}, nil), memutils.ErrInvalidArgument))

	var nilFunc sequence.ProcessorFunc
	require.True(t, errors.Is(sequence.ProcessBuffer([]byte{1}, nilFunc), memutils.ErrInvalidArgument))
}

func TestInt32Processor(t *testing.T) {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], 7)
	binary.LittleEndian.PutUint32(data[4:8], uint32(0xFFFFFFFE))
	binary.LittleEndian.PutUint32(data[8:12], 1<<20)

	var words []int32
	p := sequence.Int32Processor(sequence.CallbackFunc[int32](func(word int32) {
		words = append(words, word)
	}))

	require.NoError(t, sequence.ProcessBuffer(data, p))
	require.Equal(t, []int32{7, -2, 1 << 20}, words)

	words = nil
	err := sequence.ProcessBuffer(data[:10], p)
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))
	require.Empty(t, words)

	err = p.Process(data, 16)
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))

	err = sequence.ProcessBuffer(data, sequence.Int32Processor(nil))
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))
}

func TestProcessManaged(t *testing.T) {
	allocator, err := memory.New(nil, memory.CreateOptions{})
	require.NoError(t, err)

	buffer, err := allocator.Acquire(8)
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(buffer.Bytes()[0:4], 3)
	binary.LittleEndian.PutUint32(buffer.Bytes()[4:8], 4)

	sum := int32(0)
	p := sequence.Int32Processor(sequence.CallbackFunc[int32](func(word int32) {
		sum += word
	}))
	require.NoError(t, sequence.ProcessManaged(buffer, p))
	require.Equal(t, int32(7), sum)

	require.NoError(t, buffer.Release())
	require.True(t, errors.Is(sequence.ProcessManaged(buffer, p), memutils.ErrInvalidArgument))
	require.True(t, errors.Is(sequence.ProcessManaged(nil, p), memutils.ErrInvalidArgument))

	empty, err := allocator.Acquire(0)
	require.NoError(t, err)
	require.True(t, errors.Is(sequence.ProcessManaged(empty, p), memutils.ErrInvalidArgument))

	require.NoError(t, allocator.Destroy())
}

func TestListValuesThroughAlgorithms(t *testing.T) {
	allocator, err := memory.New(nil, memory.CreateOptions{})
	require.NoError(t, err)

	l, err := list.New(allocator, list.CreateOptions{})
	require.NoError(t, err)
	for _, value := range []int{5, 2, 8, 1, 9, 3} {
		require.NoError(t, l.Append(value))
	}

	values, err := l.Values()
	require.NoError(t, err)
	require.NoError(t, sequence.SortOrdered(sequence.Of(values), nil))

	s := &summer{}
	require.NoError(t, sequence.ForEach[int](sequence.Of(values), s))
	require.Equal(t, 28, s.total)

	index, err := sequence.BinarySearch(sequence.Of(values), 8, sequence.Ascending[int]())
	require.NoError(t, err)
	require.Equal(t, 4, index)

	require.NoError(t, l.Destroy())
	require.NoError(t, allocator.Destroy())
}
