package sequence

import "golang.org/x/exp/constraints"

// Ordering is the result of comparing two elements
type Ordering int

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

var orderingMapping = map[Ordering]string{
	Less:    "Less",
	Equal:   "Equal",
	Greater: "Greater",
}

func (o Ordering) String() string {
	name, ok := orderingMapping[o]
	if !ok {
		return "Unknown"
	}
	return name
}

// Comparator is a total order over T. Sort and BinarySearch trust the comparator: one that is not a
// valid total order produces an unspecified arrangement, but never a fault.
type Comparator[T any] interface {
	Compare(a, b T) Ordering
}

// ComparatorFunc adapts a plain function or closure to Comparator
type ComparatorFunc[T any] func(a, b T) Ordering

func (f ComparatorFunc[T]) Compare(a, b T) Ordering {
	return f(a, b)
}

type ascending[T constraints.Ordered] struct{}

func (ascending[T]) Compare(a, b T) Ordering {
	if a < b {
		return Less
	} else if a > b {
		return Greater
	}
	return Equal
}

// Ascending orders values from smallest to largest
func Ascending[T constraints.Ordered]() Comparator[T] {
	return ascending[T]{}
}

// Descending orders values from largest to smallest
func Descending[T constraints.Ordered]() Comparator[T] {
	return Reverse[T](ascending[T]{})
}

// Reverse inverts cmp
func Reverse[T any](cmp Comparator[T]) Comparator[T] {
	return ComparatorFunc[T](func(a, b T) Ordering {
		return cmp.Compare(b, a)
	})
}

func missingComparator[T any](cmp Comparator[T]) bool {
	if cmp == nil {
		return true
	}

	f, isFunc := cmp.(ComparatorFunc[T])
	return isFunc && f == nil
}
