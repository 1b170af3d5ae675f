package sequence

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/linkage/memutils"
)

// View is a non-owning reference to the first Len elements of a slice. Algorithms in this package
// operate on the elements in place and never allocate.
//
// A View whose declared length is negative or runs past the backing slice is inconsistent, and every
// algorithm rejects it with memutils.ErrInvalidArgument.
type View[T any] struct {
	elements []T
	length   int
}

// Of returns a View over all of elements
func Of[T any](elements []T) View[T] {
	return View[T]{elements: elements, length: len(elements)}
}

// NewView returns a View over elements with an explicitly declared length
func NewView[T any](elements []T, length int) View[T] {
	return View[T]{elements: elements, length: length}
}

func (v View[T]) Len() int { return v.length }

func (v View[T]) Validate() error {
	if v.length < 0 {
		return errors.Wrapf(memutils.ErrInvalidArgument, "view declares a negative length %d", v.length)
	}

	if v.length > len(v.elements) {
		return errors.Wrapf(memutils.ErrInvalidArgument, "view declares %d elements but only %d are present", v.length, len(v.elements))
	}

	return nil
}

// Elements returns the viewed elements, sharing storage with the backing slice. It returns nil
// for an inconsistent View.
func (v View[T]) Elements() []T {
	if v.Validate() != nil {
		return nil
	}

	return v.elements[:v.length:v.length]
}
