package sequence

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/linkage/memutils"
	"golang.org/x/exp/constraints"
)

// Sort arranges the viewed elements in non-decreasing order under cmp using selection sort: for each
// position, the smallest remaining element is found and swapped into place. It performs O(n²)
// comparisons and at most n-1 swaps, and it is not stable.
//
// Views of zero or one element are left as they are. A nil comparator, or an inconsistent view,
// fails with memutils.ErrInvalidArgument.
func Sort[T any](view View[T], cmp Comparator[T]) error {
	err := view.Validate()
	if err != nil {
		return err
	}

	if missingComparator(cmp) {
		return errors.Wrap(memutils.ErrInvalidArgument, "sort requires a comparator")
	}

	selectionSort(view.Elements(), cmp)
	return nil
}

// SortOrdered is Sort with a default: a nil comparator sorts in ascending order
func SortOrdered[T constraints.Ordered](view View[T], cmp Comparator[T]) error {
	if missingComparator(cmp) {
		cmp = Ascending[T]()
	}

	return Sort(view, cmp)
}

func selectionSort[T any](elements []T, cmp Comparator[T]) {
	for i := 0; i < len(elements)-1; i++ {
		minIndex := i
		for j := i + 1; j < len(elements); j++ {
			if cmp.Compare(elements[j], elements[minIndex]) == Less {
				minIndex = j
			}
		}

		if minIndex != i {
			elements[i], elements[minIndex] = elements[minIndex], elements[i]
		}
	}
}

// BinarySearch returns the index of an element that compares Equal to target in a view sorted under
// cmp, or memutils.ErrNotFound. If several elements match, any one of them may be returned.
func BinarySearch[T any](view View[T], target T, cmp Comparator[T]) (int, error) {
	err := view.Validate()
	if err != nil {
		return -1, err
	}

	if missingComparator(cmp) {
		return -1, errors.Wrap(memutils.ErrInvalidArgument, "binary search requires a comparator")
	}

	elements := view.Elements()
	low, high := 0, len(elements)-1
	for low <= high {
		mid := low + (high-low)/2

		switch cmp.Compare(elements[mid], target) {
		case Equal:
			return mid, nil
		case Greater:
			high = mid - 1
		default:
			low = mid + 1
		}
	}

	return -1, errors.Wrap(memutils.ErrNotFound, "target is not in the view")
}
