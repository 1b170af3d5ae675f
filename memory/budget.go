package memory

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/linkage/memutils"
)

// Budget is a snapshot of the bytes an Allocator has charged against its heap size limit.
// A Limit of 0 means the allocator is unlimited.
type Budget struct {
	AllocationCount int
	AllocationBytes int
	Limit           int
}

type currentBudgetData struct {
	allocationCount int
	allocationBytes int
	limit           int
}

func (d *currentBudgetData) snapshot() Budget {
	return Budget{
		AllocationCount: d.allocationCount,
		AllocationBytes: d.allocationBytes,
		Limit:           d.limit,
	}
}

func (d *currentBudgetData) reserve(allocationSize int) error {
	if allocationSize < 0 {
		return errors.Wrapf(memutils.ErrInvalidArgument, "attempted to reserve a negative %d bytes", allocationSize)
	}

	targetVal := d.allocationBytes + allocationSize
	if targetVal < d.allocationBytes {
		return errors.Wrapf(memutils.ErrOutOfMemory, "reserving %d bytes would overflow the allocator's %d live bytes", allocationSize, d.allocationBytes)
	}

	if d.limit > 0 && targetVal > d.limit {
		return errors.Wrapf(memutils.ErrOutOfMemory, "reserving %d bytes would bring the allocator to %d bytes, past its limit of %d", allocationSize, targetVal, d.limit)
	}

	d.allocationBytes = targetVal
	return nil
}

func (d *currentBudgetData) unreserve(allocationSize int) {
	if d.allocationBytes < allocationSize {
		panic(fmt.Sprintf("allocation bytes budget went negative: %d - %d", d.allocationBytes, allocationSize))
	}
	d.allocationBytes -= allocationSize
}

func (d *currentBudgetData) AddAllocationWithBudget(allocationSize int) error {
	err := d.reserve(allocationSize)
	if err != nil {
		return err
	}

	d.allocationCount++
	return nil
}

func (d *currentBudgetData) RemoveAllocation(allocationSize int) {
	d.unreserve(allocationSize)
	if d.allocationCount == 0 {
		panic("allocation count budget went negative")
	}

	d.allocationCount--
}

// ResizeAllocation moves an existing allocation's charge from oldSize to newSize. Growth is
// checked against the limit; on failure nothing changes.
func (d *currentBudgetData) ResizeAllocation(oldSize, newSize int) error {
	if newSize > oldSize {
		return d.reserve(newSize - oldSize)
	}

	d.unreserve(oldSize - newSize)
	return nil
}
