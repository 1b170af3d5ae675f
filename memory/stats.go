package memory

import (
	"fmt"
	"sort"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/linkage/memutils"
)

// liveBuffers returns every registered buffer in handle order
func (a *Allocator) liveBuffers() []*Buffer {
	buffers := make([]*Buffer, 0, a.buffers.Count())
	a.buffers.Iter(func(_ BufferHandle, buffer *Buffer) bool {
		buffers = append(buffers, buffer)
		return false
	})

	sort.Slice(buffers, func(i, j int) bool {
		return buffers[i].handle < buffers[j].handle
	})

	return buffers
}

// CalculateStatistics overwrites stats with a summary of every live buffer in the allocator
func (a *Allocator) CalculateStatistics(stats *memutils.DetailedStatistics) {
	stats.Clear()

	a.buffers.Iter(func(_ BufferHandle, buffer *Buffer) bool {
		stats.AddAllocation(len(buffer.data), buffer.reserved)
		return false
	})
}

func (b *Buffer) printParameters(json *jwriter.ObjectState) {
	json.Name("Handle").Int(int(b.handle))
	json.Name("Size").Int(len(b.data))
	json.Name("Reserved").Int(b.reserved)

	if b.userData != nil {
		json.Name("CustomData").String(fmt.Sprintf("%+v", b.userData))
	}

	if b.name != "" {
		json.Name("Name").String(b.name)
	}
}

// BuildStatsString returns a JSON document describing the allocator's totals and budget. When
// detailedMap is true, every live buffer is listed as well.
func (a *Allocator) BuildStatsString(detailedMap bool) string {
	var stats memutils.DetailedStatistics
	a.CalculateStatistics(&stats)

	writer := jwriter.NewWriter()
	obj := writer.Object()

	obj.Name("Flags").String(a.createFlags.String())
	obj.Name("Granularity").Int(a.granularity)

	total := obj.Name("Total").Object()
	total.Name("AllocationCount").Int(stats.AllocationCount)
	total.Name("AllocationBytes").Int(stats.AllocationBytes)
	total.Name("ReservedBytes").Int(stats.ReservedBytes)
	total.Name("SlackBytes").Int(stats.SlackBytes)
	if stats.AllocationCount > 0 {
		total.Name("AllocationSizeMin").Int(stats.AllocationSizeMin)
		total.Name("AllocationSizeMax").Int(stats.AllocationSizeMax)
	}
	total.End()

	budget := a.budget.snapshot()
	budgetObj := obj.Name("Budget").Object()
	budgetObj.Name("AllocationCount").Int(budget.AllocationCount)
	budgetObj.Name("AllocationBytes").Int(budget.AllocationBytes)
	budgetObj.Name("Limit").Int(budget.Limit)
	budgetObj.End()

	if detailedMap {
		buffers := obj.Name("Buffers").Array()
		for _, buffer := range a.liveBuffers() {
			bufferObj := buffers.Object()
			buffer.printParameters(&bufferObj)
			bufferObj.End()
		}
		buffers.End()
	}

	obj.End()

	return string(writer.Bytes())
}
