package memutils

import "math"

// Statistics summarizes a set of live managed buffers. AllocationBytes counts the bytes callers asked
// for, ReservedBytes counts the bytes charged against the heap size limit after rounding up to the
// allocator's granularity.
type Statistics struct {
	AllocationCount int
	AllocationBytes int
	ReservedBytes   int
}

func (s *Statistics) Clear() {
	s.AllocationCount = 0
	s.AllocationBytes = 0
	s.ReservedBytes = 0
}

func (s *Statistics) AddAllocation(size, reserved int) {
	s.AllocationCount++
	s.AllocationBytes += size
	s.ReservedBytes += reserved
}

type DetailedStatistics struct {
	Statistics
	SlackBytes        int
	AllocationSizeMin int
	AllocationSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.SlackBytes = 0
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
}

func (s *DetailedStatistics) AddAllocation(size, reserved int) {
	s.Statistics.AddAllocation(size, reserved)
	s.SlackBytes += reserved - size

	if size < s.AllocationSizeMin {
		s.AllocationSizeMin = size
	}

	if size > s.AllocationSizeMax {
		s.AllocationSizeMax = size
	}
}
