package utils

import (
	"sync"
)

// OptionalRWMutex guards a resource that expects a single logical owner. Callers use TryLock
// rather than Lock so that overlapping use is reported instead of serialized. When UseMutex is
// false every method no-ops and TryLock always succeeds.
type OptionalRWMutex struct {
	Mutex    sync.RWMutex
	UseMutex bool
}

func (m *OptionalRWMutex) TryLock() bool {
	if m.UseMutex {
		return m.Mutex.TryLock()
	}

	return true
}

func (m *OptionalRWMutex) TryRLock() bool {
	if m.UseMutex {
		return m.Mutex.TryRLock()
	}

	return true
}

func (m *OptionalRWMutex) Unlock() {
	if m.UseMutex {
		m.Mutex.Unlock()
	}
}

func (m *OptionalRWMutex) RUnlock() {
	if m.UseMutex {
		m.Mutex.RUnlock()
	}
}
