package domain

import "sync"

// IDAllocator hands out task IDs for a caller that builds task lists.
// IDs increase monotonically from 0 and are never reused, even after the
// task that held one is removed.
type IDAllocator struct {
	mu   sync.Mutex
	next TaskID
}

// NewIDAllocator creates an allocator starting at 0.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next returns a fresh ID.
func (a *IDAllocator) Next() TaskID {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.next
	a.next++
	return id
}

// Reserve marks an explicitly chosen ID as taken so Next never returns it
// or anything below it.
func (a *IDAllocator) Reserve(id TaskID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id >= a.next {
		a.next = id + 1
	}
}

