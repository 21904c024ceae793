package wisp

import "sync"

// idAllocator hands out u32 notification ids that saturate at the maximum
// instead of wrapping, matching next_id.saturating_add(1) in the source
// this engine is modeled on. Id 0 is reserved (it means "no replaces_id" on
// the wire) so the allocator starts at 1.
type idAllocator struct {
	mu        sync.Mutex
	next      uint32
	saturated bool
}

func newIDAllocator() *idAllocator {
	return &idAllocator{next: 1}
}

const maxUint32 = ^uint32(0)

// alloc returns the next id and advances the counter. ok is false once the
// space is exhausted (next has saturated at maxUint32 and that id has
// already been handed out once).
func (a *idAllocator) alloc() (id uint32, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.next == maxUint32 && a.saturated {
		return 0, false
	}

	id = a.next
	if a.next == maxUint32 {
		a.saturated = true
	} else {
		a.next++
	}
	return id, true
}
