package review

import "sync"

// InFlight tracks which posts have a status-changing request outstanding.
// Markers are per post, so actions on different posts never wait on each other.
type InFlight struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewInFlight creates an empty tracker
func NewInFlight() *InFlight {
	return &InFlight{ids: make(map[string]struct{})}
}

// TryAcquire marks the post as busy. It returns false if it already was.
func (f *InFlight) TryAcquire(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.ids[id]; busy {
		return false
	}
	f.ids[id] = struct{}{}
	return true
}

// Release clears the busy marker of the post
func (f *InFlight) Release(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ids, id)
}

// Busy reports whether the post has a request outstanding
func (f *InFlight) Busy(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, busy := f.ids[id]
	return busy
}
