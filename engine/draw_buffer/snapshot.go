package draw_buffer

import "sync"

// Snapshot is a reader's handle on an instance's draw output. It shares the instance's guard,
// so a read waits for at most one in-flight tick and a tick waits for at most one read.
type Snapshot struct {
	mu     sync.Locker
	source func() View
}

// NewSnapshot creates a Snapshot reading source under mu.
//
// Parameters:
//   - mu: the guard held by the writer for a whole tick
//   - source: returns the current view; only called with mu held
//
// Returns:
//   - *Snapshot: the snapshot handle
func NewSnapshot(mu sync.Locker, source func() View) *Snapshot {
	return &Snapshot{mu: mu, source: source}
}

// Read calls fn with the current view while holding the guard. The view must not be retained
// after fn returns. Keep fn short: ticks on the instance wait for it.
func (s *Snapshot) Read(fn func(View)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.source())
}

// Copy returns a deep copy of the current output that outlives the next tick.
func (s *Snapshot) Copy() DrawBuffer {
	var out DrawBuffer
	s.Read(func(v View) {
		out = v.Clone()
	})
	return out
}
