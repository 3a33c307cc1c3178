package spatial

import (
	"sync"
	"time"
)

// Simulator is an Enumerator fed by hand, standing in for the platform in
// development and tests. The HTTP surface pushes frames into it; each frame
// stays current until replaced or cleared. A cleared simulator reports
// ErrUnavailable, mimicking a platform without the enumeration capability.
type Simulator struct {
	mu        sync.Mutex
	frame     []SourceEntry
	available bool
}

// NewSimulator returns a simulator with no frame; it reports ErrUnavailable
// until the first SetFrame.
func NewSimulator() *Simulator {
	return &Simulator{}
}

// SetFrame replaces the current frame.
func (s *Simulator) SetFrame(entries []SourceEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = make([]SourceEntry, len(entries))
	copy(s.frame, entries)
	s.available = true
}

// ClearFrame makes the simulator report ErrUnavailable again.
func (s *Simulator) ClearFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = nil
	s.available = false
}

// Enumerate implements Enumerator.
func (s *Simulator) Enumerate(now time.Time) ([]SourceEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available {
		return nil, ErrUnavailable
	}
	out := make([]SourceEntry, len(s.frame))
	copy(out, s.frame)
	for i := range out {
		if out[i].Snapshot.Time.IsZero() {
			out[i].Snapshot.Time = now
		}
	}
	return out, nil
}
