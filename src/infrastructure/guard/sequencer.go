package guard

import "sync"

// UpdateSequencer serializes updates to the same entity id so concurrent
// callers cannot race a read-modify-write on one record. Updates to different
// entity ids proceed fully in parallel.
type UpdateSequencer struct {
	mu      sync.Mutex
	entries map[string]*sequencerEntry
}

type sequencerEntry struct {
	mu   sync.Mutex
	refs int
}

func NewUpdateSequencer() *UpdateSequencer {
	return &UpdateSequencer{
		entries: make(map[string]*sequencerEntry),
	}
}

// Enqueue runs fn once the previous update to entityID (if any) has finished.
// It returns fn's error unchanged.
func (s *UpdateSequencer) Enqueue(entityID string, fn func() error) error {
	entry := s.acquire(entityID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		s.release(entityID, entry)
	}()
	return fn()
}

func (s *UpdateSequencer) acquire(entityID string) *sequencerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[entityID]
	if !ok {
		entry = &sequencerEntry{}
		s.entries[entityID] = entry
	}
	entry.refs++
	return entry
}

func (s *UpdateSequencer) release(entityID string, entry *sequencerEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(s.entries, entityID)
	}
}
