package notify

import (
	"sync"
	"time"
)

// MemoryCooldownStore is the in-process CooldownStore used when no
// shared external store is configured.
type MemoryCooldownStore struct {
	mu   sync.Mutex
	sent map[CooldownKey]time.Time
}

func NewMemoryCooldownStore() *MemoryCooldownStore {
	return &MemoryCooldownStore{
		sent: make(map[CooldownKey]time.Time),
	}
}

func (s *MemoryCooldownStore) LastSent(key CooldownKey) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.sent[key]
	return t, ok, nil
}

func (s *MemoryCooldownStore) CompareAndSwap(key CooldownKey, prev, next time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sent[key]
	if prev.IsZero() {
		if ok {
			return false, nil
		}
	} else if !cur.Equal(prev) {
		return false, nil
	}
	s.sent[key] = next
	return true, nil
}

// Clear resets all cooldown state.
func (s *MemoryCooldownStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = make(map[CooldownKey]time.Time)
}
