package cart

import "sync"

// Store holds one draft per session token. Drafts are ephemeral and live
// for the session only; there is no persistence behind them.
type Store struct {
	mu     sync.RWMutex
	drafts map[string]*Draft
}

func NewStore() *Store {
	return &Store{drafts: make(map[string]*Draft)}
}

// Get returns the session's draft, creating an empty one on first use.
func (s *Store) Get(session string) *Draft {
	s.mu.RLock()
	d, ok := s.drafts[session]
	s.mu.RUnlock()
	if ok {
		return d
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.drafts[session]; ok {
		return d
	}
	d = NewDraft()
	s.drafts[session] = d
	return d
}

// Drop discards a session's draft.
func (s *Store) Drop(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, session)
}
