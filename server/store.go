package server

import (
	"sync"

	"github.com/emotionflow/emotion-timeline/orchestrator"
)

// store keeps the most recent results; the oldest is evicted first.
type store struct {
	mu    sync.Mutex
	max   int
	order []string
	items map[string]*orchestrator.Result
}

func newStore(max int) *store {
	return &store{max: max, items: map[string]*orchestrator.Result{}}
}

func (s *store) put(r *orchestrator.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[r.SessionID]; !ok {
		s.order = append(s.order, r.SessionID)
	}
	s.items[r.SessionID] = r
	for len(s.order) > s.max {
		delete(s.items, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *store) get(id string) (*orchestrator.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	return r, ok
}

func (s *store) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
