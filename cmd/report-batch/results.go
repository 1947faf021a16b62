package main

import (
	"slices"
	"sync"

	"github.com/joseph-ayodele/sugar-reports/internal/entity"
)

// resultSet keeps the latest result per document, in first-seen order.
type resultSet struct {
	mu    sync.Mutex
	index map[string]int
	items []entity.DocumentResult
}

func newResultSet(initial []entity.DocumentResult) *resultSet {
	s := &resultSet{index: make(map[string]int, len(initial))}
	for _, r := range initial {
		s.put(r)
	}
	return s
}

// put records r and returns a snapshot of all results.
func (s *resultSet) put(r entity.DocumentResult) []entity.DocumentResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[r.Document]; ok {
		s.items[i] = r
	} else {
		s.index[r.Document] = len(s.items)
		s.items = append(s.items, r)
	}
	return slices.Clone(s.items)
}
