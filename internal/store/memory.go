package store

import (
	"sync"
	"time"

	"github.com/i474232898/marketscan/internal/market"
)

// MemoryStore is a concurrency-safe holder of the current dataset plus a
// bounded history of loads. A Save swaps the dataset pointer; requests that
// already hold the previous dataset keep using it.
type MemoryStore struct {
	mu sync.RWMutex

	current *market.Dataset
	history []market.LoadRecord

	// retention configuration
	maxHistory int           // max number of load records kept
	maxAge     time.Duration // optional max age for load records

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save installs ds as the current dataset and records the load.
func (s *MemoryStore) Save(source string, ds *market.Dataset) market.LoadRecord {
	rec := market.LoadRecord{
		Source:      source,
		GeneratedAt: ds.GeneratedAt(),
		LoadedAt:    s.now().UTC(),
		Markets:     len(ds.MarketsOf()),
		Warnings:    len(ds.Warnings()),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = ds
	s.history = append(s.history, rec)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.history) > s.maxHistory {
		over := len(s.history) - s.maxHistory
		s.history = s.history[over:]
	}

	// Enforce retention by age; the newest record always stays.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.history)-1; i++ {
			if !s.history[i].LoadedAt.Before(cutoff) {
				break
			}
		}
		s.history = s.history[i:]
	}
	return rec
}

// Current returns the dataset installed by the last Save.
func (s *MemoryStore) Current() (*market.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, market.ErrNoDataset
	}
	return s.current, nil
}

// History returns the retained load records, oldest first.
func (s *MemoryStore) History() []market.LoadRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]market.LoadRecord(nil), s.history...)
}
