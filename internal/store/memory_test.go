package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/marketscan/internal/market"
)

func TestCurrentBeforeSave(t *testing.T) {
	_, err := NewMemoryStore(0, 0).Current()
	assert.True(t, errors.Is(err, market.ErrNoDataset))
}

func TestSaveSwapsDataset(t *testing.T) {
	s := NewMemoryStore(0, 0)
	first := market.Sample()
	second := market.Sample()

	rec := s.Save("sample", first)
	assert.Equal(t, "sample", rec.Source)
	assert.Equal(t, 3, rec.Markets)
	assert.Equal(t, "2025-07-30", rec.GeneratedAt)

	held, err := s.Current()
	require.NoError(t, err)

	s.Save("sample", second)
	now, err := s.Current()
	require.NoError(t, err)

	assert.Same(t, first, held)
	assert.Same(t, second, now)
	assert.Len(t, s.History(), 2)
}

func TestHistoryRetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	for i := 0; i < 5; i++ {
		s.Save("sample", market.Sample())
	}
	assert.Len(t, s.History(), 2)
}

func TestHistoryRetentionByAge(t *testing.T) {
	s := NewMemoryStore(0, time.Hour)
	clock := time.Date(2025, 7, 30, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	s.Save("a", market.Sample())
	clock = clock.Add(2 * time.Hour)
	s.Save("b", market.Sample())

	h := s.History()
	require.Len(t, h, 1)
	assert.Equal(t, "b", h[0].Source)
}

func TestConcurrentAccess(t *testing.T) {
	s := NewMemoryStore(10, 0)
	s.Save("sample", market.Sample())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Save("sample", market.Sample())
		}()
		go func() {
			defer wg.Done()
			ds, err := s.Current()
			assert.NoError(t, err)
			assert.NotEmpty(t, ds.MarketsOf())
		}()
	}
	wg.Wait()
}
