package market

import (
	"context"
	"time"
)

// Source abstracts where a dataset comes from (a file, the built-in sample,
// a remote price API).
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*Dataset, error)
}

// LoadRecord describes one successful dataset load.
type LoadRecord struct {
	Source      string    `json:"source"`
	GeneratedAt string    `json:"generated_at"`
	LoadedAt    time.Time `json:"loaded_at"`
	Markets     int       `json:"markets"`
	Warnings    int       `json:"warnings"`
}

// Store is the contract the in-memory dataset holder satisfies. Current
// returns ErrNoDataset until the first Save.
type Store interface {
	Save(source string, ds *Dataset) LoadRecord
	Current() (*Dataset, error)
	History() []LoadRecord
}
