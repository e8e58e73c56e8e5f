package market

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDataset matches every *MalformedDatasetError.
	ErrMalformedDataset = errors.New("malformed dataset")

	// ErrUnknownMarket is returned when a market id is not in the dataset.
	ErrUnknownMarket = errors.New("unknown market")

	// ErrSeriesUnavailable is returned when a market/commodity pair has no
	// recorded series.
	ErrSeriesUnavailable = errors.New("series unavailable")

	// ErrNoDataset is returned before any dataset has been loaded.
	ErrNoDataset = errors.New("no dataset loaded")
)

// MalformedDatasetError reports a structural violation that prevents the
// dataset from loading at all.
type MalformedDatasetError struct {
	Reason string
	Err    error
}

func (e *MalformedDatasetError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed dataset: %s: %v", e.Reason, e.Err)
	}
	return "malformed dataset: " + e.Reason
}

func (e *MalformedDatasetError) Unwrap() error { return e.Err }

func (e *MalformedDatasetError) Is(target error) bool {
	return target == ErrMalformedDataset
}

// SeriesError wraps ErrSeriesUnavailable with the pair that was asked for.
func SeriesError(market, commodity string) error {
	return fmt.Errorf("%w: %s/%s", ErrSeriesUnavailable, market, commodity)
}
