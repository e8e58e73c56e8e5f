// Package providers holds the dataset sources: a JSON file, the built-in
// sample and a remote price API.
package providers

import (
	"context"

	"github.com/i474232898/marketscan/internal/market"
)

// FileSource reads a dataset file on every Fetch, so edits are picked up by
// the reload scheduler.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string { return "file:" + s.path }

func (s *FileSource) Fetch(ctx context.Context) (*market.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return market.LoadFile(s.path)
}

// SampleSource serves the built-in sample dataset.
type SampleSource struct{}

func (SampleSource) Name() string { return "sample" }

func (SampleSource) Fetch(context.Context) (*market.Dataset, error) {
	return market.Sample(), nil
}
