// Package engine wires the dataset, query resolution, statistics, ranking
// and prediction into the operations the API and CLI expose.
package engine

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"github.com/i474232898/marketscan/internal/common"
	"github.com/i474232898/marketscan/internal/featured"
	"github.com/i474232898/marketscan/internal/market"
	"github.com/i474232898/marketscan/internal/prediction"
	"github.com/i474232898/marketscan/internal/query"
	"github.com/i474232898/marketscan/internal/stats"
)

// Service orchestrates the dataset store, its source and the predictor.
type Service struct {
	store     market.Store
	source    market.Source
	resolver  query.Resolver
	predictor *prediction.Resolver
	logger    *log.Logger
}

// NewService creates a new Service. A nil predictor behaves like an
// unconfigured one.
func NewService(store market.Store, source market.Source, resolver query.Resolver, predictor *prediction.Resolver, logger *log.Logger) *Service {
	if predictor == nil {
		predictor = prediction.NewResolver(nil)
	}
	return &Service{
		store:     store,
		source:    source,
		resolver:  resolver,
		predictor: predictor,
		logger:    common.OrDiscard(logger),
	}
}

// Reload fetches the dataset from the source and installs it. On failure the
// last good dataset stays in place.
func (s *Service) Reload(ctx context.Context) error {
	ds, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.Error().Str("source", s.source.Name()).Err(err).
			Msg("dataset reload failed; keeping last good dataset if any")
		return fmt.Errorf("reload from %s: %w", s.source.Name(), err)
	}
	for _, w := range ds.Warnings() {
		s.logger.Warn().Str("source", s.source.Name()).Msg("dataset: " + w)
	}
	rec := s.store.Save(s.source.Name(), ds)
	s.logger.Info().
		Str("source", rec.Source).
		Str("generated_at", rec.GeneratedAt).
		Int("markets", rec.Markets).
		Int("warnings", rec.Warnings).
		Msg("dataset loaded")
	return nil
}

// Dataset returns the current dataset.
func (s *Service) Dataset() (*market.Dataset, error) {
	return s.store.Current()
}

// History returns the retained dataset load records.
func (s *Service) History() []market.LoadRecord {
	return s.store.History()
}

// Predictor returns the prediction resolver.
func (s *Service) Predictor() *prediction.Resolver {
	return s.predictor
}

// Resolve resolves free text against the current dataset's names.
func (s *Service) Resolve(text string) (query.Resolved, error) {
	ds, err := s.store.Current()
	if err != nil {
		return query.Resolved{}, err
	}
	r := s.resolver.Resolve(text, ds.MarketsOf(), ds.KnownCommodities())
	return r, r.Err()
}

// PriceView is a series with its derived values.
type PriceView struct {
	Market        string    `json:"market"`
	Commodity     string    `json:"commodity"`
	Unit          string    `json:"unit"`
	Prices        []float64 `json:"prices"`
	Dates         []string  `json:"dates"`
	Latest        *float64  `json:"latest_price,omitempty"`
	ChangePercent float64   `json:"change_percent"`
}

// Prices returns the series of a market/commodity pair.
func (s *Service) Prices(marketID, commodity string) (PriceView, error) {
	ds, err := s.store.Current()
	if err != nil {
		return PriceView{}, err
	}
	return priceView(ds, marketID, commodity)
}

func priceView(ds *market.Dataset, marketID, commodity string) (PriceView, error) {
	if !ds.HasMarket(marketID) {
		return PriceView{}, fmt.Errorf("%w: %s", market.ErrUnknownMarket, marketID)
	}
	series, ok := ds.SeriesOf(marketID, commodity)
	if !ok {
		return PriceView{}, market.SeriesError(marketID, commodity)
	}

	sum := stats.Summarize(series)
	v := PriceView{
		Market:        marketID,
		Commodity:     commodity,
		Unit:          ds.CommodityMetaOf(commodity).UnitOf(),
		Prices:        series,
		Dates:         ds.Dates(),
		ChangePercent: sum.ChangePercent,
	}
	if sum.HasLatest {
		latest := sum.Latest
		v.Latest = &latest
	}
	return v, nil
}

// Featured ranks the current dataset.
func (s *Service) Featured(limit int, city string) ([]featured.Item, error) {
	ds, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	return featured.Rank(ds, limit, city), nil
}

// Predict asks the predictor for a forecast. It never fails.
func (s *Service) Predict(ctx context.Context, req prediction.Request) prediction.Result {
	return s.predictor.Predict(ctx, req)
}

// CheckResult is the outcome of one "check price" action.
type CheckResult struct {
	Session    *Session          `json:"session"`
	Prices     PriceView         `json:"prices"`
	Prediction prediction.Result `json:"prediction"`
}

// Check runs one action: resolve the query (unless the session already
// names a selection), read the series, derive its values and ask for a
// forecast. The steps run in order; the forecast embeds the series.
func (s *Service) Check(ctx context.Context, sess *Session) (*CheckResult, error) {
	ds, err := s.store.Current()
	if err != nil {
		return nil, err
	}

	if sess.Market == "" || sess.Commodity == "" {
		r := s.resolver.Resolve(sess.Query, ds.MarketsOf(), ds.KnownCommodities())
		if err := r.Err(); err != nil {
			return nil, err
		}
		sess.Market, sess.Commodity = r.Market, r.Commodity
	}

	view, err := priceView(ds, sess.Market, sess.Commodity)
	if err != nil {
		return nil, err
	}

	res := s.predictor.Predict(ctx, prediction.Request{
		Market:    view.Market,
		Commodity: view.Commodity,
		Prices:    view.Prices,
		Dates:     view.Dates,
	})

	s.logger.Info().
		Str("session", sess.ID).
		Str("market", sess.Market).
		Str("commodity", sess.Commodity).
		Str("provenance", string(res.Provenance)).
		Msg("price check completed")

	return &CheckResult{Session: sess, Prices: view, Prediction: res}, nil
}
