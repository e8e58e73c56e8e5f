package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/marketscan/internal/common"
	"github.com/i474232898/marketscan/internal/httpclient"
	"github.com/i474232898/marketscan/internal/market"
)

// maxInFlight bounds concurrent requests against the price API.
const maxInFlight = 4

type marketsResponse struct {
	Markets     []string                     `json:"markets"`
	MarketsMeta map[string]market.MarketMeta `json:"markets_meta"`
}

type commoditiesResponse struct {
	Commodities []string                        `json:"commodities"`
	ItemsMeta   map[string]market.CommodityMeta `json:"items_meta"`
}

type pricesResponse struct {
	Prices []float64 `json:"prices"`
	Dates  []string  `json:"dates"`
}

// RemoteSource assembles a dataset from a price API exposing
// GET /markets, GET /commodities/{market} and GET /prices/{market}/{commodity}.
type RemoteSource struct {
	baseURL string
	http    *httpclient.Client
	logger  *log.Logger
}

// NewRemoteSource creates a source for the API at baseURL.
func NewRemoteSource(client *http.Client, baseURL string, logger *log.Logger) *RemoteSource {
	return &RemoteSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpclient.New(httpclient.Config{Name: "price-api", Client: client}),
		logger:  common.OrDiscard(logger),
	}
}

func (s *RemoteSource) Name() string { return "remote:" + s.baseURL }

// Fetch lists markets, then commodities per market, then every series.
// Failures below the market list are logged and the affected entries left
// out; the dataset still loads.
func (s *RemoteSource) Fetch(ctx context.Context) (*market.Dataset, error) {
	var ml marketsResponse
	if err := s.http.GetJSON(ctx, s.baseURL+"/markets", &ml); err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}

	commodities := make([]commoditiesResponse, len(ml.Markets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)
	for i, m := range ml.Markets {
		g.Go(func() error {
			u := s.baseURL + "/commodities/" + url.PathEscape(m)
			if err := s.http.GetJSON(gctx, u, &commodities[i]); err != nil {
				s.logger.Warn().Str("market", m).Err(err).Msg("remote source: commodities fetch failed")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	type pair struct {
		market, commodity string
		prices            pricesResponse
		ok                bool
	}
	var pairs []*pair
	for i, m := range ml.Markets {
		for _, c := range commodities[i].Commodities {
			pairs = append(pairs, &pair{market: m, commodity: c})
		}
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)
	for _, p := range pairs {
		g.Go(func() error {
			u := s.baseURL + "/prices/" + url.PathEscape(p.market) + "/" + url.PathEscape(p.commodity)
			if err := s.http.GetJSON(gctx, u, &p.prices); err != nil {
				s.logger.Warn().Str("market", p.market).Str("commodity", p.commodity).Err(err).
					Msg("remote source: prices fetch failed")
				return nil
			}
			p.ok = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var dates []string
	for _, p := range pairs {
		if p.ok && len(p.prices.Dates) > 0 {
			dates = p.prices.Dates
			break
		}
	}

	b := market.NewBuilder("", dates)
	for _, m := range ml.Markets {
		b.AddMarket(m)
		if meta, ok := ml.MarketsMeta[m]; ok {
			b.SetMarketMeta(m, meta)
		}
	}
	for i := range ml.Markets {
		for _, c := range commodities[i].Commodities {
			if meta, ok := commodities[i].ItemsMeta[c]; ok {
				b.AddCommodity(c, meta)
			}
		}
	}
	for _, p := range pairs {
		if !p.ok {
			continue
		}
		if !slices.Equal(p.prices.Dates, dates) {
			b.Warnf("series %s/%s uses a different date axis; dropped", p.market, p.commodity)
			continue
		}
		b.AddSeries(p.market, p.commodity, p.prices.Prices)
	}
	return b.Build()
}
