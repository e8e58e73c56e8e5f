package market

import (
	"fmt"
	"math"
)

// Dataset is the immutable view over a loaded price corpus. All accessors
// return copies, so a Dataset can be shared between concurrent requests.
type Dataset struct {
	generatedAt string
	markets     []string
	marketsMeta map[string]MarketMeta
	itemsMeta   map[string]CommodityMeta
	itemOrder   []string
	dates       []string
	prices      map[string]*marketPrices
	warnings    []string
}

type marketPrices struct {
	order  []string
	series map[string]Series
}

// Builder assembles a Dataset and enforces its invariants. Entries that
// break an invariant are dropped and recorded as warnings; only an empty
// date axis or an empty market list fail Build.
type Builder struct {
	ds *Dataset
}

// NewBuilder starts a dataset over the given date axis.
func NewBuilder(generatedAt string, dates []string) *Builder {
	return &Builder{ds: &Dataset{
		generatedAt: generatedAt,
		dates:       append([]string(nil), dates...),
		marketsMeta: make(map[string]MarketMeta),
		itemsMeta:   make(map[string]CommodityMeta),
		prices:      make(map[string]*marketPrices),
	}}
}

// Warnf records a non-fatal problem.
func (b *Builder) Warnf(format string, args ...any) {
	b.ds.warnings = append(b.ds.warnings, fmt.Sprintf(format, args...))
}

// AddMarket appends a market to the market list. Duplicates are ignored.
func (b *Builder) AddMarket(id string) {
	if id == "" {
		b.Warnf("empty market id dropped")
		return
	}
	if _, ok := b.ds.prices[id]; ok {
		b.Warnf("duplicate market %q dropped", id)
		return
	}
	b.ds.markets = append(b.ds.markets, id)
	b.ds.prices[id] = &marketPrices{series: make(map[string]Series)}
}

// SetMarketMeta attaches metadata to a market. Metadata for markets that are
// not (yet) listed is kept; it is harmless and only read through listed ids.
func (b *Builder) SetMarketMeta(id string, meta MarketMeta) {
	b.ds.marketsMeta[id] = meta
}

// AddCommodity registers commodity metadata, keeping first-seen order.
func (b *Builder) AddCommodity(id string, meta CommodityMeta) {
	if _, ok := b.ds.itemsMeta[id]; !ok {
		b.ds.itemOrder = append(b.ds.itemOrder, id)
	}
	b.ds.itemsMeta[id] = meta
}

// AddSeries records the series of one market/commodity pair. The series is
// dropped when the market is not listed, when its length differs from the
// date axis or when it holds non-finite values.
func (b *Builder) AddSeries(market, commodity string, s []float64) bool {
	mp, ok := b.ds.prices[market]
	if !ok {
		b.Warnf("prices for unlisted market %q dropped", market)
		return false
	}
	if len(s) != len(b.ds.dates) {
		b.Warnf("series %s/%s has %d points, want %d; dropped", market, commodity, len(s), len(b.ds.dates))
		return false
	}
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			b.Warnf("series %s/%s has a non-finite value at %d; dropped", market, commodity, i)
			return false
		}
	}
	if _, dup := mp.series[commodity]; !dup {
		mp.order = append(mp.order, commodity)
	}
	mp.series[commodity] = append(Series(nil), s...)
	return true
}

// Build validates the structural invariants and returns the dataset.
func (b *Builder) Build() (*Dataset, error) {
	if len(b.ds.dates) == 0 {
		return nil, &MalformedDatasetError{Reason: "date sequence is empty"}
	}
	if len(b.ds.markets) == 0 {
		return nil, &MalformedDatasetError{Reason: "market list is empty"}
	}
	ds := b.ds
	b.ds = nil
	return ds, nil
}

// GeneratedAt returns the generation label of the dataset, if any.
func (d *Dataset) GeneratedAt() string { return d.generatedAt }

// Warnings lists entries that were dropped while loading.
func (d *Dataset) Warnings() []string { return append([]string(nil), d.warnings...) }

// Dates returns the shared date axis.
func (d *Dataset) Dates() []string { return append([]string(nil), d.dates...) }

// MarketsOf returns the market ids in list order.
func (d *Dataset) MarketsOf() []string { return append([]string(nil), d.markets...) }

// HasMarket reports whether id is a listed market.
func (d *Dataset) HasMarket(id string) bool {
	_, ok := d.prices[id]
	return ok
}

// CommoditiesOf returns the commodities with a recorded series for market,
// in recording order. Unknown markets yield an empty slice.
func (d *Dataset) CommoditiesOf(market string) []string {
	mp, ok := d.prices[market]
	if !ok {
		return []string{}
	}
	return append([]string{}, mp.order...)
}

// SeriesOf returns a copy of the series for the pair.
func (d *Dataset) SeriesOf(market, commodity string) (Series, bool) {
	mp, ok := d.prices[market]
	if !ok {
		return nil, false
	}
	s, ok := mp.series[commodity]
	if !ok {
		return nil, false
	}
	return append(Series(nil), s...), true
}

// KnownCommodities returns every commodity the dataset knows of: metadata
// keys first, then commodities that only appear in price data, in first-seen
// order.
func (d *Dataset) KnownCommodities() []string {
	seen := make(map[string]bool, len(d.itemOrder))
	out := make([]string, 0, len(d.itemOrder))
	for _, c := range d.itemOrder {
		seen[c] = true
		out = append(out, c)
	}
	for _, m := range d.markets {
		for _, c := range d.prices[m].order {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// MarketMetaOf returns the metadata of a market (zero value when absent).
func (d *Dataset) MarketMetaOf(market string) MarketMeta {
	return d.marketsMeta[market]
}

// CommodityMetaOf returns the metadata of a commodity. Unknown commodities
// degrade to a zero value whose UnitOf is DefaultUnit.
func (d *Dataset) CommodityMetaOf(commodity string) CommodityMeta {
	return d.itemsMeta[commodity]
}

// MarketsMeta returns the metadata of the listed markets.
func (d *Dataset) MarketsMeta() map[string]MarketMeta {
	out := make(map[string]MarketMeta, len(d.markets))
	for _, m := range d.markets {
		if meta, ok := d.marketsMeta[m]; ok {
			out[m] = meta
		}
	}
	return out
}

// ItemsMeta returns the metadata of the given commodities, defaulting the
// unit of unknown ones.
func (d *Dataset) ItemsMeta(commodities []string) map[string]CommodityMeta {
	out := make(map[string]CommodityMeta, len(commodities))
	for _, c := range commodities {
		meta := d.itemsMeta[c]
		meta.Unit = meta.UnitOf()
		out[c] = meta
	}
	return out
}

// Raw renders the dataset back into its file shape. Object members keep
// the dataset's enumeration order, so Load(json.Marshal(d.Raw())) resolves
// and ranks like d.
func (d *Dataset) Raw() RawDataset {
	raw := RawDataset{
		GeneratedAt: d.generatedAt,
		Markets:     d.MarketsOf(),
		MarketsMeta: NewObject[MarketMeta](),
		ItemsMeta:   NewObject[CommodityMeta](),
		Dates:       d.Dates(),
		Data:        NewObject[Object[[]float64]](),
	}
	for _, m := range d.markets {
		if meta, ok := d.marketsMeta[m]; ok {
			raw.MarketsMeta.Set(m, meta)
		}
	}
	for _, c := range d.itemOrder {
		raw.ItemsMeta.Set(c, d.itemsMeta[c])
	}
	for _, m := range d.markets {
		mp := d.prices[m]
		row := NewObject[[]float64]()
		for _, c := range mp.order {
			row.Set(c, append([]float64(nil), mp.series[c]...))
		}
		raw.Data.Set(m, row)
	}
	return raw
}
