// Package featured ranks every market/commodity pair of a dataset by the
// size of its price move.
package featured

import (
	"math"
	"sort"
	"strings"

	"github.com/i474232898/marketscan/internal/market"
	"github.com/i474232898/marketscan/internal/stats"
)

// Item is one ranked pair.
type Item struct {
	Market        string               `json:"market"`
	Commodity     string               `json:"commodity"`
	Latest        float64              `json:"latest_price"`
	ChangePercent float64              `json:"change_percent"`
	MarketMeta    market.MarketMeta    `json:"market_meta"`
	CommodityMeta market.CommodityMeta `json:"item_meta"`
}

// Rank returns at most limit items sorted by descending absolute percent
// change. Ties keep dataset enumeration order (markets in list order,
// commodities in recording order). When city is non-empty only markets whose
// city equals it, ignoring case, are considered. Pairs whose values cannot be
// computed are skipped; Rank never fails.
func Rank(ds *market.Dataset, limit int, city string) []Item {
	if ds == nil || limit <= 0 {
		return []Item{}
	}

	var items []Item
	for _, m := range ds.MarketsOf() {
		meta := ds.MarketMetaOf(m)
		if city != "" && !strings.EqualFold(meta.City, city) {
			continue
		}
		for _, c := range ds.CommoditiesOf(m) {
			if item, ok := build(ds, m, c, meta); ok {
				items = append(items, item)
			}
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return math.Abs(items[i].ChangePercent) > math.Abs(items[j].ChangePercent)
	})

	if len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		return []Item{}
	}
	return items
}

func build(ds *market.Dataset, m, c string, meta market.MarketMeta) (Item, bool) {
	series, ok := ds.SeriesOf(m, c)
	if !ok {
		return Item{}, false
	}
	latest, ok := stats.Latest(series)
	if !ok {
		return Item{}, false
	}
	change := stats.PercentChange(series)
	if math.IsNaN(change) || math.IsInf(change, 0) || math.IsNaN(latest) || math.IsInf(latest, 0) {
		return Item{}, false
	}
	cm := ds.CommodityMetaOf(c)
	cm.Unit = cm.UnitOf()
	return Item{
		Market:        m,
		Commodity:     c,
		Latest:        latest,
		ChangePercent: change,
		MarketMeta:    meta,
		CommodityMeta: cm,
	}, true
}
