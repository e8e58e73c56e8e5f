package market

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSample(t *testing.T) {
	ds := Sample()

	assert.Equal(t, []string{"Merkato", "Shola", "Bole"}, ds.MarketsOf())
	assert.Equal(t, []string{"onion", "teff"}, ds.CommoditiesOf("Merkato"))
	assert.Equal(t, []string{"onion"}, ds.CommoditiesOf("Bole"))
	assert.Len(t, ds.Dates(), 7)
	assert.Empty(t, ds.Warnings())

	s, ok := ds.SeriesOf("Merkato", "teff")
	require.True(t, ok)
	assert.Equal(t, Series{120, 118, 119, 121, 122, 122, 123}, s)

	assert.Equal(t, "Addis Ababa", ds.MarketMetaOf("Shola").City)
	assert.Equal(t, "grain", ds.CommodityMetaOf("teff").Category)
}

func TestLoadKeepsObjectOrder(t *testing.T) {
	raw := `{
	  "markets": ["B", "A"],
	  "items_meta": {"zucchini": {}, "apple": {"unit": "crate"}},
	  "dates": ["2025-01-01", "2025-01-02"],
	  "data": {"A": {"zucchini": [1, 2], "apple": [3, 4]}, "B": {"kale": [1, 1], "apple": [2, 2]}}
	}`
	ds, err := Load([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A"}, ds.MarketsOf())
	assert.Equal(t, []string{"zucchini", "apple"}, ds.CommoditiesOf("A"))
	assert.Equal(t, []string{"kale", "apple"}, ds.CommoditiesOf("B"))
	assert.Equal(t, []string{"zucchini", "apple", "kale"}, ds.KnownCommodities())
}

func TestRawKeepsObjectOrder(t *testing.T) {
	raw := `{
	  "markets": ["B", "A"],
	  "markets_meta": {"B": {"city": "Adama"}, "A": {"city": "Bahir Dar"}},
	  "items_meta": {"zucchini": {}, "apple": {"unit": "crate"}},
	  "dates": ["2025-01-01", "2025-01-02"],
	  "data": {"A": {"zucchini": [1, 2], "apple": [3, 4]}, "B": {"kale": [1, 1], "apple": [2, 2]}}
	}`
	ds, err := Load([]byte(raw))
	require.NoError(t, err)

	again, err := Load(mustMarshalRaw(t, ds))
	require.NoError(t, err)

	assert.Equal(t, ds.MarketsOf(), again.MarketsOf())
	assert.Equal(t, []string{"zucchini", "apple"}, again.CommoditiesOf("A"))
	assert.Equal(t, []string{"kale", "apple"}, again.CommoditiesOf("B"))
	assert.Equal(t, []string{"zucchini", "apple", "kale"}, again.KnownCommodities())
	assert.Equal(t, "crate", again.CommodityMetaOf("apple").Unit)

	b, err := json.Marshal(ds.Raw().Data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"B": {"kale": [1, 1], "apple": [2, 2]}, "A": {"zucchini": [1, 2], "apple": [3, 4]}}`, string(b))
	assert.Regexp(t, `^\{"B":\{"kale":\[1,1\],"apple"`, string(b))
}

func TestObjectSetKeepsFirstPosition(t *testing.T) {
	var o Object[int]
	o.Set("b", 1)
	o.Set("a", 2)
	o.Set("b", 3)

	b, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, `{"b":3,"a":2}`, string(b))

	v, ok := o.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	empty, err := json.Marshal(NewObject[string]())
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))
}

func TestLoadDropsBadEntries(t *testing.T) {
	raw := `{
	  "markets": ["Merkato", "Merkato", 7],
	  "dates": ["2025-07-24", "2025-07-25", "2025-07-26"],
	  "data": {
	    "Merkato": {"onion": [1, 2, 3], "teff": [1, 2], "garlic": [1, "x", 3], "salt": "n/a"},
	    "Ghost": {"onion": [1, 2, 3]}
	  }
	}`
	ds, err := Load([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, []string{"Merkato"}, ds.MarketsOf())
	assert.Equal(t, []string{"onion"}, ds.CommoditiesOf("Merkato"))
	_, ok := ds.SeriesOf("Merkato", "teff")
	assert.False(t, ok)
	assert.False(t, ds.HasMarket("Ghost"))

	// duplicate market, non-string market, short series, non-numeric
	// series, non-array series, unlisted market
	assert.Len(t, ds.Warnings(), 6)
}

func TestLoadFatal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "invalid json", raw: `{"markets": [`},
		{name: "not an object", raw: `[1, 2]`},
		{name: "no dates", raw: `{"markets": ["A"], "dates": [], "data": {}}`},
		{name: "missing dates", raw: `{"markets": ["A"]}`},
		{name: "no markets", raw: `{"markets": [], "dates": ["2025-01-01"]}`},
		{name: "dates not an array", raw: `{"markets": ["A"], "dates": "2025-01-01"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedDataset))

			var mde *MalformedDatasetError
			assert.True(t, errors.As(err, &mde))
		})
	}
}

func TestCommoditiesOfUnknownMarket(t *testing.T) {
	ds := Sample()
	got := ds.CommoditiesOf("Nowhere")
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, ok := ds.SeriesOf("Nowhere", "onion")
	assert.False(t, ok)
}

func TestUnknownCommodityDefaultsUnit(t *testing.T) {
	raw := `{"markets": ["A"], "dates": ["2025-01-01"], "data": {"A": {"coffee": [10]}}}`
	ds, err := Load([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, DefaultUnit, ds.CommodityMetaOf("coffee").UnitOf())
	assert.Equal(t, DefaultUnit, ds.ItemsMeta([]string{"coffee"})["coffee"].Unit)
}

func TestSeriesOfReturnsCopy(t *testing.T) {
	ds := Sample()
	s, _ := ds.SeriesOf("Shola", "onion")
	s[0] = 999

	again, _ := ds.SeriesOf("Shola", "onion")
	assert.Equal(t, 24.0, again[0])
}

func TestMarketMetaExtra(t *testing.T) {
	raw := `{"markets": ["A"], "markets_meta": {"A": {"city": "Adama", "region": "Oromia"}}, "dates": ["2025-01-01"]}`
	ds, err := Load([]byte(raw))
	require.NoError(t, err)

	meta := ds.MarketMetaOf("A")
	assert.Equal(t, "Adama", meta.City)
	assert.Equal(t, "Oromia", meta.Extra["region"])

	again, err := Load(mustMarshalRaw(t, ds))
	require.NoError(t, err)
	assert.Equal(t, "Oromia", again.MarketMetaOf("A").Extra["region"])
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o600))

	ds, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-30", ds.GeneratedAt())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func mustMarshalRaw(t *testing.T, ds *Dataset) []byte {
	t.Helper()
	b, err := json.Marshal(ds.Raw())
	require.NoError(t, err)
	return b
}
