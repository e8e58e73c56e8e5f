package market

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/buger/jsonparser"
)

// DateLayout is the layout of the dataset date labels.
const DateLayout = "2006-01-02"

// Load parses a dataset in its file shape. Object key order of "data" and
// "items_meta" is preserved because lookups and rankings enumerate in that
// order. Offending entries are dropped with a warning (see
// Dataset.Warnings); only an unreadable document, an empty date axis or an
// empty market list fail the load.
func Load(raw []byte) (*Dataset, error) {
	trimmed := bytes.TrimSpace(raw)
	if !json.Valid(trimmed) {
		return nil, &MalformedDatasetError{Reason: "invalid JSON"}
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &MalformedDatasetError{Reason: "top level is not an object"}
	}

	generatedAt, _ := jsonparser.GetString(trimmed, "generated_at")

	dates, skipped, err := stringArray(trimmed, "dates")
	if err != nil {
		return nil, &MalformedDatasetError{Reason: "dates", Err: err}
	}
	b := NewBuilder(generatedAt, dates)
	if skipped > 0 {
		b.Warnf("%d non-string date labels dropped", skipped)
	}
	for _, d := range dates {
		if _, err := time.Parse(DateLayout, d); err != nil {
			b.Warnf("date label %q is not YYYY-MM-DD", d)
		}
	}

	markets, skipped, err := stringArray(trimmed, "markets")
	if err != nil {
		return nil, &MalformedDatasetError{Reason: "markets", Err: err}
	}
	if skipped > 0 {
		b.Warnf("%d non-string market ids dropped", skipped)
	}
	for _, m := range markets {
		b.AddMarket(m)
	}

	eachObject(b, trimmed, "markets_meta", func(id string, value []byte, dt jsonparser.ValueType) {
		var meta MarketMeta
		if dt != jsonparser.Object || json.Unmarshal(value, &meta) != nil {
			b.Warnf("metadata of market %q is not an object; ignored", id)
			return
		}
		b.SetMarketMeta(id, meta)
	})

	eachObject(b, trimmed, "items_meta", func(id string, value []byte, dt jsonparser.ValueType) {
		var meta CommodityMeta
		if dt != jsonparser.Object || json.Unmarshal(value, &meta) != nil {
			b.Warnf("metadata of commodity %q is not an object; ignored", id)
			meta = CommodityMeta{}
		}
		b.AddCommodity(id, meta)
	})

	eachObject(b, trimmed, "data", func(market string, value []byte, dt jsonparser.ValueType) {
		if dt != jsonparser.Object {
			b.Warnf("prices of market %q are not an object; dropped", market)
			return
		}
		eachObject(b, value, "", func(commodity string, value []byte, dt jsonparser.ValueType) {
			series, err := numberArray(value, dt)
			if err != nil {
				b.Warnf("series %s/%s: %v; dropped", market, commodity, err)
				return
			}
			b.AddSeries(market, commodity, series)
		})
	})

	return b.Build()
}

// LoadFile reads and parses a dataset file.
func LoadFile(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return Load(raw)
}

// lookup returns the value under key, or data itself when key is empty.
// Missing keys and nulls report NotExist.
func lookup(data []byte, key string) ([]byte, jsonparser.ValueType, error) {
	if key == "" {
		return data, jsonparser.Object, nil
	}
	v, dt, _, err := jsonparser.Get(data, key)
	if errors.Is(err, jsonparser.KeyPathNotFoundError) || dt == jsonparser.Null {
		return nil, jsonparser.NotExist, nil
	}
	return v, dt, err
}

func stringArray(data []byte, key string) ([]string, int, error) {
	v, dt, err := lookup(data, key)
	if err != nil {
		return nil, 0, err
	}
	if dt == jsonparser.NotExist {
		return nil, 0, nil
	}
	if dt != jsonparser.Array {
		return nil, 0, fmt.Errorf("expected an array, got %s", dt)
	}

	var (
		out     []string
		skipped int
	)
	_, err = jsonparser.ArrayEach(v, func(value []byte, dt jsonparser.ValueType, _ int, _ error) {
		if dt != jsonparser.String {
			skipped++
			return
		}
		s, err := jsonparser.ParseString(value)
		if err != nil {
			skipped++
			return
		}
		out = append(out, s)
	})
	return out, skipped, err
}

func numberArray(value []byte, dt jsonparser.ValueType) ([]float64, error) {
	if dt != jsonparser.Array {
		return nil, fmt.Errorf("expected an array, got %s", dt)
	}
	out := []float64{}
	var bad error
	_, err := jsonparser.ArrayEach(value, func(v []byte, dt jsonparser.ValueType, _ int, _ error) {
		if bad != nil {
			return
		}
		if dt != jsonparser.Number {
			bad = fmt.Errorf("non-numeric entry at %d", len(out))
			return
		}
		f, err := jsonparser.ParseFloat(v)
		if err != nil {
			bad = fmt.Errorf("entry %d: %w", len(out), err)
			return
		}
		out = append(out, f)
	})
	if err != nil {
		return nil, err
	}
	return out, bad
}

// eachObject walks the members of the object under key in document order.
func eachObject(b *Builder, data []byte, key string, fn func(id string, value []byte, dt jsonparser.ValueType)) {
	v, dt, err := lookup(data, key)
	if err != nil {
		b.Warnf("%s: %v", key, err)
		return
	}
	if dt == jsonparser.NotExist {
		return
	}
	if dt != jsonparser.Object {
		b.Warnf("%s is not an object; ignored", key)
		return
	}
	err = jsonparser.ObjectEach(v, func(k, value []byte, dt jsonparser.ValueType, _ int) error {
		id, err := jsonparser.ParseString(k)
		if err != nil {
			b.Warnf("%s: undecodable key %q", key, k)
			return nil
		}
		fn(id, value, dt)
		return nil
	})
	if err != nil {
		b.Warnf("%s: %v", key, err)
	}
}
