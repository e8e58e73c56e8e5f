package market

import (
	"bytes"
	"encoding/json"
)

// DefaultUnit is the unit reported for commodities without one.
const DefaultUnit = "kg"

// Series is an ordered list of prices aligned with the dataset date axis.
type Series []float64

// MarketMeta describes a market. City is used for filtering; everything else
// is display data and passed through untouched.
type MarketMeta struct {
	City  string
	Label string
	Extra map[string]any
}

// MarshalJSON flattens Extra next to the known attributes.
func (m MarketMeta) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+2)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.City != "" {
		out["city"] = m.City
	}
	if m.Label != "" {
		out["label"] = m.Label
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads city and label and keeps the remaining keys in Extra.
func (m *MarketMeta) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = MarketMeta{}
	for k, v := range raw {
		switch k {
		case "city":
			if s, ok := v.(string); ok {
				m.City = s
			}
		case "label", "name":
			if s, ok := v.(string); ok && m.Label == "" {
				m.Label = s
			}
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[k] = v
		}
	}
	return nil
}

// CommodityMeta describes a commodity.
type CommodityMeta struct {
	Category string `json:"category,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

// UnitOf returns the unit label, defaulting to DefaultUnit.
func (c CommodityMeta) UnitOf() string {
	if c.Unit == "" {
		return DefaultUnit
	}
	return c.Unit
}

// RawDataset is the file shape of a dataset. Loading goes through Load;
// RawDataset is only used for rendering.
type RawDataset struct {
	GeneratedAt string                    `json:"generated_at"`
	Markets     []string                  `json:"markets"`
	MarketsMeta Object[MarketMeta]        `json:"markets_meta"`
	ItemsMeta   Object[CommodityMeta]     `json:"items_meta"`
	Dates       []string                  `json:"dates"`
	Data        Object[Object[[]float64]] `json:"data"`
}

// Object is a JSON object that encodes its members in Keys order.
type Object[V any] struct {
	Keys   []string
	Values map[string]V
}

// NewObject returns an empty Object.
func NewObject[V any]() Object[V] {
	return Object[V]{Values: make(map[string]V)}
}

// Set adds or replaces a member. New keys go last.
func (o *Object[V]) Set(key string, v V) {
	if o.Values == nil {
		o.Values = make(map[string]V)
	}
	if _, ok := o.Values[key]; !ok {
		o.Keys = append(o.Keys, key)
	}
	o.Values[key] = v
}

// Get returns the member under key.
func (o Object[V]) Get(key string) (V, bool) {
	v, ok := o.Values[key]
	return v, ok
}

func (o Object[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(o.Values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
