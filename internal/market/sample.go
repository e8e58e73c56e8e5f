package market

// sampleJSON is the built-in dataset served when no dataset source is
// configured.
const sampleJSON = `{
  "generated_at": "2025-07-30",
  "markets": ["Merkato", "Shola", "Bole"],
  "markets_meta": {
    "Merkato": {"city": "Addis Ababa", "label": "Merkato Open Market"},
    "Shola": {"city": "Addis Ababa", "label": "Shola Market"},
    "Bole": {"city": "Addis Ababa", "label": "Bole Market"}
  },
  "items_meta": {
    "onion": {"category": "vegetable", "unit": "kg"},
    "teff": {"category": "grain", "unit": "kg"}
  },
  "dates": ["2025-07-24", "2025-07-25", "2025-07-26", "2025-07-27", "2025-07-28", "2025-07-29", "2025-07-30"],
  "data": {
    "Merkato": {
      "onion": [25, 27, 26, 28, 30, 29, 31],
      "teff": [120, 118, 119, 121, 122, 122, 123]
    },
    "Shola": {
      "onion": [24, 25, 25, 26, 26, 27, 28]
    },
    "Bole": {
      "onion": [26, 26, 27, 27, 28, 28, 29]
    }
  }
}`

// Sample returns the built-in sample dataset.
func Sample() *Dataset {
	ds, err := Load([]byte(sampleJSON))
	if err != nil {
		panic("market: built-in sample dataset does not load: " + err.Error())
	}
	return ds
}
