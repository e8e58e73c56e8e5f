// Package stats holds the derived values surfaced for a price series. Every
// view (live prices, featured ranking, prediction prompt) goes through these
// functions so that the numbers agree everywhere.
package stats

// Latest returns the last price of s. ok is false for an empty series.
func Latest(s []float64) (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1], true
}

// PercentChange returns (last - first) / first * 100.
// Series with fewer than two points and series starting at exactly zero
// yield 0.
func PercentChange(s []float64) float64 {
	if len(s) < 2 {
		return 0
	}
	first := s[0]
	if first == 0 {
		return 0
	}
	return (s[len(s)-1] - first) / first * 100
}

// Summary bundles the derived values of one series.
type Summary struct {
	Points        int     `json:"points"`
	Latest        float64 `json:"latest_price"`
	HasLatest     bool    `json:"-"`
	ChangePercent float64 `json:"change_percent"`
}

// Summarize computes the Summary of s.
func Summarize(s []float64) Summary {
	latest, ok := Latest(s)
	return Summary{
		Points:        len(s),
		Latest:        latest,
		HasLatest:     ok,
		ChangePercent: PercentChange(s),
	}
}

// Trend returns an arrow describing the direction from the first to the
// last price.
func Trend(s []float64) string {
	latest, ok := Latest(s)
	if !ok {
		return "→"
	}
	switch {
	case latest > s[0]:
		return "↗"
	case latest < s[0]:
		return "↘"
	default:
		return "→"
	}
}
