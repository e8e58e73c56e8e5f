package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	markets := []string{"Merkato", "Shola", "Bole"}
	commodities := []string{"onion", "teff"}

	tests := []struct {
		name      string
		text      string
		markets   []string
		wantOK    bool
		market    string
		commodity string
		reason    Reason
	}{
		{
			name:      "canonical phrasing",
			text:      "onion in merkato",
			markets:   []string{"Merkato", "Bole"},
			wantOK:    true,
			market:    "Merkato",
			commodity: "onion",
		},
		{
			name:      "mixed case keeps known casing",
			text:      "TEFF prices at SHOLA please",
			markets:   markets,
			wantOK:    true,
			market:    "Shola",
			commodity: "teff",
		},
		{
			// No known name occurs and there is no " in " to split on, so the
			// outcome is NoMatch (see Open Question decisions in DESIGN.md).
			name:    "unknown commodity and no market",
			text:    "show me coffee prices",
			markets: []string{"Merkato"},
			reason:  NoMatch,
		},
		{
			name:    "market only",
			text:    "coffee in bole",
			markets: markets,
			market:  "Bole",
			reason:  Partial,
		},
		{
			name:      "commodity only",
			text:      "how much is onion",
			markets:   markets,
			commodity: "onion",
			reason:    Partial,
		},
		{
			name:    "nothing",
			text:    "",
			markets: markets,
			reason:  NoMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.text, tt.markets, commodities)
			assert.Equal(t, tt.wantOK, got.OK)
			assert.Equal(t, tt.market, got.Market)
			assert.Equal(t, tt.commodity, got.Commodity)
			assert.Equal(t, tt.reason, got.Reason)
			if tt.wantOK {
				assert.NoError(t, got.Err())
			} else {
				var ue *UnresolvedError
				require.True(t, errors.As(got.Err(), &ue))
				assert.Equal(t, tt.reason, ue.Reason)
			}
		})
	}
}

func TestResolveShowMeCoffeeWithMarketList(t *testing.T) {
	// "show me coffee prices" names neither side and is NoMatch; once a
	// known market appears the result becomes Partial.
	got := Resolve("show me coffee prices in merkato", []string{"Merkato"}, []string{"onion", "teff"})
	assert.False(t, got.OK)
	assert.Equal(t, Partial, got.Reason)
	assert.Equal(t, "Merkato", got.Market)
	assert.Empty(t, got.Commodity)
}

func TestResolveIsDeterministic(t *testing.T) {
	markets := []string{"Bole", "Bole Arabsa"}
	for i := 0; i < 10; i++ {
		got := Resolve("teff in bole arabsa", markets, []string{"teff"})
		assert.Equal(t, "Bole", got.Market, "first match in enumeration order wins")
	}
}

func TestLongestMatcherPrefersLongerName(t *testing.T) {
	r := NewResolver(LongestMatcher{})
	got := r.Resolve("teff in bole arabsa", []string{"Bole", "Bole Arabsa"}, []string{"teff"})
	require.True(t, got.OK)
	assert.Equal(t, "Bole Arabsa", got.Market)

	got = r.Resolve("teff in bole", []string{"Bole", "Bole Arabsa"}, []string{"teff"})
	assert.Equal(t, "Bole", got.Market)
}

func TestTokenMatcher(t *testing.T) {
	m := TokenMatcher{}

	_, ok := m.Match("prices at boleta market", []string{"Bole"})
	assert.False(t, ok)

	got, ok := m.Match("teff, bole arabsa!", []string{"Arabsa Bole", "Bole Arabsa"})
	assert.True(t, ok)
	assert.Equal(t, "Bole Arabsa", got)
}

func TestInSplitRetriesRestrictedSides(t *testing.T) {
	// A matcher that only accepts exact segments shows the " in " retry:
	// the whole text matches nothing, the split segments do.
	exact := MatcherFunc(func(text string, candidates []string) (string, bool) {
		for _, c := range candidates {
			if strings.TrimSpace(text) == strings.ToLower(c) {
				return c, true
			}
		}
		return "", false
	})

	got := NewResolver(exact).Resolve("Onion in Merkato", []string{"Merkato"}, []string{"onion"})
	require.True(t, got.OK)
	assert.Equal(t, "Merkato", got.Market)
	assert.Equal(t, "onion", got.Commodity)

	// Sides are not swapped: a market on the left is not found.
	got = NewResolver(exact).Resolve("merkato in onion", []string{"Merkato"}, []string{"onion"})
	assert.False(t, got.OK)
	assert.Equal(t, NoMatch, got.Reason)
}

func TestMatcherByName(t *testing.T) {
	assert.IsType(t, LongestMatcher{}, MatcherByName("Longest"))
	assert.IsType(t, TokenMatcher{}, MatcherByName("token"))
	assert.IsType(t, SubstringMatcher{}, MatcherByName(""))
	assert.IsType(t, SubstringMatcher{}, MatcherByName("fuzzy"))
}
