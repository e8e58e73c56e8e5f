package prediction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Fields
	}{
		{
			name: "single line layout",
			text: "Prediction: Stable. / Confidence: 60% / Tip: Watch the market.",
			want: Fields{Prediction: "Stable.", Confidence: "60%", Tip: "Watch the market."},
		},
		{
			name: "one field per line",
			text: "Prediction: Price likely to increase by 2-3 ETB tomorrow.\nConfidence: 75%\nTip: Buy today before prices rise further.",
			want: Fields{Prediction: "Price likely to increase by 2-3 ETB tomorrow.", Confidence: "75%", Tip: "Buy today before prices rise further."},
		},
		{
			name: "colon inside value",
			text: "Prediction: Up by 10:00 opening / Confidence: 70 % / Tip: Buy: early",
			want: Fields{Prediction: "Up by 10:00 opening", Confidence: "70%", Tip: "Buy: early"},
		},
		{
			name: "markdown emphasis and key case",
			text: "**Prediction:** Down. / **CONFIDENCE:** 55% / - tip: Wait a day.",
			want: Fields{Prediction: "Down.", Confidence: "55%", Tip: "Wait a day."},
		},
		{
			name: "emphasis inside value is kept",
			text: "Prediction: **Up** by noon / Confidence: 70% / Tip: Buy *now*",
			want: Fields{Prediction: "**Up** by noon", Confidence: "70%", Tip: "Buy *now*"},
		},
		{
			name: "value wrapped in emphasis",
			text: "Prediction: **Down.** / Confidence: __55%__ / Tip: _Wait a day._",
			want: Fields{Prediction: "Down.", Confidence: "55%", Tip: "Wait a day."},
		},
		{
			name: "trailing underscore is part of the value",
			text: "Prediction: Stable. / Confidence: 60% / Tip: Ask at stall_b_",
			want: Fields{Prediction: "Stable.", Confidence: "60%", Tip: "Ask at stall_b_"},
		},
		{
			name: "missing percent sign",
			text: "Prediction: Stable. / Confidence: 65 / Tip: No rush.",
			want: Fields{Prediction: "Stable.", Confidence: "65%", Tip: "No rush."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseText(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTextIncomplete(t *testing.T) {
	for _, text := range []string{
		"",
		"The price will go up.",
		"Prediction: Up. / Tip: Buy.",
		"Prediction: / Confidence: 60% / Tip: Buy.",
	} {
		_, err := ParseText(text)
		assert.True(t, errors.Is(err, ErrIncompleteReply), text)
	}
}

func TestNormalizeConfidence(t *testing.T) {
	for in, want := range map[string]string{
		"60%":   "60%",
		" 60 ":  "60%",
		"75.5%": "75.5%",
		"0":     "0%",
		"100%":  "100%",
	} {
		got, err := NormalizeConfidence(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"high", "101%", "-1", "%", "NaN", "nan%", "0x1p5", "1e1", "+50", "Inf", ".5", "60."} {
		_, err := NormalizeConfidence(in)
		assert.True(t, errors.Is(err, ErrBadConfidence), in)
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(sampleRequest())

	for _, want := range []string{
		"Commodity: onion",
		"Market: Merkato",
		"2025-07-24, 2025-07-25",
		"[25, 27, 26, 28, 30, 29, 31]",
		"Most recent price: 31",
		"24.0% ↗",
		ReplyLayout,
	} {
		assert.Contains(t, p, want)
	}

	empty := BuildPrompt(Request{Market: "Bole", Commodity: "teff"})
	assert.Contains(t, empty, "Most recent price: n/a")
}
