package prediction

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/i474232898/marketscan/internal/stats"
)

// ReplyLayout is the single-line layout the language model is told to use.
const ReplyLayout = "Prediction: <text> / Confidence: <NN%> / Tip: <text>"

// BuildPrompt renders req into the instruction sent to a free-text
// language model.
func BuildPrompt(req Request) string {
	latest := "n/a"
	if v, ok := stats.Latest(req.Prices); ok {
		latest = formatPrice(v)
	}

	prices := make([]string, len(req.Prices))
	for i, p := range req.Prices {
		prices[i] = formatPrice(p)
	}

	var b strings.Builder
	b.WriteString("You are MarketScan AI, a market analyst for local agricultural markets.\n\n")
	b.WriteString("Data:\n")
	fmt.Fprintf(&b, "- Commodity: %s\n", req.Commodity)
	fmt.Fprintf(&b, "- Market: %s\n", req.Market)
	fmt.Fprintf(&b, "- Dates: [%s]\n", strings.Join(req.Dates, ", "))
	fmt.Fprintf(&b, "- Prices: [%s]\n", strings.Join(prices, ", "))
	fmt.Fprintf(&b, "- Most recent price: %s\n", latest)
	fmt.Fprintf(&b, "- Change over the period: %s%% %s\n\n",
		strconv.FormatFloat(stats.PercentChange(req.Prices), 'f', 1, 64), stats.Trend(req.Prices))
	b.WriteString("Give a one sentence forecast for the next day (up, down or stable), ")
	b.WriteString("a confidence between 40% and 95%, and a buyer/seller tip of at most 10 words.\n\n")
	b.WriteString("Respond on a single line, exactly in this layout:\n")
	b.WriteString(ReplyLayout)
	b.WriteString("\n\nExample:\n")
	b.WriteString("Prediction: Price likely to rise slightly tomorrow. / Confidence: 70% / Tip: Buy today before prices climb.")
	return b.String()
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
