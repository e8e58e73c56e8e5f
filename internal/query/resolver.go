// Package query turns free text such as "onion in merkato" into a
// (market, commodity) pair drawn from known names.
package query

import (
	"fmt"
	"strings"
)

// Reason explains why a query did not resolve.
type Reason string

const (
	// NoMatch means neither a market nor a commodity was found.
	NoMatch Reason = "no_match"
	// Partial means exactly one side was found.
	Partial Reason = "partial"
)

// inSeparator splits the canonical "<commodity> in <market>" phrasing.
const inSeparator = " in "

// Resolved is the outcome of resolving a query. When OK is false, Market or
// Commodity may still hold the side that was found.
type Resolved struct {
	Market    string `json:"market,omitempty"`
	Commodity string `json:"commodity,omitempty"`
	OK        bool   `json:"resolved"`
	Reason    Reason `json:"reason,omitempty"`
	Text      string `json:"query"`
}

// Err returns nil for a resolved query and an *UnresolvedError otherwise.
func (r Resolved) Err() error {
	if r.OK {
		return nil
	}
	return &UnresolvedError{Reason: r.Reason, Text: r.Text, Market: r.Market, Commodity: r.Commodity}
}

// UnresolvedError is a user-correctable resolution failure.
type UnresolvedError struct {
	Reason    Reason
	Text      string
	Market    string
	Commodity string
}

func (e *UnresolvedError) Error() string {
	switch {
	case e.Reason == NoMatch:
		return fmt.Sprintf("query %q matches no known market or commodity", e.Text)
	case e.Market == "":
		return fmt.Sprintf("query %q names commodity %q but no known market", e.Text, e.Commodity)
	default:
		return fmt.Sprintf("query %q names market %q but no known commodity", e.Text, e.Market)
	}
}

// Resolver resolves queries with a pluggable Matcher. The zero value uses
// SubstringMatcher. A Resolver holds no mutable state.
type Resolver struct {
	Matcher Matcher
}

// NewResolver returns a Resolver using m.
func NewResolver(m Matcher) Resolver {
	return Resolver{Matcher: m}
}

// Resolve resolves text with the default SubstringMatcher.
func Resolve(text string, knownMarkets, knownCommodities []string) Resolved {
	return Resolver{}.Resolve(text, knownMarkets, knownCommodities)
}

// Resolve looks for a market and a commodity anywhere in text. If either
// side is missing and the text reads "<left> in <right>", the commodity is
// retried on the left part and the market on the right part. Nothing is
// ever guessed.
func (r Resolver) Resolve(text string, knownMarkets, knownCommodities []string) Resolved {
	m := r.Matcher
	if m == nil {
		m = SubstringMatcher{}
	}

	lower := strings.ToLower(text)
	out := Resolved{Text: text}

	out.Market, _ = m.Match(lower, knownMarkets)
	out.Commodity, _ = m.Match(lower, knownCommodities)

	if (out.Market == "" || out.Commodity == "") && strings.Contains(lower, inSeparator) {
		left, right, _ := strings.Cut(lower, inSeparator)
		if out.Commodity == "" {
			out.Commodity, _ = m.Match(left, knownCommodities)
		}
		if out.Market == "" {
			out.Market, _ = m.Match(right, knownMarkets)
		}
	}

	switch {
	case out.Market != "" && out.Commodity != "":
		out.OK = true
	case out.Market == "" && out.Commodity == "":
		out.Reason = NoMatch
	default:
		out.Reason = Partial
	}
	return out
}
