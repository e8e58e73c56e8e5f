package engine

import (
	"time"

	"github.com/google/uuid"
)

// Session carries the selection of one user action through the pipeline.
// It replaces ambient UI state: every entry point receives it explicitly.
type Session struct {
	ID        string    `json:"session_id"`
	Query     string    `json:"query,omitempty"`
	Market    string    `json:"market,omitempty"`
	Commodity string    `json:"commodity,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// NewQuerySession starts a session from free text.
func NewQuerySession(text string) *Session {
	return &Session{ID: uuid.NewString(), Query: text, StartedAt: time.Now().UTC()}
}

// NewSelectionSession starts a session from an explicit selection.
func NewSelectionSession(market, commodity string) *Session {
	return &Session{ID: uuid.NewString(), Market: market, Commodity: commodity, StartedAt: time.Now().UTC()}
}
