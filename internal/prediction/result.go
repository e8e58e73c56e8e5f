package prediction

// Provenance records which strategy produced a Result.
type Provenance string

const (
	RemoteStructured Provenance = "remote-structured"
	RemoteTextParsed Provenance = "remote-text-parsed"
	LocalFallback    Provenance = "local-fallback"
)

// Request is what a forecast is asked for. It doubles as the body of the
// remote POST /predict call.
type Request struct {
	Market    string    `json:"market"`
	Commodity string    `json:"commodity"`
	Prices    []float64 `json:"prices"`
	Dates     []string  `json:"dates"`
}

// Fields are the three values every forecast carries.
type Fields struct {
	Prediction string `json:"prediction"`
	Confidence string `json:"confidence"`
	Tip        string `json:"tip"`
}

// Reply is what a Caller got back: either structured Fields or free Text
// in the "Prediction: ... / Confidence: ... / Tip: ..." layout. Raw keeps the
// unprocessed body for observability.
type Reply struct {
	Fields *Fields
	Text   string
	Raw    string
}

// Result is the forecast handed to callers. It is always populated.
type Result struct {
	Fields
	Provenance  Provenance `json:"provenance"`
	RawResponse string     `json:"raw_response"`
	Failure     string     `json:"failure,omitempty"`
}
