package prediction

import (
	"hash/fnv"
)

// FailureKind classifies why the remote attempt did not produce a forecast.
type FailureKind string

const (
	FailureNotConfigured FailureKind = "not_configured"
	FailureCall          FailureKind = "call_failed"
	FailureReply         FailureKind = "bad_reply"
)

// notices are the canned fallback forecasts, a few variants per failure
// kind. They read as service notices, not as forecasts.
var notices = map[FailureKind][]Fields{
	FailureNotConfigured: {
		{Prediction: "AI forecasting is not configured; showing a fallback notice.", Confidence: "60%", Tip: "Configure a prediction service for real forecasts."},
		{Prediction: "No forecasting service is set up for this dashboard.", Confidence: "60%", Tip: "Compare recent prices before deciding."},
	},
	FailureCall: {
		{Prediction: "The forecasting service could not be reached.", Confidence: "50%", Tip: "Try again later or check the market manually."},
		{Prediction: "The forecasting service is temporarily unavailable.", Confidence: "50%", Tip: "Watch the latest prices and retry shortly."},
	},
	FailureReply: {
		{Prediction: "The forecast could not be read; price movement uncertain.", Confidence: "50%", Tip: "Check the market manually."},
		{Prediction: "The forecasting service returned an unusable answer.", Confidence: "50%", Tip: "Monitor market conditions."},
	},
}

// Fallback returns the canned Result for a failed remote attempt. The variant
// is picked from the market and commodity, so the same pair always gets the
// same notice.
func Fallback(req Request, failure *RemoteCallError) Result {
	kind := FailureCall
	raw := "Fallback response"
	if failure != nil {
		kind = failure.Kind
		raw = "Fallback response: " + failure.Error()
	}
	pool, ok := notices[kind]
	if !ok {
		pool = notices[FailureCall]
	}

	h := fnv.New32a()
	h.Write([]byte(req.Market))
	h.Write([]byte{0})
	h.Write([]byte(req.Commodity))
	f := pool[int(h.Sum32()%uint32(len(pool)))]

	res := Result{
		Fields:      f,
		Provenance:  LocalFallback,
		RawResponse: raw,
	}
	if failure != nil {
		res.Failure = failure.Error()
	}
	return res
}
