// Package providers holds the remote forecasting callers.
package providers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/i474232898/marketscan/internal/httpclient"
	"github.com/i474232898/marketscan/internal/prediction"
)

// RemotePredictor calls a structured prediction API: POST {base}/predict
// with {market, commodity, prices, dates}, answering
// {prediction, confidence, tip}.
type RemotePredictor struct {
	baseURL string
	http    *httpclient.Client
}

// NewRemotePredictor creates a caller for the API at baseURL.
func NewRemotePredictor(client *http.Client, baseURL string) *RemotePredictor {
	return &RemotePredictor{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: httpclient.New(httpclient.Config{
			Name:   "predict-api",
			Client: client,
			Backoff: httpclient.BackoffConfig{
				MaxRetries:      1,
				InitialInterval: 250 * time.Millisecond,
				MaxInterval:     time.Second,
			},
		}),
	}
}

func (p *RemotePredictor) Name() string { return "predict-api" }

func (p *RemotePredictor) Call(ctx context.Context, req prediction.Request) (prediction.Reply, error) {
	var f prediction.Fields
	raw, err := p.http.PostJSON(ctx, p.baseURL+"/predict", req, &f)
	if err != nil {
		return prediction.Reply{}, err
	}
	return prediction.Reply{Fields: &f, Raw: string(raw)}, nil
}
