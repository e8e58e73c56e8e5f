package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/i474232898/marketscan/internal/prediction"
)

func request() prediction.Request {
	return prediction.Request{
		Market:    "Merkato",
		Commodity: "onion",
		Prices:    []float64{25, 31},
		Dates:     []string{"2025-07-24", "2025-07-25"},
	}
}

func TestRemotePredictorStructured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)

		var got prediction.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, request(), got)

		_, _ = w.Write([]byte(`{"prediction": "Up.", "confidence": "80%", "tip": "Buy now."}`))
	}))
	defer srv.Close()

	p := NewRemotePredictor(srv.Client(), srv.URL+"/")
	res := prediction.NewResolver(p).Predict(context.Background(), request())

	assert.Equal(t, prediction.RemoteStructured, res.Provenance)
	assert.Equal(t, prediction.Fields{Prediction: "Up.", Confidence: "80%", Tip: "Buy now."}, res.Fields)
	assert.Contains(t, res.RawResponse, `"tip": "Buy now."`)
}

func TestRemotePredictorFailuresFallBack(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
		"malformed body": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		},
		"missing field": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"prediction": "Up.", "tip": "Buy."}`))
		},
	}

	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			p := NewRemotePredictor(srv.Client(), srv.URL)
			res := prediction.NewResolver(p).Predict(context.Background(), request())
			assert.Equal(t, prediction.LocalFallback, res.Provenance)
			assert.NotEmpty(t, res.Failure)
		})
	}
}

func TestRemotePredictorTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	p := NewRemotePredictor(srv.Client(), srv.URL)
	r := prediction.NewResolver(p, prediction.WithTimeout(50*time.Millisecond))

	res := r.Predict(context.Background(), request())
	assert.Equal(t, prediction.LocalFallback, res.Provenance)
}

type fakeModels struct {
	text   string
	err    error
	model  string
	prompt string
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: f.text}},
			},
		}},
	}, nil
}

func TestGeminiCallerText(t *testing.T) {
	fake := &fakeModels{text: "Prediction: Stable. / Confidence: 60% / Tip: Watch the market.\n"}
	g := newGemini(fake, WithGeminiModel("gemini-2.0-flash"), WithGeminiRateLimit(100))

	res := prediction.NewResolver(g).Predict(context.Background(), request())

	assert.Equal(t, "gemini-2.0-flash", fake.model)
	assert.Contains(t, fake.prompt, "Market: Merkato")
	assert.Equal(t, prediction.RemoteTextParsed, res.Provenance)
	assert.Equal(t, prediction.Fields{Prediction: "Stable.", Confidence: "60%", Tip: "Watch the market."}, res.Fields)
	assert.Equal(t, "gemini:gemini-2.0-flash", g.Name())
}

func TestGeminiCallerErrors(t *testing.T) {
	_, err := newGemini(&fakeModels{err: errors.New("quota")}).Call(context.Background(), request())
	assert.Error(t, err)

	_, err = newGemini(&fakeModels{text: "   "}).Call(context.Background(), request())
	assert.True(t, errors.Is(err, ErrEmptyReply))

	_, err = NewGemini(context.Background(), "")
	assert.True(t, errors.Is(err, ErrNoAPIKey))
}

func TestGeminiDefaultModel(t *testing.T) {
	g := newGemini(&fakeModels{}, WithGeminiModel(""))
	assert.Equal(t, DefaultGeminiModel, g.Model())
}
