package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/i474232898/marketscan/internal/prediction"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

var (
	// ErrNoAPIKey is returned when the Gemini caller is built without a key.
	ErrNoAPIKey = errors.New("gemini api key is not configured")
	// ErrEmptyReply is returned when the model produced no text.
	ErrEmptyReply = errors.New("gemini returned no text")
)

// generator is the part of *genai.Models the caller uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiCaller asks a Gemini model for a forecast in the single-line reply
// layout and hands back the raw text.
type GeminiCaller struct {
	models      generator
	model       string
	temperature float32
	limiter     *rate.Limiter
}

// GeminiOption configures the Gemini caller.
type GeminiOption func(*GeminiCaller)

// WithGeminiModel sets the model name.
func WithGeminiModel(model string) GeminiOption {
	return func(g *GeminiCaller) {
		if model != "" {
			g.model = model
		}
	}
}

// WithGeminiRateLimit caps outgoing requests per second.
func WithGeminiRateLimit(rps float64) GeminiOption {
	return func(g *GeminiCaller) {
		if rps > 0 {
			burst := int(rps)
			if burst < 1 {
				burst = 1
			}
			g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// NewGemini creates a caller backed by the Gemini API.
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiCaller, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}
	return newGemini(client.Models, opts...), nil
}

func newGemini(models generator, opts ...GeminiOption) *GeminiCaller {
	g := &GeminiCaller{
		models:      models,
		model:       DefaultGeminiModel,
		temperature: 0.4,
		limiter:     rate.NewLimiter(rate.Limit(2), 2),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GeminiCaller) Name() string { return "gemini:" + g.model }

// Model returns the configured model name.
func (g *GeminiCaller) Model() string { return g.model }

func (g *GeminiCaller) Call(ctx context.Context, req prediction.Request) (prediction.Reply, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return prediction.Reply{}, fmt.Errorf("gemini rate limit: %w", err)
	}

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{genai.NewPartFromText(prediction.BuildPrompt(req))},
	}}
	resp, err := g.models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	})
	if err != nil {
		return prediction.Reply{}, fmt.Errorf("gemini generate content (model: %s): %w", g.model, err)
	}
	if resp == nil {
		return prediction.Reply{}, ErrEmptyReply
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return prediction.Reply{}, ErrEmptyReply
	}
	return prediction.Reply{Text: text, Raw: text}, nil
}
