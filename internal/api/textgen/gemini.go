package textgen

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"
)

var _ Generator = (*Gemini)(nil)

// Gemini generates text through the Google Gemini API. Selected when the
// llm provider is set to "gemini".
type Gemini struct {
	logger      *slog.Logger
	client      *genai.Client
	model       string
	temperature float64
	maxTokens   int
}

func NewGemini(ctx context.Context, apiKey, model string, temperature float64, maxTokens int, logger *slog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{
		logger:      logger,
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

// Available reports whether the client was initialized. The hosted API has
// no cheap liveness probe worth a generation call.
func (g *Gemini) Available(_ context.Context) bool {
	return g.client != nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	ctx, span := otel.Tracer("TextGenerator").Start(ctx, "GeminiGenerate")
	defer span.End()

	result, err := g.client.Models.GenerateContent(ctx, g.modelFor(opts), genai.Text(prompt), g.configFor(opts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	text := result.Text()
	g.logger.DebugContext(ctx, "Generation complete", slog.Int("length", len(text)))
	return text, nil
}

func (g *Gemini) GenerateStream(ctx context.Context, prompt string, opts Options, onFragment func(delta, full string)) (string, error) {
	ctx, span := otel.Tracer("TextGenerator").Start(ctx, "GeminiGenerateStream")
	defer span.End()

	var full string
	for result, err := range g.client.Models.GenerateContentStream(ctx, g.modelFor(opts), genai.Text(prompt), g.configFor(opts)) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "streaming generation failed")
			return "", fmt.Errorf("streaming generation failed: %w", err)
		}
		delta := result.Text()
		if delta == "" {
			continue
		}
		full += delta
		if onFragment != nil {
			onFragment(delta, full)
		}
	}
	return full, nil
}

func (g *Gemini) modelFor(opts Options) string {
	if opts.Model != "" {
		return opts.Model
	}
	return g.model
}

func (g *Gemini) configFor(opts Options) *genai.GenerateContentConfig {
	temperature := g.temperature
	if opts.Temperature > 0 {
		temperature = opts.Temperature
	}
	maxTokens := g.maxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(temperature)),
		MaxOutputTokens: int32(maxTokens),
	}
	if opts.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: opts.System}},
		}
	}
	return config
}
