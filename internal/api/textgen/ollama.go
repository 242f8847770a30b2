package textgen

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var _ Generator = (*Ollama)(nil)

// Ollama talks to a local Ollama daemon. Streaming responses arrive as
// newline-delimited JSON objects, one token batch per line.
type Ollama struct {
	logger              *slog.Logger
	baseURL             string
	model               string
	temperature         float64
	maxTokens           int
	generateTimeout     time.Duration
	streamTimeout       time.Duration
	availabilityTimeout time.Duration
	client              *http.Client
}

func NewOllama(baseURL, model string, temperature float64, maxTokens int, generateTimeout, streamTimeout, availabilityTimeout time.Duration, logger *slog.Logger) *Ollama {
	return &Ollama{
		logger:              logger,
		baseURL:             strings.TrimSuffix(baseURL, "/"),
		model:               model,
		temperature:         temperature,
		maxTokens:           maxTokens,
		generateTimeout:     generateTimeout,
		streamTimeout:       streamTimeout,
		availabilityTimeout: availabilityTimeout,
		client:              &http.Client{},
	}
}

type ollamaRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	System  string `json:"system,omitempty"`
	Stream  bool   `json:"stream"`
	Options struct {
		Temperature float64 `json:"temperature"`
		NumPredict  int     `json:"num_predict"`
	} `json:"options"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Available probes the daemon's model list. The probe has its own short
// timeout independent of generation deadlines.
func (o *Ollama) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, o.availabilityTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := o.client.Do(req)
	if err != nil {
		o.logger.DebugContext(ctx, "Ollama not available", slog.Any("error", err))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (o *Ollama) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	ctx, span := otel.Tracer("TextGenerator").Start(ctx, "OllamaGenerate")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, o.generateTimeout)
	defer cancel()

	resp, err := o.post(ctx, o.buildRequest(prompt, opts, false))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	defer resp.Body.Close()

	var body ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}
	o.logger.DebugContext(ctx, "Generation complete", slog.Int("length", len(body.Response)))
	return body.Response, nil
}

// GenerateStream reads the NDJSON token stream line by line, invoking
// onFragment for every non-empty delta until the done marker arrives.
func (o *Ollama) GenerateStream(ctx context.Context, prompt string, opts Options, onFragment func(delta, full string)) (string, error) {
	ctx, span := otel.Tracer("TextGenerator").Start(ctx, "OllamaGenerateStream")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, o.streamTimeout)
	defer cancel()

	resp, err := o.post(ctx, o.buildRequest(prompt, opts, true))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "streaming generation failed")
		return "", fmt.Errorf("failed to start streaming response: %w", err)
	}
	defer resp.Body.Close()

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var chunk ollamaResponse
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			// Malformed lines are skipped, not fatal.
			o.logger.WarnContext(ctx, "Skipping malformed stream line", slog.String("line", line))
			continue
		}
		if chunk.Response != "" {
			full.WriteString(chunk.Response)
			if onFragment != nil {
				onFragment(chunk.Response, full.String())
			}
		}
		if chunk.Done {
			o.logger.DebugContext(ctx, "Streaming complete", slog.Int("length", full.Len()))
			return full.String(), nil
		}
	}
	if err := scanner.Err(); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("stream read failed: %w", err)
	}
	return full.String(), nil
}

func (o *Ollama) buildRequest(prompt string, opts Options, stream bool) ollamaRequest {
	req := ollamaRequest{
		Model:  o.model,
		Prompt: prompt,
		System: opts.System,
		Stream: stream,
	}
	if opts.Model != "" {
		req.Model = opts.Model
	}
	req.Options.Temperature = o.temperature
	if opts.Temperature > 0 {
		req.Options.Temperature = opts.Temperature
	}
	req.Options.NumPredict = o.maxTokens
	if opts.MaxTokens > 0 {
		req.Options.NumPredict = opts.MaxTokens
	}
	return req
}

func (o *Ollama) post(ctx context.Context, payload ollamaRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return resp, nil
}
