package textgen

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOllama(baseURL string) *Ollama {
	return NewOllama(baseURL, "llama3", 0.3, 400,
		5*time.Second, 10*time.Second, time.Second, slog.New(slog.DiscardHandler))
}

func TestOllama_Available(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	assert.True(t, newTestOllama(srv.URL).Available(context.Background()))
}

func TestOllama_NotAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	assert.False(t, newTestOllama(srv.URL).Available(context.Background()))

	srv.Close()
	assert.False(t, newTestOllama(srv.URL).Available(context.Background()))
}

func TestOllama_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)
		assert.Equal(t, 0.3, req.Options.Temperature)
		assert.Equal(t, 400, req.Options.NumPredict)
		w.Write([]byte(`{"response":"hello veteran","done":true}`))
	}))
	defer srv.Close()

	out, err := newTestOllama(srv.URL).Generate(context.Background(), "hi", Options{})
	require.NoError(t, err)
	assert.Equal(t, "hello veteran", out)
}

func TestOllama_GenerateOptionOverrides(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mistral", req.Model)
		assert.Equal(t, 0.7, req.Options.Temperature)
		assert.Equal(t, 100, req.Options.NumPredict)
		assert.Equal(t, "be brief", req.System)
		w.Write([]byte(`{"response":"ok","done":true}`))
	}))
	defer srv.Close()

	_, err := newTestOllama(srv.URL).Generate(context.Background(), "hi", Options{
		Model: "mistral", Temperature: 0.7, MaxTokens: 100, System: "be brief",
	})
	require.NoError(t, err)
}

func TestOllama_GenerateStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		w.Write([]byte(`{"response":"PRIM","done":false}
{"response":"ARY_RECOMMENDATION: Go","done":false}
not json at all
{"response":" to X","done":false}
{"response":"","done":true}
`))
	}))
	defer srv.Close()

	var deltas []string
	var lastFull string
	full, err := newTestOllama(srv.URL).GenerateStream(context.Background(), "prompt", Options{},
		func(delta, soFar string) {
			deltas = append(deltas, delta)
			lastFull = soFar
		})
	require.NoError(t, err)
	assert.Equal(t, "PRIMARY_RECOMMENDATION: Go to X", full)
	assert.Equal(t, []string{"PRIM", "ARY_RECOMMENDATION: Go", " to X"}, deltas)
	assert.Equal(t, full, lastFull)
}

func TestOllama_GenerateStreamStopsAtDoneMarker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"before","done":true}
{"response":"after","done":false}
`))
	}))
	defer srv.Close()

	full, err := newTestOllama(srv.URL).GenerateStream(context.Background(), "prompt", Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "before", full)
}

func TestOllama_GenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	o := newTestOllama(srv.URL)

	_, err := o.Generate(context.Background(), "hi", Options{})
	assert.Error(t, err)

	_, err = o.GenerateStream(context.Background(), "hi", Options{}, nil)
	assert.Error(t, err)
}
