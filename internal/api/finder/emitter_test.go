package finder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetnav/facility-agent/internal/types"
)

func TestSSEEmitter_SetsStreamingHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	_, err := NewSSEEmitter(w)
	require.NoError(t, err)

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", w.Header().Get("Connection"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))
}

func TestSSEEmitter_FramesEventsAsDataLines(t *testing.T) {
	w := httptest.NewRecorder()
	emitter, err := NewSSEEmitter(w)
	require.NoError(t, err)

	require.NoError(t, emitter.Emit(context.Background(), types.EventTypeStatus, map[string]string{
		"stage": "location", "message": "Resolving location...",
	}))
	require.NoError(t, emitter.Emit(context.Background(), types.EventTypeConnection, map[string]string{
		"message": "Connected",
	}))

	body := w.Body.String()
	frames := strings.Split(strings.TrimSuffix(body, "\n\n"), "\n\n")
	require.Len(t, frames, 2)

	var event types.StreamEvent
	require.True(t, strings.HasPrefix(frames[0], "data: "))
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frames[0], "data: ")), &event))
	assert.Equal(t, types.EventTypeStatus, event.Type)
	assert.NotEmpty(t, event.EventID)
	assert.False(t, event.Timestamp.IsZero())

	data, ok := event.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "location", data["stage"])
}

func TestSSEEmitter_SubstitutesNilPayload(t *testing.T) {
	w := httptest.NewRecorder()
	emitter, err := NewSSEEmitter(w)
	require.NoError(t, err)

	require.NoError(t, emitter.Emit(context.Background(), types.EventTypeWeather, nil))

	var event types.StreamEvent
	line := strings.TrimPrefix(strings.TrimSpace(w.Body.String()), "data: ")
	require.NoError(t, json.Unmarshal([]byte(line), &event))
	data, ok := event.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "No data available", data["message"])
}

func TestSSEEmitter_StopsOnCanceledContext(t *testing.T) {
	w := httptest.NewRecorder()
	emitter, err := NewSSEEmitter(w)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, emitter.Emit(ctx, types.EventTypeStatus, nil))
	assert.Empty(t, w.Body.String())
}

type plainWriter struct{ http.ResponseWriter }

func TestNewSSEEmitter_RequiresFlusher(t *testing.T) {
	_, err := NewSSEEmitter(plainWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "streaming not supported")
}
