package finder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vetnav/facility-agent/app/observability/metrics"
	"github.com/vetnav/facility-agent/internal/types"
)

// Emitter pushes one tagged event at a time to the caller. Implementations
// must deliver events in emission order and never buffer past a call.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload any) error
}

var _ Emitter = (*SSEEmitter)(nil)

// SSEEmitter frames each event as "data: <json>\n\n" on an HTTP response,
// flushing after every write so partial results reach the client while
// later stages are still running.
type SSEEmitter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEEmitter prepares w for server-sent events. Returns an error when the
// underlying writer cannot flush incrementally.
func NewSSEEmitter(w http.ResponseWriter) (*SSEEmitter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported by response writer")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	return &SSEEmitter{w: w, flusher: flusher}, nil
}

func (e *SSEEmitter) Emit(ctx context.Context, eventType string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	event := newEvent(eventType, payload)
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write %s event: %w", eventType, err)
	}
	e.flusher.Flush()
	if m := metrics.Get(); m != nil {
		m.StreamEventsTotal.Add(ctx, 1)
	}
	return nil
}

// newEvent wraps a payload in the stream envelope. A nil payload is replaced
// with a placeholder object so consumers never see null data.
func newEvent(eventType string, payload any) types.StreamEvent {
	if payload == nil {
		payload = map[string]string{"message": "No data available"}
	}
	return types.StreamEvent{
		Type:      eventType,
		Data:      payload,
		Timestamp: time.Now(),
		EventID:   uuid.New().String(),
	}
}
