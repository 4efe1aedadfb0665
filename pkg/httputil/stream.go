package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// StreamWriter writes server-sent events to an HTTP response. It is the
// transport for the incremental output of a chat turn: text deltas, reasoning
// deltas, tool events and the terminating finish/error event.
type StreamWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewStreamWriter prepares w for server-sent events. Returns an error when the
// underlying ResponseWriter does not support flushing.
func NewStreamWriter(w http.ResponseWriter) (*StreamWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &StreamWriter{w: w, flusher: flusher}, nil
}

// WriteEvent marshals payload and writes it as one SSE event of the given type.
func (s *StreamWriter) WriteEvent(event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal SSE payload: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
