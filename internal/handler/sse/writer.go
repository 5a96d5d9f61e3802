package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// Writer writes SSE frames for one generation's event stream.
// Writes are serialized so keep-alive pings never interleave with events.
type Writer struct {
	w            http.ResponseWriter
	flusher      http.Flusher
	generationID string

	mu     sync.Mutex
	nextID int
}

// NewWriter prepares w for streaming: it sets the SSE headers and writes
// the 200 status.
func NewWriter(w http.ResponseWriter, flusher http.Flusher, generationID string) *Writer {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Writer{
		w:            w,
		flusher:      flusher,
		generationID: generationID,
	}
}

// WriteEvent writes one named event with a JSON payload and a sequential id.
func (s *Writer) WriteEvent(event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s event for generation %s: %w", event, s.generationID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		return fmt.Errorf("write event failed: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// WriteKeepAlive writes an SSE comment (": keepalive") and flushes.
func (s *Writer) WriteKeepAlive() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Lines starting with ':' are comments and ignored by clients.
	if _, err := fmt.Fprint(s.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("write keepalive failed: %w", err)
	}
	s.flusher.Flush()
	return nil
}
