package feed

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/codenames-go/internal/model"
)

type sseSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s *sseSink) Send(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.write(formatSSEMessage(msg.Event, string(data)))
}

func (s *sseSink) Keepalive() error {
	return s.write([]byte(": keepalive\n\n"))
}

func (s *sseSink) write(b []byte) error {
	if _, err := s.w.Write(b); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// ServeSSE streams a session's feed to an SSE client
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, src Source, playerID model.PlayerID, logger *slog.Logger) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	sink := &sseSink{w: w, flusher: flusher}
	if err := sink.write([]byte("event: connected\ndata: {\"status\":\"connected\"}\n\n")); err != nil {
		return
	}

	err := Stream(r.Context(), hub, src, playerID, sink)
	if err != nil && !errors.Is(err, ErrClientDropped) {
		logger.Warn("sse stream ended",
			slog.String("session_id", string(hub.SessionID())),
			slog.String("player_id", string(playerID)),
			slog.Any("error", err))
	}
}

// formatSSEMessage formats an SSE message with event name and data.
// Each line of data gets its own "data: " prefix.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: " + eventName + "\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
