package http

import (
	"fmt"
	"net/http"

	"github.com/aretw0/pipenet/internal/presentation/board"
)

// SubscribeEvents handles the GET /events request (SSE). New clients first
// receive every mounted diagram, then live updates and notifications.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}
	if s.Hub == nil {
		http.Error(w, "Event stream disabled", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, cancel := s.Hub.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	for _, c := range s.Diagrams.Containers() {
		s.writeEvent(w, board.Event{Type: board.EventDiagram, Data: c})
	}
	flusher.Flush()

	s.logger.Info("SSE: Client connected", "subscribers", s.Hub.Subscribers())
	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: Client disconnected")
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.writeEvent(w, ev)
			flusher.Flush()
		}
	}
}

func (s *Server) writeEvent(w http.ResponseWriter, ev board.Event) {
	data, err := ev.Encode()
	if err != nil {
		s.logger.Error("SSE: Event encode failed", "type", ev.Type, "err", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
}
