// Package board mounts generated diagrams into named containers and fans
// updates out to connected dashboards.
package board

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/pipenet/internal/logging"
)

// Event is one message pushed to connected dashboards.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Encode renders the event payload as JSON for an SSE data line.
func (e Event) Encode() (string, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Hub handles active subscriber channels.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	logger      *slog.Logger
}

// NewHub creates an empty hub. A nil logger disables logging.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel. The returned func unsubscribes and closes it.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 16)
	h.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers, ch)
			close(ch)
		})
	}
}

// Broadcast delivers ev to every subscriber without blocking.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.logger.Debug("Hub: Broadcasting", "type", ev.Type, "subscribers", len(h.subscribers))

	for ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			// Drop message if channel is full (slow client)
			h.logger.Warn("Hub: Subscriber buffer full, dropping event", "type", ev.Type)
		}
	}
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
