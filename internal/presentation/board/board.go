package board

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/pipenet/internal/logging"
	"github.com/aretw0/pipenet/pkg/domain"
)

// Event types emitted by the board.
const (
	EventDiagram  = "diagram"
	EventNotify   = "notify"
	EventTopology = "topology"
)

// Container is a named diagram slot reused across rebuilds.
type Container struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	// Processed is the "already rendered" marker. It is cleared before every
	// render and set once the new source is mounted.
	Processed bool      `json:"processed"`
	Version   uint64    `json:"version"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Board implements ports.DiagramRenderer over in-memory containers, pushing
// every mounted diagram to the hub.
type Board struct {
	mu         sync.RWMutex
	containers map[string]*Container
	hub        *Hub
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a board publishing to hub. A nil logger disables logging.
func New(hub *Hub, logger *slog.Logger) *Board {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Board{
		containers: make(map[string]*Container),
		hub:        hub,
		logger:     logger,
		now:        time.Now,
	}
}

// Render mounts source into the named container. The processed marker is
// cleared first; rejected sources leave the previous diagram in place and
// return an error wrapping domain.ErrRender.
func (b *Board) Render(ctx context.Context, container string, source string) error {
	b.mu.Lock()
	c, ok := b.containers[container]
	if !ok {
		c = &Container{Name: container}
		b.containers[container] = c
	}
	c.Processed = false

	if err := Validate(source); err != nil {
		c.Error = err.Error()
		b.mu.Unlock()
		b.logger.Error("Diagram rejected", "container", container, "err", err)
		return fmt.Errorf("%w: container %s: %v", domain.ErrRender, container, err)
	}

	c.Source = source
	c.Version++
	c.Error = ""
	c.UpdatedAt = b.now()
	c.Processed = true
	snapshot := *c
	b.mu.Unlock()

	if b.hub != nil {
		b.hub.Broadcast(Event{Type: EventDiagram, Data: snapshot})
	}
	return nil
}

// TopologyChanged implements ports.ChangeObserver by pushing the diff to the hub.
func (b *Board) TopologyChanged(ctx context.Context, diff *domain.SnapshotDiff) {
	if b.hub == nil || diff == nil {
		return
	}
	b.hub.Broadcast(Event{Type: EventTopology, Data: diff})
}

// Container returns a copy of the named container.
func (b *Board) Container(name string) (Container, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.containers[name]
	if !ok {
		return Container{}, false
	}
	return *c, true
}

// Containers returns copies of all containers sorted by name.
func (b *Board) Containers() []Container {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Container, 0, len(b.containers))
	for _, c := range b.containers {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Notification is a transient operator message.
type Notification struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier implements ports.Notifier by logging and pushing to the hub.
type Notifier struct {
	hub    *Hub
	logger *slog.Logger
}

// NewNotifier creates a notifier publishing to hub.
func NewNotifier(hub *Hub, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Notifier{hub: hub, logger: logger}
}

// Notify never blocks: slow subscribers miss the message.
func (n *Notifier) Notify(ctx context.Context, level, message string) {
	n.logger.Info("Operator notification", "level", level, "message", message)
	if n.hub != nil {
		n.hub.Broadcast(Event{Type: EventNotify, Data: Notification{Level: level, Message: message, At: time.Now()}})
	}
}
