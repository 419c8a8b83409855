// Package memory provides in-process adapters for single-instance deployments and tests.
package memory

import (
	"context"
	"sync"
)

// Bus implements ports.InvalidationBus inside one process.
// Safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan string
	nextID int
	buffer int
}

// NewBus creates a new in-memory bus.
func NewBus() *Bus {
	return &Bus{
		subs:   make(map[int]chan string),
		buffer: 16,
	}
}

// Publish delivers reason to every subscriber. Full subscriber buffers drop
// the message; one pending invalidation is as good as many.
func (b *Bus) Publish(ctx context.Context, reason string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- reason:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber until ctx is done.
func (b *Bus) Subscribe(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, b.buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(ch)
		b.mu.Unlock()
	}()

	return ch, nil
}
