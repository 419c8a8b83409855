// Package redis shares topology invalidations between dashboard instances
// through Redis pub/sub.
package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/pipenet/internal/logging"
	backend "github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "pipenet:topology:invalidate"

// Bus implements ports.InvalidationBus using Redis PUBLISH/SUBSCRIBE.
type Bus struct {
	client  *backend.Client
	channel string
	logger  *slog.Logger
}

type Option func(*Bus)

// WithChannel sets the pub/sub channel name.
func WithChannel(channel string) Option {
	return func(b *Bus) {
		b.channel = channel
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// New creates a bus connected to the Redis server at address.
func New(address, password string, db int, opts ...Option) *Bus {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a bus from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Bus {
	bus := &Bus{
		client:  client,
		channel: DefaultChannel,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(bus)
	}
	return bus
}

// Channel returns the configured channel name.
func (b *Bus) Channel() string {
	return b.channel
}

// Ping checks connectivity.
func (b *Bus) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Publish announces an invalidation to every subscribed instance.
func (b *Bus) Publish(ctx context.Context, reason string) error {
	if err := b.client.Publish(ctx, b.channel, reason).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Subscribe streams invalidation reasons until ctx is done.
func (b *Bus) Subscribe(ctx context.Context) (<-chan string, error) {
	sub := b.client.Subscribe(ctx, b.channel)
	// Wait for the subscription confirmation so early publishes are not lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	b.logger.Debug("Subscribed to invalidations", "channel", b.channel)
	return out, nil
}

// Close releases the underlying client.
func (b *Bus) Close() error {
	return b.client.Close()
}
