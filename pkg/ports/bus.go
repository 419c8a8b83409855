package ports

import "context"

// InvalidationBus propagates topology invalidations between dashboard instances.
// A completed mutating operation on one instance must make every instance re-fetch.
type InvalidationBus interface {
	// Publish announces that the topology changed for the given reason.
	Publish(ctx context.Context, reason string) error

	// Subscribe returns a channel of reasons. The channel is closed when ctx is done.
	Subscribe(ctx context.Context) (<-chan string, error)
}
