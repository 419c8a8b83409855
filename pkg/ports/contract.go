package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunInvalidationBusContract runs a suite of tests to verify that an InvalidationBus implementation
// adheres to the defined interface contract.
func RunInvalidationBusContract(t *testing.T, bus InvalidationBus) {
	t.Helper()

	t.Run("Publish reaches subscriber", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch, err := bus.Subscribe(ctx)
		require.NoError(t, err, "Subscribe should not return error")

		// Subscriptions may register asynchronously; keep publishing until one arrives.
		deadline := time.After(2 * time.Second)
		tick := time.NewTicker(20 * time.Millisecond)
		defer tick.Stop()
		for {
			require.NoError(t, bus.Publish(ctx, "valve_changed"))
			select {
			case reason := <-ch:
				assert.Equal(t, "valve_changed", reason)
				return
			case <-tick.C:
			case <-deadline:
				t.Fatal("subscriber did not receive the invalidation")
			}
		}
	})

	t.Run("Channel closes with context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		ch, err := bus.Subscribe(ctx)
		require.NoError(t, err)

		cancel()

		timeout := time.After(2 * time.Second)
		for {
			select {
			case _, ok := <-ch:
				if !ok {
					return
				}
			case <-timeout:
				t.Fatal("subscription channel was not closed after cancel")
			}
		}
	})
}
