package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/pipenet/pkg/adapters/memory"
	"github.com/aretw0/pipenet/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBus_Contract(t *testing.T) {
	ports.RunInvalidationBusContract(t, memory.NewBus())
}

func TestMemoryBus_FanOut(t *testing.T) {
	bus := memory.NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := bus.Subscribe(ctx)
	require.NoError(t, err)
	b, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, "route_started"))
	assert.Equal(t, "route_started", <-a)
	assert.Equal(t, "route_started", <-b)
}

func TestMemoryBus_PublishWithoutSubscribers(t *testing.T) {
	assert.NoError(t, memory.NewBus().Publish(context.Background(), "valve_changed"))
}
