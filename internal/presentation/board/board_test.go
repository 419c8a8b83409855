package board_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/pipenet/internal/presentation/board"
	"github.com/aretw0/pipenet/internal/presentation/graph"
	"github.com/aretw0/pipenet/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generated(segs ...domain.Segment) string {
	return graph.Build(&domain.TopologySnapshot{Segments: segs}, true, nil).Mermaid()
}

func TestBoard_RenderMountsAndBroadcasts(t *testing.T) {
	hub := board.NewHub(nil)
	events, cancel := hub.Subscribe()
	defer cancel()

	b := board.New(hub, nil)
	src := generated(domain.Segment{Name: "S1", Start: "R1", End: "F1"})

	require.NoError(t, b.Render(context.Background(), "flowchart", src))

	c, ok := b.Container("flowchart")
	require.True(t, ok)
	assert.Equal(t, src, c.Source)
	assert.True(t, c.Processed)
	assert.EqualValues(t, 1, c.Version)

	select {
	case ev := <-events:
		assert.Equal(t, board.EventDiagram, ev.Type)
		mounted := ev.Data.(board.Container)
		assert.Equal(t, "flowchart", mounted.Name)
	case <-time.After(time.Second):
		t.Fatal("expected diagram event")
	}
}

func TestBoard_RejectedSourceKeepsPreviousDiagram(t *testing.T) {
	b := board.New(nil, nil)
	ctx := context.Background()
	good := generated(domain.Segment{Name: "S1", Start: "R1", End: "F1"})
	require.NoError(t, b.Render(ctx, "flowchart", good))

	// "end" is a reserved word in Mermaid flowcharts.
	bad := generated(domain.Segment{Name: "S2", Start: "R1", End: "end"})
	err := b.Render(ctx, "flowchart", bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRender)

	c, _ := b.Container("flowchart")
	assert.Equal(t, good, c.Source)
	assert.False(t, c.Processed, "marker stays cleared after a rejected render")
	assert.NotEmpty(t, c.Error)
	assert.EqualValues(t, 1, c.Version)

	require.NoError(t, b.Render(ctx, "flowchart", good))
	c, _ = b.Container("flowchart")
	assert.True(t, c.Processed)
	assert.Empty(t, c.Error)
	assert.EqualValues(t, 2, c.Version)
}

func TestBoard_ContainersSorted(t *testing.T) {
	b := board.New(nil, nil)
	ctx := context.Background()
	src := generated(domain.Segment{Name: "S1", Start: "R1", End: "F1"})
	require.NoError(t, b.Render(ctx, "flowchart", src))
	require.NoError(t, b.Render(ctx, "compact", src))

	cs := b.Containers()
	require.Len(t, cs, 2)
	assert.Equal(t, "compact", cs[0].Name)
	assert.Equal(t, "flowchart", cs[1].Name)
}

func TestNotifier_Broadcasts(t *testing.T) {
	hub := board.NewHub(nil)
	events, cancel := hub.Subscribe()
	defer cancel()

	board.NewNotifier(hub, nil).Notify(context.Background(), "error", "backend unavailable")

	ev := <-events
	assert.Equal(t, board.EventNotify, ev.Type)
	n := ev.Data.(board.Notification)
	assert.Equal(t, "backend unavailable", n.Message)
}

func TestBoard_TopologyChangedBroadcastsDiff(t *testing.T) {
	hub := board.NewHub(nil)
	events, cancel := hub.Subscribe()
	defer cancel()

	b := board.New(hub, nil)
	b.TopologyChanged(context.Background(), nil)
	b.TopologyChanged(context.Background(), &domain.SnapshotDiff{Sequence: 4, Changed: []string{"S2"}})

	ev := <-events
	assert.Equal(t, board.EventTopology, ev.Type)
	data, err := ev.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"sequence":4,"changed":["S2"]}`, data)
	assert.Empty(t, events)
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := board.NewHub(nil)
	ch, cancel := hub.Subscribe()
	assert.Equal(t, 1, hub.Subscribers())

	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Subscribers())

	// Broadcasting with no subscribers is a no-op.
	hub.Broadcast(board.Event{Type: "noop"})
}
