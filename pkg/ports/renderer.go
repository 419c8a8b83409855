package ports

import (
	"context"

	"github.com/aretw0/pipenet/pkg/domain"
)

// DiagramRenderer hands a generated diagram description to the rendering collaborator.
// Implementations must clear any "already processed" marker on the target container
// before mounting the new description, since containers are reused across rebuilds.
type DiagramRenderer interface {
	// Render mounts source into the named container.
	// Rejected descriptions are reported with an error wrapping domain.ErrRender.
	Render(ctx context.Context, container string, source string) error
}

// Notifier delivers transient, non-blocking operator notifications.
type Notifier interface {
	Notify(ctx context.Context, level, message string)
}

// ChangeObserver is told which segments differ each time a newer snapshot is drawn,
// so clients can tell a real topology change from a redraw.
type ChangeObserver interface {
	TopologyChanged(ctx context.Context, diff *domain.SnapshotDiff)
}
