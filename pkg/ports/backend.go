package ports

import (
	"context"

	"github.com/aretw0/pipenet/pkg/domain"
)

// TopologySource fetches the pipe segments of the plant.
type TopologySource interface {
	// FetchTopology returns the segments in backend order.
	// Failures wrap domain.ErrNetwork (or domain.ErrMalformedResponse).
	FetchTopology(ctx context.Context) ([]domain.Segment, error)
}

// RouteSuggester asks the backend for a route between two pieces of equipment.
type RouteSuggester interface {
	SuggestRoute(ctx context.Context, req domain.RouteRequest) (*domain.RouteSuggestion, error)
}

// OperationStarter starts a routing operation that reserves the route's segments.
type OperationStarter interface {
	StartRoute(ctx context.Context, req domain.RouteRequest, openValves []string) error
}

// ValveSwitcher changes the position of a single valve.
type ValveSwitcher interface {
	SetValve(ctx context.Context, valveID string, state domain.ValveState) error
}

// Backend aggregates every backend capability the dashboard consumes.
type Backend interface {
	TopologySource
	RouteSuggester
	OperationStarter
	ValveSwitcher
}
