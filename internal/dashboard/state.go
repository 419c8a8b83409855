// Package dashboard drives diagram refreshes and route previews.
package dashboard

import (
	"time"

	"github.com/aretw0/pipenet/pkg/domain"
)

// Phase is the refresh state of the dashboard.
type Phase string

const (
	PhaseIdle         Phase = "IDLE"
	PhaseInspecting   Phase = "INSPECTING"
	PhaseHighlighting Phase = "HIGHLIGHTING"
)

// Diagram views rebuilt on every refresh.
const (
	ViewFlowchart = "flowchart"
	ViewCompact   = "compact"
)

// Views lists the containers in rebuild order with whether nodes are declared.
var Views = []struct {
	Name         string
	IncludeNodes bool
}{
	{Name: ViewFlowchart, IncludeNodes: true},
	{Name: ViewCompact, IncludeNodes: false},
}

// CacheMaxAge is the snapshot lifetime paired with a refresh interval. It stays
// below the interval so every timer tick re-fetches even when ticks fire early,
// while a forced refresh right before a tick is still reused.
func CacheMaxAge(interval time.Duration) time.Duration {
	return interval / 2
}

// State is owned by the Controller and only changed under its lock.
type State struct {
	PointerOver bool
	// Highlight is the route currently drawn on the diagrams.
	Highlight *domain.HighlightRequest
	// Pending is the previewed route awaiting confirmation. Timer ticks redraw
	// without it but keep it; only confirm or cancel discard it.
	Pending *domain.HighlightRequest
}

// Phase derives the refresh phase. An active highlight takes precedence over inspection.
func (s State) Phase() Phase {
	switch {
	case s.Highlight != nil:
		return PhaseHighlighting
	case s.PointerOver:
		return PhaseInspecting
	default:
		return PhaseIdle
	}
}

// suppressesTick reports whether a timer tick must leave the display alone.
func (s State) suppressesTick() bool {
	return s.PointerOver && s.Highlight == nil
}

// Status is a read-only view of the controller for the API.
type Status struct {
	Phase       Phase                    `json:"phase"`
	PointerOver bool                     `json:"pointer_over"`
	Highlight   *domain.HighlightRequest `json:"highlight,omitempty"`
	Pending     *domain.HighlightRequest `json:"pending,omitempty"`
	Sequence    uint64                   `json:"sequence"`
	Segments    int                      `json:"segments"`
	FetchedAt   *time.Time               `json:"fetched_at,omitempty"`
	// LastChange is the diff of the most recent drawn snapshot against the one before it.
	LastChange *domain.SnapshotDiff `json:"last_change,omitempty"`
}
