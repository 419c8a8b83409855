package pipenet

import (
	"time"

	"github.com/aretw0/pipenet/internal/presentation/graph"
	"github.com/aretw0/pipenet/pkg/domain"
)

type renderConfig struct {
	includeNodes bool
	highlight    *domain.HighlightRequest
	strict       bool
}

// RenderOption customises Render.
type RenderOption func(*renderConfig)

// WithoutNodes omits node declarations, producing the compact edges-only view.
func WithoutNodes() RenderOption {
	return func(c *renderConfig) {
		c.includeNodes = false
	}
}

// WithHighlight marks the named segments as a suggested route.
func WithHighlight(segments ...string) RenderOption {
	return func(c *renderConfig) {
		c.highlight = domain.NewHighlightRequest("", segments, nil)
	}
}

// WithStrictCollisions fails when two point names sanitize to the same identifier.
func WithStrictCollisions() RenderOption {
	return func(c *renderConfig) {
		c.strict = true
	}
}

// Render builds the Mermaid flowchart for segments, in input order.
func Render(segments []domain.Segment, opts ...RenderOption) (string, error) {
	cfg := renderConfig{includeNodes: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	desc := graph.Build(domain.NewSnapshot(segments, time.Time{}, 0), cfg.includeNodes, cfg.highlight)
	if cfg.strict {
		if err := desc.CollisionErr(); err != nil {
			return "", err
		}
	}
	return desc.Mermaid(), nil
}
