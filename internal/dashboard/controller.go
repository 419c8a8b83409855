package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/pipenet/internal/logging"
	"github.com/aretw0/pipenet/internal/presentation/graph"
	"github.com/aretw0/pipenet/internal/topology"
	"github.com/aretw0/pipenet/pkg/domain"
	"github.com/aretw0/pipenet/pkg/observability"
	"github.com/aretw0/pipenet/pkg/ports"
	"github.com/google/uuid"
)

// Invalidation reasons published after mutating operations.
const (
	ReasonRouteStarted = "route_started"
	ReasonValveChanged = "valve_changed"
)

// Controller decides when to re-fetch the topology, when to reuse the cache,
// and rebuilds both diagram views. The lock is never held across I/O.
type Controller struct {
	cache    *topology.Cache
	renderer ports.DiagramRenderer
	backend  ports.Backend
	notifier ports.Notifier
	observer ports.ChangeObserver
	bus      ports.InvalidationBus
	metrics  *observability.Metrics
	logger   *slog.Logger

	interval time.Duration
	strict   bool
	newToken func() string

	mu         sync.Mutex
	state      State
	rendered   *domain.TopologySnapshot
	lastChange *domain.SnapshotDiff
}

// Option configures the Controller.
type Option func(*Controller)

// WithBackend enables route suggestion, route start and valve changes.
func WithBackend(b ports.Backend) Option {
	return func(c *Controller) {
		c.backend = b
	}
}

// WithNotifier routes operator notifications.
func WithNotifier(n ports.Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// WithChangeObserver is told what changed whenever a newer snapshot is drawn.
func WithChangeObserver(o ports.ChangeObserver) Option {
	return func(c *Controller) {
		c.observer = o
	}
}

// WithInvalidationBus shares invalidations with other dashboard instances.
func WithInvalidationBus(bus ports.InvalidationBus) Option {
	return func(c *Controller) {
		c.bus = bus
	}
}

// WithInterval sets the timer period used by Run.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		c.interval = d
	}
}

// WithStrictCollisions refuses to render views whose identifiers collide.
func WithStrictCollisions(strict bool) Option {
	return func(c *Controller) {
		c.strict = strict
	}
}

// WithMetrics records rebuilds and suppressed ticks.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithTokenGenerator overrides how preview tokens are minted.
func WithTokenGenerator(fn func() string) Option {
	return func(c *Controller) {
		c.newToken = fn
	}
}

// NewController wires the refresh controller.
func NewController(cache *topology.Cache, renderer ports.DiagramRenderer, opts ...Option) *Controller {
	c := &Controller{
		cache:    cache,
		renderer: renderer,
		notifier: nopNotifier{},
		logger:   logging.NewNop(),
		interval: 5 * time.Second,
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status reports the current phase and snapshot metadata.
func (c *Controller) Status() Status {
	c.mu.Lock()
	st := c.state
	change := c.lastChange
	c.mu.Unlock()

	status := Status{
		Phase:       st.Phase(),
		PointerOver: st.PointerOver,
		Highlight:   st.Highlight,
		Pending:     st.Pending,
		LastChange:  change,
	}
	if snap := c.cache.Current(); snap != nil {
		fetched := snap.FetchedAt
		status.Sequence = snap.Sequence
		status.Segments = snap.Len()
		status.FetchedAt = &fetched
	}
	return status
}

// PointerEnter marks the operator as inspecting a diagram.
func (c *Controller) PointerEnter() {
	c.mu.Lock()
	c.state.PointerOver = true
	c.mu.Unlock()
}

// PointerLeave ends the inspection.
func (c *Controller) PointerLeave() {
	c.mu.Lock()
	c.state.PointerOver = false
	c.mu.Unlock()
}

// Tick handles one timer tick. While the operator inspects a diagram and no
// route is drawn, it does nothing. Otherwise it refreshes the cache
// (non-forced) and rebuilds both views without the highlight. A pending
// preview stays confirmable.
func (c *Controller) Tick(ctx context.Context) error {
	c.mu.Lock()
	if c.state.suppressesTick() {
		c.mu.Unlock()
		c.metrics.ObserveSuppressed()
		c.logger.Debug("Tick suppressed while inspecting")
		return nil
	}
	c.state.Highlight = nil
	c.mu.Unlock()

	return c.refresh(ctx, false)
}

// Refresh forces a fetch and rebuilds both views (explicit operator action).
func (c *Controller) Refresh(ctx context.Context) error {
	return c.refresh(ctx, true)
}

func (c *Controller) refresh(ctx context.Context, force bool) error {
	snap, err := c.cache.Snapshot(ctx, force)
	if err != nil {
		c.notifier.Notify(ctx, "error", fmt.Sprintf("Topology refresh failed: %v", err))
		return err
	}
	return c.rebuild(ctx, snap)
}

// Highlight previews a route over the cached snapshot without fetching.
func (c *Controller) Highlight(ctx context.Context, h *domain.HighlightRequest) error {
	snap := c.cache.Current()
	if snap == nil {
		return domain.ErrNoSnapshot
	}

	c.mu.Lock()
	c.state.Highlight = h
	c.state.Pending = h
	c.mu.Unlock()

	c.logger.Info("Route preview started", "token", h.Token, "segments", len(h.Segments))
	return c.rebuild(ctx, snap)
}

// ClearHighlight ends the preview, pending or drawn, and rebuilds with no highlight.
func (c *Controller) ClearHighlight(ctx context.Context) error {
	c.mu.Lock()
	c.state.Highlight = nil
	c.state.Pending = nil
	c.mu.Unlock()

	snap := c.cache.Current()
	if snap == nil {
		return nil
	}
	return c.rebuild(ctx, snap)
}

// SuggestRoute asks the backend for a route and previews it.
func (c *Controller) SuggestRoute(ctx context.Context, req domain.RouteRequest) (*domain.HighlightRequest, error) {
	if c.backend == nil {
		return nil, errors.New("no backend configured")
	}
	req, err := req.Clean()
	if err != nil {
		return nil, fmt.Errorf("suggest route: %w", err)
	}
	sug, err := c.backend.SuggestRoute(ctx, req)
	if err != nil {
		c.notifier.Notify(ctx, "error", fmt.Sprintf("Route suggestion failed: %v", err))
		return nil, fmt.Errorf("suggest route: %w", err)
	}

	h := domain.NewHighlightRequest(c.newToken(), sug.Segments, sug.Valves)
	route := req
	h.Route = &route

	if err := c.Highlight(ctx, h); err != nil && !errors.Is(err, domain.ErrRender) {
		return nil, err
	}
	return h, nil
}

// ConfirmRoute starts the previewed route, opening its suggested valves.
// An empty token confirms whatever preview is pending.
func (c *Controller) ConfirmRoute(ctx context.Context, token string) error {
	if c.backend == nil {
		return errors.New("no backend configured")
	}

	c.mu.Lock()
	h := c.state.Pending
	c.mu.Unlock()

	if h == nil || h.Route == nil || (token != "" && token != h.Token) {
		return domain.ErrNoHighlight
	}

	if err := c.backend.StartRoute(ctx, *h.Route, h.Valves); err != nil {
		c.notifier.Notify(ctx, "error", fmt.Sprintf("Route start failed: %v", err))
		return fmt.Errorf("start route: %w", err)
	}

	c.OperationCompleted(ctx, ReasonRouteStarted)
	c.notifier.Notify(ctx, "success", fmt.Sprintf("Route %s -> %s started", h.Route.Start, h.Route.Goal))
	return c.ClearHighlight(ctx)
}

// SetValve changes a valve through the backend.
func (c *Controller) SetValve(ctx context.Context, valveID string, state domain.ValveState) error {
	if c.backend == nil {
		return errors.New("no backend configured")
	}
	valveID, err := domain.CleanName(valveID)
	if err != nil {
		return fmt.Errorf("set valve: %w", err)
	}
	if valveID == "" {
		return fmt.Errorf("set valve: %w: empty valve id", domain.ErrInvalidInput)
	}
	if err := c.backend.SetValve(ctx, valveID, state); err != nil {
		c.notifier.Notify(ctx, "error", fmt.Sprintf("Valve %s change failed: %v", valveID, err))
		return fmt.Errorf("set valve: %w", err)
	}
	c.OperationCompleted(ctx, ReasonValveChanged)
	return nil
}

// OperationCompleted records a finished mutating operation: the cached snapshot
// is invalidated so the next tick re-fetches, and other instances are told.
func (c *Controller) OperationCompleted(ctx context.Context, reason string) {
	c.cache.Invalidate()
	if c.bus == nil {
		return
	}
	if err := c.bus.Publish(ctx, reason); err != nil {
		c.logger.Warn("Failed to publish invalidation", "reason", reason, "err", err)
	}
}

// ListenInvalidations invalidates the cache on every remote invalidation
// until ctx is done.
func (c *Controller) ListenInvalidations(ctx context.Context) error {
	if c.bus == nil {
		return nil
	}
	ch, err := c.bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe invalidations: %w", err)
	}
	for reason := range ch {
		c.logger.Debug("Invalidation received", "reason", reason)
		c.cache.Invalidate()
	}
	return nil
}

// Run ticks immediately and then on every interval until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.logger.Info("Refresh loop started", "interval", c.interval)
	for {
		if err := c.Tick(ctx); err != nil {
			c.logger.Warn("Refresh cycle failed", "err", err)
		}
		select {
		case <-ctx.Done():
			c.logger.Info("Refresh loop stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// rebuild renders both views from snap with the highlight active at render time.
// Collisions and changes are reported once per newly drawn snapshot.
func (c *Controller) rebuild(ctx context.Context, snap *domain.TopologySnapshot) error {
	c.mu.Lock()
	highlight := c.state.Highlight
	previous := c.rendered
	c.mu.Unlock()

	fresh := snap != previous
	descs := make([]*graph.Description, len(Views))
	for i, view := range Views {
		descs[i] = graph.Build(snap, view.IncludeNodes, highlight)
	}

	// Identifiers do not depend on the view, so the first description speaks for all.
	collisionErr := descs[0].CollisionErr()
	if collisionErr != nil && fresh {
		c.logger.Warn("Node identifiers collide", "sequence", snap.Sequence, "err", collisionErr)
		c.metrics.ObserveCollisions(len(descs[0].Collisions))
	}

	var errs []error
	for i, view := range Views {
		var err error
		if c.strict && collisionErr != nil {
			err = collisionErr
		} else {
			err = c.renderer.Render(ctx, view.Name, descs[i].Mermaid())
		}
		c.metrics.ObserveRebuild(view.Name, err)

		if err != nil {
			c.logger.Error("Diagram rebuild failed", "view", view.Name, "err", err)
			c.notifier.Notify(ctx, "warning", fmt.Sprintf("Diagram %s could not be drawn: %v", view.Name, err))
			errs = append(errs, err)
		}
	}

	var diff *domain.SnapshotDiff
	if fresh {
		diff = domain.Diff(previous, snap)
	}

	c.mu.Lock()
	c.rendered = snap
	if diff != nil {
		c.lastChange = diff
	}
	c.mu.Unlock()

	if diff != nil {
		c.logger.Debug("Topology changed", "sequence", diff.Sequence,
			"added", len(diff.Added), "removed", len(diff.Removed), "changed", len(diff.Changed))
		if c.observer != nil {
			c.observer.TopologyChanged(ctx, diff)
		}
	}

	return errors.Join(errs...)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, string) {}
