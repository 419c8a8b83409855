// Package cli assembles the dashboard from configuration and runs its commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/pipenet"
	"github.com/aretw0/pipenet/internal/adapters/backend"
	httpAdapter "github.com/aretw0/pipenet/internal/adapters/http"
	"github.com/aretw0/pipenet/internal/config"
	"github.com/aretw0/pipenet/internal/dashboard"
	"github.com/aretw0/pipenet/internal/presentation/board"
	"github.com/aretw0/pipenet/internal/topology"
	"github.com/aretw0/pipenet/pkg/adapters/mcp"
	"github.com/aretw0/pipenet/pkg/adapters/memory"
	"github.com/aretw0/pipenet/pkg/adapters/redis"
	"github.com/aretw0/pipenet/pkg/observability"
	"github.com/aretw0/pipenet/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// App is a fully wired dashboard.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	Registry   *prometheus.Registry
	Metrics    *observability.Metrics
	Backend    *backend.Client
	Cache      *topology.Cache
	Hub        *board.Hub
	Board      *board.Board
	Controller *dashboard.Controller
	Bus        ports.InvalidationBus

	closers []func() error
}

// NewApp wires every component from cfg.
func NewApp(cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.Metrics = observability.NewMetrics(app.Registry)

	client, err := backend.New(cfg.Backend.URL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithRateLimit(cfg.Backend.RateLimit, cfg.Backend.Burst),
		backend.WithLogger(logger.With("component", "backend")),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing backend client: %w", err)
	}
	app.Backend = client

	app.Cache = topology.NewCache(client,
		topology.WithLogger(logger.With("component", "cache")),
		topology.WithMetrics(app.Metrics),
		topology.WithMaxAge(dashboard.CacheMaxAge(cfg.Dashboard.RefreshInterval)),
	)

	app.Hub = board.NewHub(logger.With("component", "hub"))
	app.Board = board.New(app.Hub, logger.With("component", "board"))
	app.Bus = app.createBus()

	app.Controller = dashboard.NewController(app.Cache, app.Board,
		dashboard.WithBackend(client),
		dashboard.WithNotifier(board.NewNotifier(app.Hub, logger)),
		dashboard.WithChangeObserver(app.Board),
		dashboard.WithInvalidationBus(app.Bus),
		dashboard.WithInterval(cfg.Dashboard.RefreshInterval),
		dashboard.WithStrictCollisions(cfg.Dashboard.StrictCollisions),
		dashboard.WithMetrics(app.Metrics),
		dashboard.WithLogger(logger.With("component", "controller")),
	)

	return app, nil
}

// createBus uses Redis when an address is configured, otherwise an in-process bus.
func (a *App) createBus() ports.InvalidationBus {
	rc := a.Config.Redis
	if rc.Address == "" {
		return memory.NewBus()
	}
	bus := redis.New(rc.Address, rc.Password, rc.DB,
		redis.WithChannel(rc.Channel),
		redis.WithLogger(a.Logger.With("component", "bus")),
	)
	a.closers = append(a.closers, bus.Close)
	return bus
}

// Handler builds the dashboard HTTP handler.
func (a *App) Handler() (http.Handler, error) {
	return httpAdapter.NewHandler(a.Controller, a.Board, a.Hub,
		httpAdapter.WithLogger(a.Logger.With("component", "http")),
		httpAdapter.WithGatherer(a.Registry),
		httpAdapter.WithRequestValidation(a.Config.Dashboard.ValidateRequests),
	)
}

// MCP builds the MCP server over this dashboard.
func (a *App) MCP() *mcp.Server {
	return mcp.NewServer(a.Controller, a.Board, a.Cache, pipenet.Version,
		mcp.WithLogger(a.Logger.With("component", "mcp")))
}

// Serve runs the refresh loop, the invalidation listener and the HTTP server
// until ctx is done or one of them fails.
func (a *App) Serve(ctx context.Context) error {
	handler, err := a.Handler()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              a.Config.Dashboard.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Controller.Run(ctx)
	})
	g.Go(func() error {
		return a.Controller.ListenInvalidations(ctx)
	})
	g.Go(func() error {
		a.Logger.Info("Dashboard listening", "address", srv.Addr, "backend", a.Config.Backend.URL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("Graceful shutdown did not complete", "err", err)
			return srv.Close()
		}
		return nil
	})

	return g.Wait()
}

// Close releases external connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
