package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/pipenet"
	"github.com/aretw0/pipenet/internal/dashboard"
	"github.com/aretw0/pipenet/internal/presentation/graph"
	"github.com/aretw0/pipenet/internal/presentation/tui"
	"github.com/aretw0/pipenet/pkg/domain"
	"github.com/muesli/termenv"
)

func setup(opts Options) (*App, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return NewApp(cfg, createLogger(cfg.Log, os.Stderr))
}

// RunServe starts the dashboard until ctx is cancelled.
func RunServe(ctx context.Context, opts Options, quiet bool) error {
	app, err := setup(opts)
	if err != nil {
		return err
	}
	defer app.Close()

	if !quiet {
		tui.PrintBanner(os.Stdout, pipenet.Version)
		printSystemMessage(os.Stdout, "Dashboard on %s, backend %s", app.Config.Dashboard.Listen, app.Config.Backend.URL)
	}
	return app.Serve(ctx)
}

// GraphOptions selects what the graph command prints.
type GraphOptions struct {
	View  string
	Route *domain.RouteRequest
}

// RunGraph fetches the topology once and prints a Mermaid view.
func RunGraph(ctx context.Context, opts Options, gopts GraphOptions, out io.Writer) error {
	app, err := setup(opts)
	if err != nil {
		return err
	}
	defer app.Close()

	snap, err := app.Cache.Snapshot(ctx, true)
	if err != nil {
		return err
	}

	var highlight *domain.HighlightRequest
	if gopts.Route != nil {
		sug, err := app.Backend.SuggestRoute(ctx, *gopts.Route)
		if err != nil {
			return err
		}
		highlight = domain.NewHighlightRequest("", sug.Segments, sug.Valves)
	}

	desc := graph.Build(snap, gopts.View != dashboard.ViewCompact, highlight)
	if app.Config.Dashboard.StrictCollisions {
		if err := desc.CollisionErr(); err != nil {
			return err
		}
	}
	for _, c := range desc.Collisions {
		app.Logger.Warn("Node identifiers collide", "id", c.ID, "names", c.Names)
	}

	_, err = fmt.Fprint(out, desc.Mermaid())
	return err
}

// RunStatus fetches the topology once and prints a markdown report.
func RunStatus(ctx context.Context, opts Options, out *os.File) error {
	app, err := setup(opts)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Controller.Refresh(ctx); err != nil {
		return err
	}

	snap := app.Cache.Current()
	desc := graph.Build(snap, true, nil)

	styled := tui.IsTerminal(out)
	render := tui.NewRenderer(styled)
	report, err := render(tui.StatusReport(app.Controller.Status(), snap, desc))
	if err != nil {
		return err
	}
	fmt.Fprint(out, report)

	profile := termenv.Ascii
	if styled {
		profile = termenv.EnvColorProfile()
	}
	fmt.Fprintln(out, tui.Legend(profile, desc))
	return nil
}

// RunMCP serves the MCP tools over stdio or SSE.
func RunMCP(ctx context.Context, opts Options, transport, addr string) error {
	app, err := setup(opts)
	if err != nil {
		return err
	}
	defer app.Close()

	// Populate the cache so get_diagram has something to return.
	if err := app.Controller.Refresh(ctx); err != nil {
		app.Logger.Warn("Initial topology fetch failed", "err", err)
	}
	go func() {
		_ = app.Controller.Run(ctx)
	}()

	srv := app.MCP()
	switch transport {
	case "stdio":
		app.Logger.Info("Starting MCP Server (Stdio)")
		return srv.ServeStdio()
	case "sse":
		baseURL := "http://" + addr
		if strings.HasPrefix(addr, ":") {
			baseURL = "http://localhost" + addr
		}
		return srv.ServeSSE(ctx, addr, baseURL)
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	}
}
