// Package mcp exposes the piping diagrams and route previews as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/pipenet/internal/dashboard"
	"github.com/aretw0/pipenet/internal/logging"
	"github.com/aretw0/pipenet/internal/presentation/board"
	"github.com/aretw0/pipenet/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

// TopologyURI is the resource holding the cached topology snapshot.
const TopologyURI = "pipenet://topology"

// Dashboard is the part of the refresh controller exposed to agents.
type Dashboard interface {
	Status() dashboard.Status
	Refresh(ctx context.Context) error
	SuggestRoute(ctx context.Context, req domain.RouteRequest) (*domain.HighlightRequest, error)
	ClearHighlight(ctx context.Context) error
}

// Diagrams gives read access to mounted diagram containers.
type Diagrams interface {
	Container(name string) (board.Container, bool)
}

// Topology gives read access to the cached snapshot without I/O.
type Topology interface {
	Current() *domain.TopologySnapshot
}

// Server wraps the dashboard and exposes it as an MCP server.
type Server struct {
	dashboard Dashboard
	diagrams  Diagrams
	topology  Topology
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(d Dashboard, diagrams Diagrams, topology Topology, version string, opts ...Option) *Server {
	s := &Server{
		dashboard: d,
		diagrams:  diagrams,
		topology:  topology,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("pipenet-mcp", strings.TrimSpace(version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for custom transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop MCP server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_diagram",
		mcp.WithDescription("Get the Mermaid source of a piping diagram view."),
		mcp.WithString("view",
			mcp.Description("Diagram view: flowchart (with equipment nodes) or compact (segments only)"),
			mcp.Enum(dashboard.ViewFlowchart, dashboard.ViewCompact),
		),
	), s.handleGetDiagram)

	s.mcpServer.AddTool(mcp.NewTool("suggest_route",
		mcp.WithDescription("Ask the plant backend for a route between two pieces of equipment and highlight it on the dashboard."),
		mcp.WithString("start", mcp.Required(), mcp.Description("Source equipment, e.g. R1")),
		mcp.WithString("goal", mcp.Required(), mcp.Description("Destination equipment, e.g. B3")),
		mcp.WithArray("via", mcp.Description("Intermediate equipment the route must pass"), mcp.WithStringItems()),
		mcp.WithOutputSchema[domain.HighlightRequest](),
	), mcp.NewStructuredToolHandler(s.handleSuggestRoute))

	s.mcpServer.AddTool(mcp.NewTool("clear_highlight",
		mcp.WithDescription("Remove the route preview from the dashboard."),
	), s.handleClearHighlight)

	s.mcpServer.AddTool(mcp.NewTool("refresh_topology",
		mcp.WithDescription("Re-fetch the pipe topology from the backend and rebuild the diagrams."),
		mcp.WithOutputSchema[dashboard.Status](),
	), mcp.NewStructuredToolHandler(s.handleRefresh))
}

func (s *Server) handleGetDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view := request.GetString("view", dashboard.ViewFlowchart)
	c, ok := s.diagrams.Container(view)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("diagram %q has not been rendered yet", view)), nil
	}
	if c.Error != "" && c.Source == "" {
		return mcp.NewToolResultError(fmt.Sprintf("diagram %q failed to render: %s", view, c.Error)), nil
	}
	return mcp.NewToolResultText(c.Source), nil
}

func (s *Server) handleSuggestRoute(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (domain.HighlightRequest, error) {
	var req domain.RouteRequest
	if err := mapstructure.Decode(args, &req); err != nil {
		return domain.HighlightRequest{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if req.Start == "" || req.Goal == "" {
		return domain.HighlightRequest{}, errors.New("start and goal are required")
	}

	h, err := s.dashboard.SuggestRoute(ctx, req)
	if err != nil {
		s.logger.Warn("MCP SuggestRoute failed", "err", err)
		return domain.HighlightRequest{}, fmt.Errorf("suggest route failed: %w", err)
	}
	return *h, nil
}

func (s *Server) handleClearHighlight(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.dashboard.ClearHighlight(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("clear failed: %v", err)), nil
	}
	return mcp.NewToolResultText("highlight cleared"), nil
}

func (s *Server) handleRefresh(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (dashboard.Status, error) {
	if err := s.dashboard.Refresh(ctx); err != nil {
		return dashboard.Status{}, fmt.Errorf("refresh failed: %w", err)
	}
	return s.dashboard.Status(), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(TopologyURI, "Cached pipe topology",
		mcp.WithResourceDescription("Segments of the last fetched topology snapshot"),
		mcp.WithMIMEType("application/json"),
	), s.readTopology)
}

func (s *Server) readTopology(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	snap := s.topology.Current()
	if snap == nil {
		return nil, domain.ErrNoSnapshot
	}
	jsonBytes, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode topology: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      TopologyURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
