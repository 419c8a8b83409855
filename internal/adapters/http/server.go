// Package http serves the operator dashboard: diagram containers, route
// previews, valve control and a server-sent event stream.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/pipenet"
	"github.com/aretw0/pipenet/internal/dashboard"
	"github.com/aretw0/pipenet/internal/logging"
	"github.com/aretw0/pipenet/internal/presentation/board"
	"github.com/aretw0/pipenet/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Controller is the part of the refresh controller the dashboard drives.
type Controller interface {
	Status() dashboard.Status
	PointerEnter()
	PointerLeave()
	Refresh(ctx context.Context) error
	SuggestRoute(ctx context.Context, req domain.RouteRequest) (*domain.HighlightRequest, error)
	ConfirmRoute(ctx context.Context, token string) error
	ClearHighlight(ctx context.Context) error
	SetValve(ctx context.Context, valveID string, state domain.ValveState) error
}

// Diagrams exposes the mounted diagram containers.
type Diagrams interface {
	Container(name string) (board.Container, bool)
	Containers() []board.Container
}

// Server holds the dashboard handlers.
type Server struct {
	Controller Controller
	Diagrams   Diagrams
	Hub        *board.Hub

	logger   *slog.Logger
	gatherer prometheus.Gatherer
	validate *validator.Validate
	api      *apiSpec
	strict   bool
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithRequestValidation checks requests against the embedded OpenAPI document.
func WithRequestValidation(enabled bool) Option {
	return func(s *Server) {
		s.strict = enabled
	}
}

// NewHandler creates the dashboard HTTP handler.
func NewHandler(ctrl Controller, diagrams Diagrams, hub *board.Hub, opts ...Option) (http.Handler, error) {
	s := &Server{
		Controller: ctrl,
		Diagrams:   diagrams,
		Hub:        hub,
		logger:     logging.NewNop(),
		gatherer:   prometheus.DefaultGatherer,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}

	api, err := loadAPISpec()
	if err != nil {
		return nil, err
	}
	s.api = api

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if s.strict {
		r.Use(s.api.validateRequests(s.logger))
	}

	r.Get("/", s.GetIndex)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/events", s.SubscribeEvents)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.GetState)
		r.Get("/diagrams", s.ListDiagrams)
		r.Get("/diagrams/{view}", s.GetDiagram)
		r.Post("/pointer/enter", s.PointerEnter)
		r.Post("/pointer/leave", s.PointerLeave)
		r.Post("/refresh", s.Refresh)
		r.Post("/routes/suggest", s.SuggestRoute)
		r.Post("/routes/confirm", s.ConfirmRoute)
		r.Post("/routes/cancel", s.CancelRoute)
		r.Post("/valves/{id}", s.SetValve)
	})

	return enableCORS(otelhttp.NewHandler(r, "pipenet-dashboard")), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetIndex serves the dashboard page.
func (s *Server) GetIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "pipenet-dashboard",
		"version":     strings.TrimSpace(pipenet.Version),
		"api_version": s.api.version(),
	})
}

// GetOpenAPI serves the embedded API document.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(openapiYAML)
}

// GetState handles the GET /api/state request.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Controller.Status())
}

// ListDiagrams handles the GET /api/diagrams request.
func (s *Server) ListDiagrams(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Diagrams.Containers())
}

// GetDiagram handles the GET /api/diagrams/{view} request.
func (s *Server) GetDiagram(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")
	c, ok := s.Diagrams.Container(view)
	if !ok {
		http.Error(w, fmt.Sprintf("Diagram %q not rendered", view), http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

// PointerEnter handles the POST /api/pointer/enter request.
func (s *Server) PointerEnter(w http.ResponseWriter, r *http.Request) {
	s.Controller.PointerEnter()
	w.WriteHeader(http.StatusNoContent)
}

// PointerLeave handles the POST /api/pointer/leave request.
func (s *Server) PointerLeave(w http.ResponseWriter, r *http.Request) {
	s.Controller.PointerLeave()
	w.WriteHeader(http.StatusNoContent)
}

// Refresh handles the POST /api/refresh request.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := s.Controller.Refresh(r.Context()); err != nil {
		s.writeError(w, "Refresh", err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Controller.Status())
}

// SuggestRoute handles the POST /api/routes/suggest request.
func (s *Server) SuggestRoute(w http.ResponseWriter, r *http.Request) {
	var body domain.RouteRequest
	if !s.decode(w, r, "SuggestRoute", &body) {
		return
	}

	h, err := s.Controller.SuggestRoute(r.Context(), body)
	if err != nil {
		s.writeError(w, "SuggestRoute", err)
		return
	}
	s.writeJSON(w, http.StatusOK, h)
}

type confirmRequest struct {
	Token string `json:"token"`
}

// ConfirmRoute handles the POST /api/routes/confirm request.
func (s *Server) ConfirmRoute(w http.ResponseWriter, r *http.Request) {
	var body confirmRequest
	if r.ContentLength != 0 {
		if !s.decode(w, r, "ConfirmRoute", &body) {
			return
		}
	}

	if err := s.Controller.ConfirmRoute(r.Context(), body.Token); err != nil {
		s.writeError(w, "ConfirmRoute", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelRoute handles the POST /api/routes/cancel request.
func (s *Server) CancelRoute(w http.ResponseWriter, r *http.Request) {
	if err := s.Controller.ClearHighlight(r.Context()); err != nil {
		s.writeError(w, "CancelRoute", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type valveRequest struct {
	State string `json:"state" validate:"required"`
}

// SetValve handles the POST /api/valves/{id} request.
func (s *Server) SetValve(w http.ResponseWriter, r *http.Request) {
	var body valveRequest
	if !s.decode(w, r, "SetValve", &body) {
		return
	}

	state := domain.ParseValveState(body.State)
	if state == domain.ValveUnknown {
		http.Error(w, fmt.Sprintf("Invalid valve state %q", body.State), http.StatusBadRequest)
		s.logger.Warn("SetValve: Invalid state", "state", body.State)
		return
	}

	if err := s.Controller.SetValve(r.Context(), chi.URLParam(r, "id"), state); err != nil {
		s.writeError(w, "SetValve", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads and validates a JSON body, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, op string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn(op+": Invalid request body", "err", err)
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		s.logger.Warn(op+": Validation failed", "err", err)
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoHighlight), errors.Is(err, domain.ErrNoSnapshot):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrIdentifierCollision), errors.Is(err, domain.ErrRender):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Warn(op+" rejected", "err", err)
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), code)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}
