// Package backend consumes the plant backend's REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/pipenet/internal/logging"
	"github.com/aretw0/pipenet/pkg/domain"
	"github.com/aretw0/pipenet/pkg/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// Backend endpoint paths.
const (
	PathTopology   = "/api/topologia"
	PathSuggest    = "/api/trasy/sugeruj"
	PathStartRoute = "/api/operacje/rozpocznij_trase"
	PathValve      = "/api/zawory/zmien_stan"
)

// Client implements ports.Backend over HTTP.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout *time.Duration
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ ports.Backend = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds every request. Zero disables the timeout.
// It applies to the client chosen by WithHTTPClient regardless of option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = &d
	}
}

// WithRateLimit caps outgoing requests per second. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q: scheme and host are required", baseURL)
	}

	c := &Client{
		base: u,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout != nil {
		hc := *c.http
		hc.Timeout = *c.timeout
		c.http = &hc
	}
	return c, nil
}

type wireSegment struct {
	Name       string `json:"nazwa_segmentu"`
	Start      string `json:"punkt_startowy"`
	End        string `json:"punkt_koncowy"`
	Valve      string `json:"nazwa_zaworu"`
	ValveState string `json:"stan_zaworu"`
	Occupied   bool   `json:"zajety"`
}

type wireRouteRequest struct {
	Start      string   `json:"start"`
	Goal       string   `json:"cel"`
	Via        []string `json:"sprzet_posredni"`
	OpenValves []string `json:"otwarte_zawory,omitempty"`
}

type wireSuggestion struct {
	Segments []string `json:"segmenty_trasy"`
	Valves   []string `json:"sugerowane_zawory"`
}

type wireValveChange struct {
	ValveID string `json:"id_zaworu"`
	State   string `json:"stan"`
}

// FetchTopology implements ports.TopologySource.
// Absent endpoints and valve states are left empty for the model's defaults;
// a segment without a name makes the whole response malformed.
func (c *Client) FetchTopology(ctx context.Context) ([]domain.Segment, error) {
	var wire []wireSegment
	if err := c.do(ctx, http.MethodGet, PathTopology, nil, &wire); err != nil {
		return nil, err
	}
	if wire == nil {
		return nil, fmt.Errorf("%w: topology is not a segment list", domain.ErrMalformedResponse)
	}

	segments := make([]domain.Segment, 0, len(wire))
	for i, w := range wire {
		if strings.TrimSpace(w.Name) == "" {
			return nil, fmt.Errorf("%w: segment %d has no nazwa_segmentu", domain.ErrMalformedResponse, i)
		}
		segments = append(segments, domain.Segment{
			Name:       w.Name,
			Start:      domain.Point(w.Start),
			End:        domain.Point(w.End),
			Valve:      w.Valve,
			ValveState: domain.ParseValveState(w.ValveState),
			Occupied:   w.Occupied,
		})
	}
	return segments, nil
}

// SuggestRoute implements ports.RouteSuggester.
func (c *Client) SuggestRoute(ctx context.Context, req domain.RouteRequest) (*domain.RouteSuggestion, error) {
	var wire wireSuggestion
	body := wireRouteRequest{Start: req.Start, Goal: req.Goal, Via: nonNil(req.Via)}
	if err := c.do(ctx, http.MethodPost, PathSuggest, body, &wire); err != nil {
		return nil, err
	}
	if wire.Segments == nil {
		return nil, fmt.Errorf("%w: suggestion has no segmenty_trasy", domain.ErrMalformedResponse)
	}
	return &domain.RouteSuggestion{Segments: wire.Segments, Valves: nonNil(wire.Valves)}, nil
}

// StartRoute implements ports.OperationStarter.
func (c *Client) StartRoute(ctx context.Context, req domain.RouteRequest, openValves []string) error {
	body := wireRouteRequest{
		Start:      req.Start,
		Goal:       req.Goal,
		Via:        nonNil(req.Via),
		OpenValves: nonNil(openValves),
	}
	return c.do(ctx, http.MethodPost, PathStartRoute, body, nil)
}

// SetValve implements ports.ValveSwitcher.
func (c *Client) SetValve(ctx context.Context, valveID string, state domain.ValveState) error {
	wire := state.Wire()
	if wire == "" {
		return fmt.Errorf("cannot set valve %s to %s", valveID, state)
	}
	return c.do(ctx, http.MethodPost, PathValve, wireValveChange{ValveID: valveID, State: wire}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %s %s: %w", domain.ErrNetwork, method, path, err)
		}
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", domain.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Backend call", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s: status %d: %s", domain.ErrNetwork, method, path, resp.StatusCode, errorMessage(resp.Body))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrMalformedResponse, method, path, err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from a failed response,
// falling back to the raw body prefix.
func errorMessage(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 4096))
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
