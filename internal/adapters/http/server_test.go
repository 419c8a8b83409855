package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/pipenet/internal/dashboard"
	"github.com/aretw0/pipenet/internal/presentation/board"
	"github.com/aretw0/pipenet/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockController records the calls made by the handlers.
type MockController struct {
	pointer    []string
	refreshErr error
	suggestErr error
	confirmErr error
	confirmed  string
	cleared    int
	valves     map[string]domain.ValveState
	suggested  *domain.RouteRequest
}

func (m *MockController) Status() dashboard.Status {
	return dashboard.Status{Phase: dashboard.PhaseIdle, Sequence: 3, Segments: 2}
}
func (m *MockController) PointerEnter() { m.pointer = append(m.pointer, "enter") }
func (m *MockController) PointerLeave() { m.pointer = append(m.pointer, "leave") }
func (m *MockController) Refresh(ctx context.Context) error {
	return m.refreshErr
}
func (m *MockController) SuggestRoute(ctx context.Context, req domain.RouteRequest) (*domain.HighlightRequest, error) {
	if m.suggestErr != nil {
		return nil, m.suggestErr
	}
	m.suggested = &req
	return domain.NewHighlightRequest("tok", []string{"S1"}, []string{"V1"}), nil
}
func (m *MockController) ConfirmRoute(ctx context.Context, token string) error {
	m.confirmed = token
	return m.confirmErr
}
func (m *MockController) ClearHighlight(ctx context.Context) error {
	m.cleared++
	return nil
}
func (m *MockController) SetValve(ctx context.Context, valveID string, state domain.ValveState) error {
	if m.valves == nil {
		m.valves = map[string]domain.ValveState{}
	}
	m.valves[valveID] = state
	return nil
}

func newTestHandler(t *testing.T, ctrl Controller, opts ...Option) (http.Handler, *board.Board, *board.Hub) {
	t.Helper()
	hub := board.NewHub(nil)
	b := board.New(hub, nil)
	opts = append([]Option{WithGatherer(prometheus.NewRegistry())}, opts...)
	handler, err := NewHandler(ctrl, b, hub, opts...)
	require.NoError(t, err)
	return handler, b, hub
}

func do(handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestGetHealth(t *testing.T) {
	handler, _, _ := newTestHandler(t, &MockController{})
	rr := do(handler, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	handler, _, _ := newTestHandler(t, &MockController{})
	rr := do(handler, "GET", "/info", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "pipenet-dashboard", resp["app"])
	assert.NotEmpty(t, resp["version"])
	assert.Equal(t, "0.1.0", resp["api_version"])
}

func TestGetIndexAndOpenAPI(t *testing.T) {
	handler, _, _ := newTestHandler(t, &MockController{})

	rr := do(handler, "GET", "/", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `removeAttribute('data-processed')`)

	rr = do(handler, "GET", "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/api/routes/suggest")
}

func TestMetricsEndpoint(t *testing.T) {
	handler, _, _ := newTestHandler(t, &MockController{})
	rr := do(handler, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGetState(t *testing.T) {
	handler, _, _ := newTestHandler(t, &MockController{})
	rr := do(handler, "GET", "/api/state", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var st dashboard.Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	assert.Equal(t, dashboard.PhaseIdle, st.Phase)
	assert.EqualValues(t, 3, st.Sequence)
}

func TestDiagrams(t *testing.T) {
	handler, b, _ := newTestHandler(t, &MockController{})
	require.NoError(t, b.Render(context.Background(), "flowchart", "graph LR\n    A -- \"S1\" --> B\n"))

	rr := do(handler, "GET", "/api/diagrams/flowchart", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var c board.Container
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &c))
	assert.True(t, c.Processed)
	assert.Contains(t, c.Source, "A -- \"S1\" --> B")

	rr = do(handler, "GET", "/api/diagrams/compact", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(handler, "GET", "/api/diagrams", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	var list []board.Container
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestPointer(t *testing.T) {
	ctrl := &MockController{}
	handler, _, _ := newTestHandler(t, ctrl)

	assert.Equal(t, http.StatusNoContent, do(handler, "POST", "/api/pointer/enter", nil).Code)
	assert.Equal(t, http.StatusNoContent, do(handler, "POST", "/api/pointer/leave", nil).Code)
	assert.Equal(t, []string{"enter", "leave"}, ctrl.pointer)
}

func TestRefresh_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"OK", nil, http.StatusOK},
		{"Network", domain.ErrNetwork, http.StatusBadGateway},
		{"Malformed", domain.ErrMalformedResponse, http.StatusBadGateway},
		{"Render", domain.ErrRender, http.StatusUnprocessableEntity},
		{"InvalidInput", domain.ErrNameTooLong, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, _ := newTestHandler(t, &MockController{refreshErr: tt.err})
			assert.Equal(t, tt.want, do(handler, "POST", "/api/refresh", nil).Code)
		})
	}
}

func TestSuggestRoute(t *testing.T) {
	ctrl := &MockController{}
	handler, _, _ := newTestHandler(t, ctrl)

	rr := do(handler, "POST", "/api/routes/suggest", map[string]any{"start": "R1", "goal": "B2"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var h domain.HighlightRequest
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &h))
	assert.Equal(t, "tok", h.Token)
	assert.Equal(t, "B2", ctrl.suggested.Goal)
}

func TestSuggestRoute_Validation(t *testing.T) {
	handler, _, _ := newTestHandler(t, &MockController{})

	tests := []struct {
		name string
		body any
	}{
		{"MissingGoal", map[string]any{"start": "R1"}},
		{"SameEndpoints", map[string]any{"start": "R1", "goal": "R1"}},
		{"NotJSON", "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, do(handler, "POST", "/api/routes/suggest", tt.body).Code)
		})
	}
}

func TestSuggestRoute_NoSnapshot(t *testing.T) {
	handler, _, _ := newTestHandler(t, &MockController{suggestErr: domain.ErrNoSnapshot})
	rr := do(handler, "POST", "/api/routes/suggest", map[string]any{"start": "R1", "goal": "B2"})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestConfirmAndCancel(t *testing.T) {
	ctrl := &MockController{}
	handler, _, _ := newTestHandler(t, ctrl)

	assert.Equal(t, http.StatusNoContent, do(handler, "POST", "/api/routes/confirm", map[string]any{"token": "tok"}).Code)
	assert.Equal(t, "tok", ctrl.confirmed)

	assert.Equal(t, http.StatusNoContent, do(handler, "POST", "/api/routes/confirm", nil).Code)
	assert.Equal(t, "", ctrl.confirmed)

	assert.Equal(t, http.StatusNoContent, do(handler, "POST", "/api/routes/cancel", nil).Code)
	assert.Equal(t, 1, ctrl.cleared)

	ctrl.confirmErr = domain.ErrNoHighlight
	assert.Equal(t, http.StatusConflict, do(handler, "POST", "/api/routes/confirm", nil).Code)
}

func TestSetValve(t *testing.T) {
	ctrl := &MockController{}
	handler, _, _ := newTestHandler(t, ctrl)

	assert.Equal(t, http.StatusNoContent, do(handler, "POST", "/api/valves/V7", map[string]any{"state": "otwarty"}).Code)
	assert.Equal(t, domain.ValveOpen, ctrl.valves["V7"])

	assert.Equal(t, http.StatusBadRequest, do(handler, "POST", "/api/valves/V7", map[string]any{"state": "ajar"}).Code)
	assert.Equal(t, http.StatusBadRequest, do(handler, "POST", "/api/valves/V7", map[string]any{}).Code)
}

func TestRequestValidation_RejectsUndocumentedShape(t *testing.T) {
	handler, _, _ := newTestHandler(t, &MockController{}, WithRequestValidation(true))

	rr := do(handler, "POST", "/api/routes/suggest", map[string]any{"start": "R1", "goal": 5})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(handler, "GET", "/api/diagrams/sideways", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Undocumented routes are not validated.
	assert.Equal(t, http.StatusOK, do(handler, "GET", "/metrics", nil).Code)
	assert.Equal(t, http.StatusOK, do(handler, "POST", "/api/routes/suggest", map[string]any{"start": "R1", "goal": "B2"}).Code)
}

func TestCORSPreflight(t *testing.T) {
	handler, _, _ := newTestHandler(t, &MockController{})
	rr := do(handler, "OPTIONS", "/api/refresh", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents(t *testing.T) {
	handler, b, hub := newTestHandler(t, &MockController{})
	require.NoError(t, b.Render(context.Background(), "flowchart", "graph LR\n    A -- \"S1\" --> B\n"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/events", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(w, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	board.NewNotifier(hub, nil).Notify(ctx, "error", "backend down")

	// Give the handler a moment to write the broadcast before stopping it.
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	output := w.Body.String()
	assert.Contains(t, output, "event: ping")
	assert.Contains(t, output, "event: diagram")
	assert.True(t, strings.Contains(output, `"name":"flowchart"`))
	assert.Contains(t, output, "event: notify")
	assert.Contains(t, output, "backend down")
}
