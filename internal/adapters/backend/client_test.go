package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/pipenet/internal/adapters/backend"
	"github.com/aretw0/pipenet/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.HandlerFunc) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := backend.New(srv.URL, backend.WithTimeout(2*time.Second))
	require.NoError(t, err)
	return c
}

func TestFetchTopology_MapsWireFields(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, backend.PathTopology, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"nazwa_segmentu":"S1","punkt_startowy":"R1","punkt_koncowy":"F1","nazwa_zaworu":"V1","stan_zaworu":"OTWARTY","zajety":false},
			{"nazwa_segmentu":"S2","punkt_startowy":null,"punkt_koncowy":"B1","nazwa_zaworu":"V2","stan_zaworu":"ZAMKNIETY","zajety":true},
			{"nazwa_segmentu":"S3"}
		]`)
	})

	segs, err := c.FetchTopology(context.Background())
	require.NoError(t, err)
	require.Len(t, segs, 3)

	assert.Equal(t, domain.Segment{Name: "S1", Start: "R1", End: "F1", Valve: "V1", ValveState: domain.ValveOpen}, segs[0])
	assert.Equal(t, domain.Point(""), segs[1].Start)
	assert.Equal(t, domain.ValveClosed, segs[1].ValveState)
	assert.True(t, segs[1].Occupied)
	assert.Equal(t, domain.ValveUnknown, segs[2].ValveState)
}

func TestFetchTopology_Malformed(t *testing.T) {
	bodies := map[string]string{
		"object":       `{"segments":[]}`,
		"null":         `null`,
		"missing name": `[{"punkt_startowy":"R1"}]`,
		"truncated":    `[{"nazwa_segmentu":"S1"`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			})
			_, err := c.FetchTopology(context.Background())
			assert.ErrorIs(t, err, domain.ErrMalformedResponse)
			assert.ErrorIs(t, err, domain.ErrNetwork)
		})
	}
}

func TestFetchTopology_EmptyList(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})
	segs, err := c.FetchTopology(context.Background())
	require.NoError(t, err)
	assert.Empty(t, segs)
}

func TestFetchTopology_Non2xx(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error":"baza danych niedostepna"}`)
	})
	_, err := c.FetchTopology(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.NotErrorIs(t, err, domain.ErrMalformedResponse)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "baza danych niedostepna")
}

func TestFetchTopology_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := backend.New(url)
	require.NoError(t, err)
	_, err = c.FetchTopology(context.Background())
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestSuggestRoute(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, backend.PathSuggest, r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "R1", body["start"])
		assert.Equal(t, "B2", body["cel"])
		assert.Equal(t, []any{"F1"}, body["sprzet_posredni"])

		io.WriteString(w, `{"segmenty_trasy":["S1","S2"],"sugerowane_zawory":["V1","V2"]}`)
	})

	sug, err := c.SuggestRoute(context.Background(), domain.RouteRequest{Start: "R1", Goal: "B2", Via: []string{"F1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2"}, sug.Segments)
	assert.Equal(t, []string{"V1", "V2"}, sug.Valves)
}

func TestSuggestRoute_MissingSegments(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"sugerowane_zawory":["V1"]}`)
	})
	_, err := c.SuggestRoute(context.Background(), domain.RouteRequest{Start: "R1", Goal: "B2"})
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestStartRoute_SendsOpenValves(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, backend.PathStartRoute, r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []any{"V1", "V2"}, body["otwarte_zawory"])
		assert.Equal(t, []any{}, body["sprzet_posredni"])
		w.WriteHeader(http.StatusOK)
	})

	err := c.StartRoute(context.Background(), domain.RouteRequest{Start: "R1", Goal: "B2"}, []string{"V1", "V2"})
	assert.NoError(t, err)
}

func TestSetValve(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, backend.PathValve, r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"id_zaworu": "V7", "stan": "ZAMKNIETY"}, body)
	})

	assert.NoError(t, c.SetValve(context.Background(), "V7", domain.ValveClosed))
	assert.Error(t, c.SetValve(context.Background(), "V7", domain.ValveUnknown))
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := backend.New("localhost:5000")
	assert.Error(t, err)
}

func TestRateLimit_HonoursContext(t *testing.T) {
	limited, err := backend.New("http://127.0.0.1:1", backend.WithRateLimit(0.001, 1))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = limited.FetchTopology(ctx)
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestWithTimeout_AppliesToCustomClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	custom := &http.Client{}
	c, err := backend.New(srv.URL, backend.WithTimeout(50*time.Millisecond), backend.WithHTTPClient(custom))
	require.NoError(t, err)

	started := time.Now()
	_, err = c.FetchTopology(context.Background())
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Less(t, time.Since(started), time.Second)
	// The caller's client is left as it was.
	assert.Zero(t, custom.Timeout)
}
