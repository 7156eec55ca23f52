package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/catalog-api/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func jsonLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level}))
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &entry))
		lines = append(lines, entry)
	}
	return lines
}

func TestRecoverer(t *testing.T) {
	// given
	var buf bytes.Buffer
	h := Recoverer(jsonLogger(&buf, slog.LevelInfo))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	// when
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	// then
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "Panic recovered", lines[0]["msg"])
	assert.Equal(t, "boom", lines[0]["panic"])
}

func TestRecoverer_AbortHandlerPropagates(t *testing.T) {
	// given
	var buf bytes.Buffer
	h := Recoverer(jsonLogger(&buf, slog.LevelInfo))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	// when / then
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	})
	assert.Zero(t, buf.Len())
}

func TestRequestBody(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		level      slog.Level
		expectLogs bool
	}{
		{name: "POST logged at debug", method: http.MethodPost, level: slog.LevelDebug, expectLogs: true},
		{name: "PATCH logged at debug", method: http.MethodPatch, level: slog.LevelDebug, expectLogs: true},
		{name: "GET not logged", method: http.MethodGet, level: slog.LevelDebug},
		{name: "POST not logged above debug", method: http.MethodPost, level: slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var buf bytes.Buffer
			var seen string
			h := RequestBody(jsonLogger(&buf, tc.level))(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				b, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				seen = string(b)
			}))
			// when
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, "/api/users", strings.NewReader(`{"name":"Ivan"}`)))
			// then
			assert.Equal(t, `{"name":"Ivan"}`, seen, "body must reach the handler")
			lines := logLines(t, &buf)
			if !tc.expectLogs {
				assert.Empty(t, lines)
				return
			}
			require.Len(t, lines, 1)
			assert.Equal(t, `{"name":"Ivan"}`, lines[0]["body"])
		})
	}
}

func TestStructuredLogger_Levels(t *testing.T) {
	testCases := []struct {
		status int
		level  string
	}{
		{status: http.StatusOK, level: "INFO"},
		{status: http.StatusNotFound, level: "WARN"},
		{status: http.StatusInternalServerError, level: "ERROR"},
	}

	for _, tc := range testCases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			// given
			var buf bytes.Buffer
			r := chi.NewRouter()
			r.Use(StructuredLogger(jsonLogger(&buf, slog.LevelDebug)))
			r.Get("/api/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			})
			// when
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/a1", nil))
			// then
			lines := logLines(t, &buf)
			require.Len(t, lines, 1)
			assert.Equal(t, tc.level, lines[0]["level"])
			assert.Equal(t, "/api/products/{id}", lines[0]["http.route"])
			assert.Equal(t, float64(tc.status), lines[0]["http.response.status_code"])
		})
	}
}

func TestHTTPRouteContext(t *testing.T) {
	// given
	var route string
	r := chi.NewRouter()
	r.Route("/api/users", func(r chi.Router) {
		r.With(HTTPRouteContext()).Get("/{id}", func(_ http.ResponseWriter, req *http.Request) {
			route = telemetry.HTTPRouteFromContext(req.Context())
		})
	})
	// when
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/users/a1", nil))
	// then
	assert.Equal(t, "/api/users/{id}", route)
}

func TestActiveRequests_ReturnsToZero(t *testing.T) {
	// given
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	r := chi.NewRouter()
	r.Use(ActiveRequests(provider.Meter("test")))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("OK")) })
	r.Delete("/gone", func(w http.ResponseWriter, _ *http.Request) {})

	// when
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/gone", nil))

	// then
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.NotEmpty(t, rm.ScopeMetrics)
	var points int
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if m.Name != "http.server.active_requests" {
			continue
		}
		sum := m.Data.(metricdata.Sum[int64])
		for _, dp := range sum.DataPoints {
			points++
			assert.Zero(t, dp.Value)
		}
	}
	assert.Equal(t, 2, points)
}

func TestDurationMilliseconds(t *testing.T) {
	// given
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	r := chi.NewRouter()
	r.Use(DurationMilliseconds(provider.Meter("test")))
	r.Get("/api/products", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	// when
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products", nil))

	// then
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)
	hist := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Histogram[float64])
	require.Len(t, hist.DataPoints, 1)
	status, _ := hist.DataPoints[0].Attributes.Value("http.response.status_code")
	assert.Equal(t, int64(http.StatusTeapot), status.AsInt64())
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}
