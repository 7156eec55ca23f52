package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/mrops-br/catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/catalog-api/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, MaxHeaderBytes: 1 << 20},
		Log:    config.LogConfig{Level: "error"},
		OTLP:   config.OTLPConfig{ServiceName: "catalog-api-test", Environment: "test"},
	}
	cfg.Server.Timeout.Read = time.Second
	cfg.Server.Timeout.Write = time.Second
	cfg.Server.Timeout.Idle = time.Second
	cfg.Server.Timeout.ReadHeader = time.Second
	cfg.Metrics.DurationMs = true
	return cfg
}

// newTestServer returns the fully wired API handler
func newTestServer(t *testing.T, seed bool) http.Handler {
	t.Helper()
	cfg := testConfig()
	telem, err := telemetry.NewNoOpTelemetry(&cfg.OTLP, &cfg.Log)
	require.NoError(t, err)

	deps, err := SetupDependencies(telem, seed)
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close() })

	return SetupHTTPServer(deps, cfg).Handler()
}

type call struct {
	method string
	target string
	body   string
}

func do(t *testing.T, h http.Handler, c call) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if c.body == "" {
		req = httptest.NewRequest(c.method, c.target, nil)
	} else {
		req = httptest.NewRequest(c.method, c.target, strings.NewReader(c.body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAPI_ProductLifecycle(t *testing.T) {
	h := newTestServer(t, false)

	// create
	rr := do(t, h, call{http.MethodPost, "/api/products", `{"title":"Mouse","category":"Peripherals","description":"x","price":100,"stock":5}`})
	require.Equal(t, http.StatusCreated, rr.Code)
	var created domain.Product
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, domain.Product{ID: created.ID, Title: "Mouse", Category: "Peripherals", Description: "x", Price: 100, Stock: 5}, created)

	// invalid update leaves the record untouched
	rr = do(t, h, call{http.MethodPatch, "/api/products/" + created.ID, `{"price":-5}`})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"errors":["price must be a number >= 0"]}`, rr.Body.String())

	// valid update
	rr = do(t, h, call{http.MethodPatch, "/api/products/" + created.ID, `{"price":200,"stock":10}`})
	require.Equal(t, http.StatusOK, rr.Code)
	var updated domain.Product
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, 200.0, updated.Price)
	assert.Equal(t, int64(10), updated.Stock)
	assert.Equal(t, "Mouse", updated.Title)

	// list
	rr = do(t, h, call{http.MethodGet, "/api/products", ""})
	require.Equal(t, http.StatusOK, rr.Code)
	var list []domain.Product
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, []domain.Product{updated}, list)

	// delete then everything is gone
	rr = do(t, h, call{http.MethodDelete, "/api/products/" + created.ID, ""})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = do(t, h, call{http.MethodGet, "/api/products/" + created.ID, ""})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, rr.Body.String())

	rr = do(t, h, call{http.MethodDelete, "/api/products/" + created.ID, ""})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, call{http.MethodGet, "/api/products", ""})
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestAPI_Errors(t *testing.T) {
	h := newTestServer(t, false)

	testCases := []struct {
		name         string
		call         call
		expectedCode int
		expectedBody string
	}{
		{
			name:         "create user with every field missing",
			call:         call{http.MethodPost, "/api/users", `{}`},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"errors":["name must be a non-empty string","age must be a number between 0 and 150"]}`,
		},
		{
			name:         "create user with empty body",
			call:         call{http.MethodPost, "/api/users", ""},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"errors":["name must be a non-empty string","age must be a number between 0 and 150"]}`,
		},
		{
			name:         "create user with malformed json",
			call:         call{http.MethodPost, "/api/users", `{"name":`},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"errors":["request body must be a JSON object"]}`,
		},
		{
			name:         "user age out of range",
			call:         call{http.MethodPost, "/api/users", `{"name":"Old","age":151}`},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"errors":["age must be a number between 0 and 150"]}`,
		},
		{
			name:         "patch missing user",
			call:         call{http.MethodPatch, "/api/users/nope", `{"age":-1}`},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"User not found"}`,
		},
		{
			name:         "unknown resource",
			call:         call{http.MethodGet, "/api/orders", ""},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Not found"}`,
		},
		{
			name:         "unknown top level route",
			call:         call{http.MethodGet, "/nothing-here", ""},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Not found"}`,
		},
		{
			name:         "unsupported method on collection",
			call:         call{http.MethodDelete, "/api/products", ""},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Not found"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, h, tc.call)
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func TestAPI_Seed(t *testing.T) {
	h := newTestServer(t, true)

	rr := do(t, h, call{http.MethodGet, "/api/users", ""})
	require.Equal(t, http.StatusOK, rr.Code)
	var users []domain.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &users))
	require.Len(t, users, len(domain.UserSeed))
	assert.Equal(t, "Peter", users[0].Name)

	rr = do(t, h, call{http.MethodGet, "/api/products", ""})
	var products []domain.Product
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &products))
	assert.Len(t, products, len(domain.ProductSeed))
}

func TestAPI_OperationalEndpoints(t *testing.T) {
	h := newTestServer(t, true)

	rr := do(t, h, call{http.MethodGet, "/health", ""})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())

	// generate some traffic so catalog metrics exist
	do(t, h, call{http.MethodGet, "/api/users", ""})

	rr = do(t, h, call{http.MethodGet, "/metrics", ""})
	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "catalog_operations_total")
	assert.Contains(t, body, "catalog_records")
	assert.Contains(t, body, "http_server_request_duration_ms")

	rr = do(t, h, call{http.MethodGet, "/api-docs/openapi.json", ""})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}
