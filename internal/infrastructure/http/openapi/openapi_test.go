package openapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutes(t *testing.T) {
	testCases := []struct {
		path        string
		contentType string
	}{
		{path: "/openapi.yaml", contentType: "application/yaml"},
		{path: "/openapi.json", contentType: "application/json"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.contentType, rr.Header().Get("Content-Type"))
			assert.NotEmpty(t, rr.Body.Bytes())
		})
	}
}

func TestJSON_DescribesBothResources(t *testing.T) {
	// when
	body, err := JSON()
	// then
	require.NoError(t, err)
	var doc struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	for _, path := range []string{"/products", "/products/{id}", "/users", "/users/{id}"} {
		assert.Contains(t, doc.Paths, path)
	}
	assert.Contains(t, doc.Paths["/users/{id}"], "patch")
}
