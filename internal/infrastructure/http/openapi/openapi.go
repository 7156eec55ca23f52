// Package openapi serves the embedded API description.
package openapi

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var document []byte

var asJSON = sync.OnceValues(func() ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(document, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	return json.Marshal(doc)
})

// YAML returns the raw document
func YAML() []byte {
	return document
}

// JSON returns the document converted to JSON
func JSON() ([]byte, error) {
	return asJSON()
}

// Routes serves /openapi.yaml and /openapi.json
func Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/openapi.yaml", serveYAML)
	r.Get("/openapi.json", serveJSON)
	return r
}

func serveYAML(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(document)
}

func serveJSON(w http.ResponseWriter, _ *http.Request) {
	body, err := JSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}
