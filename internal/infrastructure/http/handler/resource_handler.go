package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/catalog-api/internal/app/dto"
	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/mrops-br/catalog-api/internal/infrastructure/http/middleware"
	"github.com/mrops-br/catalog-api/internal/infrastructure/http/response"
)

// maxBodyBytes limits the size of create and update bodies
const maxBodyBytes = 1 << 20

// Service is the use-case surface a ResourceHandler needs
type Service[T any] interface {
	Create(ctx context.Context, payload domain.Payload) (T, error)
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Update(ctx context.Context, id string, payload domain.Payload) (T, error)
	Delete(ctx context.Context, id string) error
}

// ResourceHandler serves the CRUD routes of one resource
type ResourceHandler[T any] struct {
	pattern string
	label   string
	service Service[T]
	logger  *slog.Logger
}

// NewResourceHandler creates a handler mounted at pattern, e.g. "/products".
// label names the resource in not-found messages, e.g. "Product".
func NewResourceHandler[T any](pattern, label string, service Service[T], logger *slog.Logger) *ResourceHandler[T] {
	return &ResourceHandler[T]{
		pattern: pattern,
		label:   label,
		service: service,
		logger:  logger,
	}
}

// Pattern returns the mount point relative to /api
func (h *ResourceHandler[T]) Pattern() string {
	return h.pattern
}

// Routes returns the resource sub-router
func (h *ResourceHandler[T]) Routes() http.Handler {
	r := chi.NewRouter()
	r.NotFound(response.RouteNotFound)
	r.MethodNotAllowed(response.RouteNotFound)

	r.Group(func(r chi.Router) {
		r.Use(middleware.HTTPRouteContext())

		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

// Create handles POST /
func (h *ResourceHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Create(r.Context(), payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, rec)
}

// List handles GET /
func (h *ResourceHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, records)
}

// Get handles GET /{id}
func (h *ResourceHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, rec)
}

// Update handles PATCH /{id}
func (h *ResourceHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, rec)
}

// Delete handles DELETE /{id}
func (h *ResourceHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}

	response.NoContent(w)
}

func (h *ResourceHandler[T]) decode(w http.ResponseWriter, r *http.Request) (domain.Payload, bool) {
	payload, err := dto.DecodePayload(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err == nil {
		return payload, true
	}

	h.logger.WarnContext(r.Context(), "Failed to decode request body",
		slog.String("error", err.Error()),
	)

	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, dto.ErrMalformedBody):
		response.ValidationErrors(w, []string{dto.MsgBodyNotObject})
	case errors.As(err, &tooLarge):
		response.Error(w, http.StatusRequestEntityTooLarge, "Request body too large")
	default:
		response.InternalError(w)
	}
	return nil, false
}

func (h *ResourceHandler[T]) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.ValidationErrors(w, vErr.Messages)
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, h.label+" not found")
	default:
		h.logger.ErrorContext(r.Context(), "Request failed",
			slog.String("error", err.Error()),
		)
		response.InternalError(w)
	}
}
