package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Operation results recorded on the catalog.operations counter
const (
	resultSuccess  = "success"
	resultInvalid  = "invalid"
	resultNotFound = "not_found"
	resultFailure  = "failure"
)

// ResourceService handles the use cases of one catalog resource
type ResourceService[T any] struct {
	resource       string
	repo           domain.Repository[T]
	tracer         trace.Tracer
	logger         *slog.Logger
	createdCounter metric.Int64Counter
	operations     metric.Int64Counter
	registration   metric.Registration
}

// NewResourceService creates a new resource service
func NewResourceService[T any](
	resource string,
	repo domain.Repository[T],
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) (*ResourceService[T], error) {
	createdCounter, err := meter.Int64Counter(
		"catalog.records.created",
		metric.WithDescription("Total number of records created"),
	)
	if err != nil {
		return nil, err
	}

	operations, err := meter.Int64Counter(
		"catalog.operations",
		metric.WithDescription("Total number of catalog operations"),
	)
	if err != nil {
		return nil, err
	}

	records, err := meter.Int64ObservableGauge(
		"catalog.records",
		metric.WithDescription("Number of records currently stored"),
	)
	if err != nil {
		return nil, err
	}

	s := &ResourceService[T]{
		resource:       resource,
		repo:           repo,
		tracer:         tracer,
		logger:         logger.With(slog.String("resource", resource)),
		createdCounter: createdCounter,
		operations:     operations,
	}

	s.registration, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		o.ObserveInt64(records, int64(repo.Len(ctx)),
			metric.WithAttributes(attribute.String("resource", resource)),
		)
		return nil
	}, records)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Close unregisters the record gauge callback
func (s *ResourceService[T]) Close() error {
	if s.registration == nil {
		return nil
	}
	return s.registration.Unregister()
}

// Create validates the payload and stores a new record
func (s *ResourceService[T]) Create(ctx context.Context, payload domain.Payload) (T, error) {
	ctx, span := s.startSpan(ctx, "Create")
	defer span.End()

	s.logger.InfoContext(ctx, "Creating record",
		slog.Int("payload_fields", len(payload)),
	)

	rec, err := s.repo.Create(ctx, payload)
	if err != nil {
		s.fail(ctx, span, "create", err)
		return rec, err
	}

	s.createdCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("resource", s.resource)),
	)
	s.record(ctx, "create", resultSuccess)

	s.logger.InfoContext(ctx, "Record created successfully")

	span.SetStatus(codes.Ok, "Record created successfully")
	return rec, nil
}

// List retrieves all records
func (s *ResourceService[T]) List(ctx context.Context) ([]T, error) {
	ctx, span := s.startSpan(ctx, "List")
	defer span.End()

	s.logger.InfoContext(ctx, "Listing all records")

	records, err := s.repo.List(ctx)
	if err != nil {
		s.fail(ctx, span, "list", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("record.count", len(records)))
	s.record(ctx, "list", resultSuccess)

	s.logger.InfoContext(ctx, "Records listed successfully",
		slog.Int("count", len(records)),
	)

	span.SetStatus(codes.Ok, "Records listed successfully")
	return records, nil
}

// Get retrieves a record by ID
func (s *ResourceService[T]) Get(ctx context.Context, id string) (T, error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer span.End()

	span.SetAttributes(attribute.String("record.id", id))

	s.logger.InfoContext(ctx, "Getting record by ID",
		slog.String("record_id", id),
	)

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		s.fail(ctx, span, "read", err)
		return rec, err
	}

	s.record(ctx, "read", resultSuccess)

	span.SetStatus(codes.Ok, "Record retrieved successfully")
	return rec, nil
}

// Update applies a partial payload to an existing record
func (s *ResourceService[T]) Update(ctx context.Context, id string, payload domain.Payload) (T, error) {
	ctx, span := s.startSpan(ctx, "Update")
	defer span.End()

	span.SetAttributes(attribute.String("record.id", id))

	s.logger.InfoContext(ctx, "Updating record",
		slog.String("record_id", id),
		slog.Int("payload_fields", len(payload)),
	)

	rec, err := s.repo.Update(ctx, id, payload)
	if err != nil {
		s.fail(ctx, span, "update", err)
		return rec, err
	}

	s.record(ctx, "update", resultSuccess)

	s.logger.InfoContext(ctx, "Record updated successfully",
		slog.String("record_id", id),
	)

	span.SetStatus(codes.Ok, "Record updated successfully")
	return rec, nil
}

// Delete removes a record by ID
func (s *ResourceService[T]) Delete(ctx context.Context, id string) error {
	ctx, span := s.startSpan(ctx, "Delete")
	defer span.End()

	span.SetAttributes(attribute.String("record.id", id))

	s.logger.InfoContext(ctx, "Deleting record",
		slog.String("record_id", id),
	)

	if err := s.repo.Delete(ctx, id); err != nil {
		s.fail(ctx, span, "delete", err)
		return err
	}

	s.record(ctx, "delete", resultSuccess)

	s.logger.InfoContext(ctx, "Record deleted successfully",
		slog.String("record_id", id),
	)

	span.SetStatus(codes.Ok, "Record deleted successfully")
	return nil
}

func (s *ResourceService[T]) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, "ResourceService."+op)
	span.SetAttributes(attribute.String("resource", s.resource))
	return ctx, span
}

func (s *ResourceService[T]) record(ctx context.Context, operation, result string) {
	s.operations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("resource", s.resource),
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}

// fail records a failed operation. Client errors are logged at warn level.
func (s *ResourceService[T]) fail(ctx context.Context, span trace.Span, operation string, err error) {
	span.RecordError(err)

	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		span.SetStatus(codes.Error, "Validation failed")
		s.logger.WarnContext(ctx, "Validation failed",
			slog.String("operation", operation),
			slog.Any("errors", vErr.Messages),
		)
		s.record(ctx, operation, resultInvalid)
	case errors.Is(err, domain.ErrNotFound):
		span.SetStatus(codes.Error, "Record not found")
		s.logger.WarnContext(ctx, "Record not found",
			slog.String("operation", operation),
		)
		s.record(ctx, operation, resultNotFound)
	default:
		span.SetStatus(codes.Error, "Operation failed")
		s.logger.ErrorContext(ctx, "Operation failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		s.record(ctx, operation, resultFailure)
	}
}
