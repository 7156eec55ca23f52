package memory

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	_ domain.Repository[domain.Product] = (*Store[domain.Product, *domain.Product])(nil)
	_ domain.Repository[domain.User]    = (*Store[domain.User, *domain.User])(nil)
)

// maxIDAttempts bounds the retries when a generated id is already taken.
const maxIDAttempts = 16

// Store is an ordered in-memory implementation of domain.Repository.
// Every operation, reads included, runs under a single mutex.
type Store[T any, PT domain.Entity[T]] struct {
	mu     sync.Mutex
	items  []T
	schema domain.Schema
	newID  func() string
	tracer trace.Tracer
	logger *slog.Logger
}

type options struct {
	newID func() string
	seed  []domain.Payload
}

// Option configures a Store
type Option func(*options)

// WithIDGenerator replaces the default UUID generator
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}

// WithSeed loads the given payloads through Create when the store is built
func WithSeed(payloads ...domain.Payload) Option {
	return func(o *options) {
		o.seed = append(o.seed, payloads...)
	}
}

// NewStore creates a new in-memory store for the resource described by schema
func NewStore[T any, PT domain.Entity[T]](
	schema domain.Schema,
	tracer trace.Tracer,
	logger *slog.Logger,
	opts ...Option,
) (*Store[T, PT], error) {
	o := options{newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store[T, PT]{
		items:  make([]T, 0, len(o.seed)),
		schema: schema,
		newID:  o.newID,
		tracer: tracer,
		logger: logger.With(slog.String("resource", schema.Resource)),
	}

	ctx := context.Background()
	for i, payload := range o.seed {
		if _, err := s.Create(ctx, payload); err != nil {
			return nil, fmt.Errorf("seed %s #%d: %w", schema.Resource, i, err)
		}
	}

	return s, nil
}

// Create validates a full payload and appends a new record
func (s *Store[T, PT]) Create(ctx context.Context, payload domain.Payload) (T, error) {
	ctx, span := s.startSpan(ctx, "Create")
	defer span.End()

	var rec T
	fields, err := s.schema.Create(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Validation failed")
		s.logger.DebugContext(ctx, "Record rejected by validation", slog.String("error", err.Error()))
		return rec, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.nextID()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ID generation failed")
		return rec, err
	}

	PT(&rec).SetID(id)
	PT(&rec).Apply(fields)
	s.items = append(s.items, rec)

	span.SetAttributes(attribute.String("record.id", id))
	s.logger.InfoContext(ctx, "Record created in store",
		slog.String("record_id", id),
		slog.Int("count", len(s.items)),
	)

	span.SetStatus(codes.Ok, "Record created successfully")
	return rec, nil
}

// List returns a copy of all records in insertion order
func (s *Store[T, PT]) List(ctx context.Context) ([]T, error) {
	ctx, span := s.startSpan(ctx, "List")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]T, len(s.items))
	copy(records, s.items)

	span.SetAttributes(attribute.Int("record.count", len(records)))
	s.logger.DebugContext(ctx, "Records retrieved from store",
		slog.Int("count", len(records)),
	)

	span.SetStatus(codes.Ok, "Records retrieved successfully")
	return records, nil
}

// Get retrieves a record by ID
func (s *Store[T, PT]) Get(ctx context.Context, id string) (T, error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer span.End()

	span.SetAttributes(attribute.String("record.id", id))

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		var zero T
		return zero, s.notFound(ctx, span, id)
	}

	span.SetStatus(codes.Ok, "Record found")
	return s.items[i], nil
}

// Update validates a partial payload and applies it in place.
// Nothing is applied unless every present field is valid.
func (s *Store[T, PT]) Update(ctx context.Context, id string, payload domain.Payload) (T, error) {
	ctx, span := s.startSpan(ctx, "Update")
	defer span.End()

	span.SetAttributes(attribute.String("record.id", id))

	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	i := s.indexOf(id)
	if i < 0 {
		return zero, s.notFound(ctx, span, id)
	}

	fields, err := s.schema.Patch(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Validation failed")
		s.logger.DebugContext(ctx, "Update rejected by validation",
			slog.String("record_id", id),
			slog.String("error", err.Error()),
		)
		return zero, err
	}

	PT(&s.items[i]).Apply(fields)

	s.logger.InfoContext(ctx, "Record updated in store",
		slog.String("record_id", id),
		slog.Int("fields", len(fields)),
	)

	span.SetStatus(codes.Ok, "Record updated successfully")
	return s.items[i], nil
}

// Delete removes the record with the given ID
func (s *Store[T, PT]) Delete(ctx context.Context, id string) error {
	ctx, span := s.startSpan(ctx, "Delete")
	defer span.End()

	span.SetAttributes(attribute.String("record.id", id))

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return s.notFound(ctx, span, id)
	}

	s.items = slices.Delete(s.items, i, i+1)

	s.logger.InfoContext(ctx, "Record deleted from store",
		slog.String("record_id", id),
		slog.Int("count", len(s.items)),
	)

	span.SetStatus(codes.Ok, "Record deleted successfully")
	return nil
}

// Len returns the number of stored records
func (s *Store[T, PT]) Len(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store[T, PT]) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, s.schema.Label()+"Store."+op)
	span.SetAttributes(attribute.String("resource", s.schema.Resource))
	return ctx, span
}

// indexOf must be called with s.mu held.
func (s *Store[T, PT]) indexOf(id string) int {
	for i := range s.items {
		if PT(&s.items[i]).GetID() == id {
			return i
		}
	}
	return -1
}

// nextID must be called with s.mu held.
func (s *Store[T, PT]) nextID() (string, error) {
	for range maxIDAttempts {
		id := s.newID()
		if s.indexOf(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("generate %s id: %d attempts collided", s.schema.Resource, maxIDAttempts)
}

func (s *Store[T, PT]) notFound(ctx context.Context, span trace.Span, id string) error {
	err := fmt.Errorf("%s %q: %w", s.schema.Resource, id, domain.ErrNotFound)
	span.RecordError(err)
	span.SetStatus(codes.Error, s.schema.Label()+" not found")
	s.logger.WarnContext(ctx, "Record not found",
		slog.String("record_id", id),
	)
	return err
}
