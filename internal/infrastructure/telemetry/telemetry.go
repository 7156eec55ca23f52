package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrops-br/catalog-api/internal/infrastructure/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Telemetry holds all OpenTelemetry components
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *metric.MeterProvider
	// Registry backs the /metrics endpoint
	Registry *prometheus.Registry
	Logger   *slog.Logger

	conn *grpc.ClientConn
}

// New builds exporting telemetry when OTLP is enabled and no-op telemetry otherwise
func New(ctx context.Context, otlp *config.OTLPConfig, logCfg *config.LogConfig) (*Telemetry, error) {
	if !otlp.Enabled {
		return NewNoOpTelemetry(otlp, logCfg)
	}
	return NewTelemetry(ctx, otlp, logCfg)
}

// NewTelemetry initializes all OpenTelemetry components with OTLP export over gRPC
func NewTelemetry(ctx context.Context, otlp *config.OTLPConfig, logCfg *config.LogConfig) (*Telemetry, error) {
	// Initialize logger first for debugging
	logger := initLogger(otlp, logCfg)

	logger.Info("Initializing OpenTelemetry",
		slog.String("endpoint", otlp.Endpoint),
		slog.String("service_name", otlp.ServiceName),
	)

	res, err := newResource(ctx, otlp)
	if err != nil {
		return nil, err
	}

	// One connection is shared by the trace and metric exporters
	conn, err := grpc.NewClient(otlp.Endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	tp, err := initTracerProvider(ctx, conn, res)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize tracer provider: %w", err)
	}
	logger.Info("Tracer provider initialized successfully")

	registry := newRegistry()

	// Dual exporters: OTLP push and Prometheus pull
	mp, err := initMeterProvider(ctx, conn, res, registry)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize meter provider: %w", err)
	}
	logger.Info("Meter provider initialized successfully (OTLP + Prometheus exporters)")

	setGlobals(tp, mp)

	return &Telemetry{
		TracerProvider: tp,
		MeterProvider:  mp,
		Registry:       registry,
		Logger:         logger,
		conn:           conn,
	}, nil
}

// NewNoOpTelemetry creates a telemetry instance that exports nothing.
// Spans are still created so logs carry trace ids, and /metrics is still served.
func NewNoOpTelemetry(otlp *config.OTLPConfig, logCfg *config.LogConfig) (*Telemetry, error) {
	logger := initLogger(otlp, logCfg)

	tp := sdktrace.NewTracerProvider()

	registry := newRegistry()
	mp, err := initPrometheusMeterProvider(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize meter provider: %w", err)
	}

	setGlobals(tp, mp)

	logger.Info("Telemetry initialized in no-op mode (export disabled)")

	return &Telemetry{
		TracerProvider: tp,
		MeterProvider:  mp,
		Registry:       registry,
		Logger:         logger,
	}, nil
}

// Shutdown flushes and stops all telemetry components
func (t *Telemetry) Shutdown(ctx context.Context) error {
	t.Logger.Info("Shutting down OpenTelemetry")

	var errs []error
	if err := t.TracerProvider.Shutdown(ctx); err != nil {
		t.Logger.Error("Failed to shutdown tracer provider", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := t.MeterProvider.Shutdown(ctx); err != nil {
		t.Logger.Error("Failed to shutdown meter provider", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if t.conn != nil {
		if err := t.conn.Close(); err != nil {
			t.Logger.Error("Failed to close gRPC connection", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	t.Logger.Info("OpenTelemetry shutdown successfully")
	return nil
}

// newRegistry returns a registry with the Go runtime and process collectors
func newRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func setGlobals(tp *sdktrace.TracerProvider, mp *metric.MeterProvider) {
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}
