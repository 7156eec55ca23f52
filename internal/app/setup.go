// Package app wires the catalog stores, services and HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrops-br/catalog-api/internal/app/service"
	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/mrops-br/catalog-api/internal/infrastructure/config"
	httpserver "github.com/mrops-br/catalog-api/internal/infrastructure/http"
	"github.com/mrops-br/catalog-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/catalog-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/catalog-api/internal/infrastructure/telemetry"
)

// InstrumentationName names the tracer and meter of the catalog
const InstrumentationName = "catalog-api"

type Dependencies struct {
	Products  *service.ResourceService[domain.Product]
	Users     *service.ResourceService[domain.User]
	Telemetry *telemetry.Telemetry
	Logger    *slog.Logger
}

// Close releases the metric callbacks of both services
func (d *Dependencies) Close() error {
	return errors.Join(d.Products.Close(), d.Users.Close())
}

// SetupDependencies builds one store and service per resource.
// Demo records are loaded when seed is true.
func SetupDependencies(telem *telemetry.Telemetry, seed bool) (*Dependencies, error) {
	tracer := telem.TracerProvider.Tracer(InstrumentationName)
	meter := telem.MeterProvider.Meter(InstrumentationName)
	logger := telem.Logger

	var productOpts, userOpts []memory.Option
	if seed {
		productOpts = append(productOpts, memory.WithSeed(domain.ProductSeed...))
		userOpts = append(userOpts, memory.WithSeed(domain.UserSeed...))
	}

	productStore, err := memory.NewStore[domain.Product](domain.ProductSchema, tracer, logger, productOpts...)
	if err != nil {
		return nil, fmt.Errorf("product store: %w", err)
	}
	userStore, err := memory.NewStore[domain.User](domain.UserSchema, tracer, logger, userOpts...)
	if err != nil {
		return nil, fmt.Errorf("user store: %w", err)
	}

	products, err := service.NewResourceService[domain.Product](domain.ProductSchema.Resource, productStore, tracer, meter, logger)
	if err != nil {
		return nil, fmt.Errorf("product service: %w", err)
	}
	users, err := service.NewResourceService[domain.User](domain.UserSchema.Resource, userStore, tracer, meter, logger)
	if err != nil {
		_ = products.Close()
		return nil, fmt.Errorf("user service: %w", err)
	}

	logger.Info("Catalog stores ready",
		slog.Int("products", productStore.Len(context.Background())),
		slog.Int("users", userStore.Len(context.Background())),
	)

	return &Dependencies{
		Products:  products,
		Users:     users,
		Telemetry: telem,
		Logger:    logger,
	}, nil
}

// SetupHTTPServer mounts /api/products and /api/users on a new server
func SetupHTTPServer(deps *Dependencies, cfg *config.Config) *httpserver.Server {
	products := handler.NewResourceHandler[domain.Product](
		"/products", domain.ProductSchema.Label(), deps.Products, deps.Logger,
	)
	users := handler.NewResourceHandler[domain.User](
		"/users", domain.UserSchema.Label(), deps.Users, deps.Logger,
	)

	return httpserver.NewServer(&cfg.Server, &cfg.Metrics, deps.Telemetry, deps.Logger, products, users)
}
