// Package app assembles the client's components.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/amaumene/whirlwatch/internal/config"
	"github.com/amaumene/whirlwatch/internal/controllers"
	"github.com/amaumene/whirlwatch/internal/metrics"
	"github.com/amaumene/whirlwatch/internal/models"
	"github.com/amaumene/whirlwatch/internal/services/whirlwatch"
	"github.com/amaumene/whirlwatch/internal/session"
	"github.com/amaumene/whirlwatch/internal/stats"
	"github.com/amaumene/whirlwatch/internal/tracing"
	"github.com/amaumene/whirlwatch/internal/utils"
	"github.com/amaumene/whirlwatch/internal/viewmodel"
)

// App holds one view over the backend with everything it depends on
type App struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Metrics *metrics.Metrics
	Session *session.Provider
	Client  *whirlwatch.Client
	View    *viewmodel.ViewModel
	Stats   *stats.Aggregator
	Mutator *controllers.Mutator
	Loader  *controllers.Loader
}

// ProvideLogger creates the logger from the configuration
func ProvideLogger(cfg *config.Config) *logrus.Logger {
	return utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
}

// ProvideDatabase opens the session store
func ProvideDatabase(cfg *config.Config, logger *logrus.Logger) (*models.Database, func(), error) {
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close database")
		}
	}
	return db, cleanup, nil
}

// ProvideTracerProvider creates and installs the tracer provider
func ProvideTracerProvider(cfg *config.Config, logger *logrus.Logger) (*sdktrace.TracerProvider, func()) {
	tp := tracing.NewProvider(cfg.TracingEnabled, logger)
	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Warn("Failed to shut down tracer provider")
		}
	}
	return tp, cleanup
}

// ProvideTracer returns the client's tracer
func ProvideTracer(tp *sdktrace.TracerProvider) trace.Tracer {
	return tracing.Install(tp)
}

// ProvideViewModel creates the view with the configured page size and collation
func ProvideViewModel(cfg *config.Config) *viewmodel.ViewModel {
	return viewmodel.New(viewmodel.Options{
		PageSize: cfg.PageSize,
		Language: cfg.Language,
	})
}

// ProvideMutator creates the mutator; a refused session is reported in the log
func ProvideMutator(vm *viewmodel.ViewModel, agg *stats.Aggregator, backend controllers.Backend, logger *logrus.Logger, m *metrics.Metrics) *controllers.Mutator {
	return controllers.NewMutator(vm, agg, backend, logger, m,
		controllers.WithUnauthorizedHandler(func() {
			logger.Warn("Session expired, sign in again with: whirlwatch login")
		}),
	)
}
