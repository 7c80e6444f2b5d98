package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/whirlwatch/internal/api/handlers"
	"github.com/amaumene/whirlwatch/internal/api/middleware"
	"github.com/amaumene/whirlwatch/internal/config"
	"github.com/amaumene/whirlwatch/internal/controllers"
	"github.com/amaumene/whirlwatch/internal/metrics"
	"github.com/amaumene/whirlwatch/internal/stats"
	"github.com/amaumene/whirlwatch/internal/viewmodel"
)

// Server represents the dashboard HTTP server
type Server struct {
	app    *fiber.App
	addr   string
	logger *logrus.Logger
}

// NewServer creates a new HTTP server over one loaded view
func NewServer(
	cfg *config.Config,
	vm *viewmodel.ViewModel,
	agg *stats.Aggregator,
	loader *controllers.Loader,
	mutator *controllers.Mutator,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		// query values are stored in the view model past the request
		Immutable:             true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		IdleTimeout:           60 * time.Second,
	})
	app.Use(middleware.Logging(logger))

	s := &Server{
		app:    app,
		addr:   ":" + cfg.ServerPort,
		logger: logger,
	}
	s.setupRoutes(vm, agg, loader, mutator, m)
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(vm *viewmodel.ViewModel, agg *stats.Aggregator, loader *controllers.Loader, mutator *controllers.Mutator, m *metrics.Metrics) {
	// Health check
	healthHandler := handlers.NewHealthHandler(s.logger)
	s.app.Get("/health", healthHandler.Get)

	// Status endpoint
	statusHandler := handlers.NewStatusHandler(vm, agg, loader, s.logger)
	s.app.Get("/status", statusHandler.Get)
	s.app.Post("/reload", statusHandler.Reload)

	// Records
	recordsHandler := handlers.NewRecordsHandler(vm, mutator, s.logger)
	s.app.Get("/records", recordsHandler.List)
	s.app.Put("/records/:id/status", recordsHandler.UpdateStatus)
	s.app.Put("/records/:id/rating", recordsHandler.UpdateRating)
	s.app.Delete("/records/:id", recordsHandler.Remove)

	// Prometheus
	s.app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
}

// App exposes the fiber application
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the HTTP server and blocks until ctx is done
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(s.addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(shutdownCtx)
}
