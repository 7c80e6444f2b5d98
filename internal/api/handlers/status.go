package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/whirlwatch/internal/controllers"
	"github.com/amaumene/whirlwatch/internal/stats"
	"github.com/amaumene/whirlwatch/internal/viewmodel"
)

// StatusHandler handles status requests
type StatusHandler struct {
	vm     *viewmodel.ViewModel
	agg    *stats.Aggregator
	loader *controllers.Loader
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(vm *viewmodel.ViewModel, agg *stats.Aggregator, loader *controllers.Loader, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		vm:     vm,
		agg:    agg,
		loader: loader,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	Scope   string            `json:"scope"`
	Loaded  bool              `json:"loaded"`
	Summary stats.Summary     `json:"summary"`
	Sort    viewmodel.SortKey `json:"sort"`
	Filters viewmodel.Filters `json:"filters"`
}

// Get handles the status endpoint
func (h *StatusHandler) Get(c *fiber.Ctx) error {
	scope, loaded := h.loader.Scope()

	response := StatusResponse{
		Loaded:  loaded,
		Summary: h.agg.Snapshot(),
		Sort:    h.vm.SortKey(),
		Filters: h.vm.Filters(),
	}
	if loaded {
		response.Scope = scope.String()
	}

	return c.JSON(response)
}

// Reload handles a manual full reload of the scope
func (h *StatusHandler) Reload(c *fiber.Ctx) error {
	summary, err := h.loader.Reload(c.UserContext())
	if err != nil {
		h.logger.WithError(err).Error("Manual reload failed")
		return errorResponse(c, err)
	}
	return c.JSON(summary)
}
