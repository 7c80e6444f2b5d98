package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/whirlwatch/internal/controllers"
	"github.com/amaumene/whirlwatch/internal/models"
	"github.com/amaumene/whirlwatch/internal/services/whirlwatch"
	"github.com/amaumene/whirlwatch/internal/viewmodel"
)

// filterParams maps query parameters to view filters
var filterParams = []viewmodel.FilterField{
	viewmodel.FilterSearch,
	viewmodel.FilterMediaKind,
	viewmodel.FilterWatchStatus,
	viewmodel.FilterList,
	viewmodel.FilterMinExternalRating,
}

// RecordsHandler serves the current page and applies mutations
type RecordsHandler struct {
	vm      *viewmodel.ViewModel
	mutator *controllers.Mutator
	logger  *logrus.Logger
}

// NewRecordsHandler creates a new records handler
func NewRecordsHandler(vm *viewmodel.ViewModel, mutator *controllers.Mutator, logger *logrus.Logger) *RecordsHandler {
	return &RecordsHandler{
		vm:      vm,
		mutator: mutator,
		logger:  logger,
	}
}

// PageResponse represents one page of records
type PageResponse struct {
	Items        []models.MediaRecord `json:"items"`
	Page         int                  `json:"page"`
	TotalPages   int                  `json:"total_pages"`
	TotalMatches int                  `json:"total_matches"`
	Suggestion   string               `json:"suggestion,omitempty"`
}

// List applies filter, sort and page query parameters and returns the page
func (h *RecordsHandler) List(c *fiber.Ctx) error {
	for _, field := range filterParams {
		if value, ok := c.Queries()[string(field)]; ok {
			if err := h.vm.SetFilter(field, value); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
	}
	if sort := c.Query("sort"); sort != "" {
		key, err := viewmodel.ParseSortKey(sort)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := h.vm.SetSort(key); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	if c.Query("page") != "" {
		h.vm.SetPage(c.QueryInt("page", 1))
	}

	page := h.vm.Page()
	items := page.Items
	if items == nil {
		items = []models.MediaRecord{}
	}
	return c.JSON(PageResponse{
		Items:        items,
		Page:         page.Number,
		TotalPages:   page.TotalPages,
		TotalMatches: page.TotalMatches,
		Suggestion:   page.Suggestion,
	})
}

// UpdateStatus handles PUT /records/:id/status
func (h *RecordsHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid record id")
	}
	var body struct {
		WatchStatus models.WatchStatus `json:"watch_status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if _, err := models.ParseWatchStatus(string(body.WatchStatus)); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := h.mutator.UpdateStatus(c.UserContext(), int64(id), body.WatchStatus); err != nil {
		return errorResponse(c, err)
	}
	return h.record(c, int64(id))
}

// UpdateRating handles PUT /records/:id/rating; a null rating clears it
func (h *RecordsHandler) UpdateRating(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid record id")
	}
	var body struct {
		Rating *float64 `json:"rating"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	if err := h.mutator.UpdateRating(c.UserContext(), int64(id), body.Rating); err != nil {
		return errorResponse(c, err)
	}
	return h.record(c, int64(id))
}

// Remove handles DELETE /records/:id
func (h *RecordsHandler) Remove(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid record id")
	}

	if err := h.mutator.Remove(c.UserContext(), int64(id)); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *RecordsHandler) record(c *fiber.Ctx, id int64) error {
	r, ok := h.vm.Get(id)
	if !ok {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(r)
}

// errorResponse maps controller errors to HTTP answers
func errorResponse(c *fiber.Ctx, err error) error {
	var mutErr *controllers.MutationError
	if errors.As(err, &mutErr) {
		return c.Status(mutationStatus(mutErr.Err)).JSON(fiber.Map{
			"error":   mutErr.Error(),
			"message": mutErr.Message(),
		})
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, controllers.ErrInvalidRating),
		errors.Is(err, controllers.ErrNotCompleted),
		errors.Is(err, controllers.ErrAlreadyInList):
		status = fiber.StatusBadRequest
	case errors.Is(err, viewmodel.ErrRecordNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, controllers.ErrNoScope):
		status = fiber.StatusConflict
	case errors.Is(err, whirlwatch.ErrUnauthorized),
		errors.Is(err, whirlwatch.ErrNotFound),
		errors.Is(err, whirlwatch.ErrNetworkFailure):
		status = mutationStatus(err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func mutationStatus(err error) int {
	switch {
	case errors.Is(err, whirlwatch.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, whirlwatch.ErrNotFound):
		return fiber.StatusNotFound
	}
	return fiber.StatusBadGateway
}
