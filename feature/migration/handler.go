package migration

import (
	"errors"

	"accounting-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for batch and reconciliation state.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the migration routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/migration")
	group.Get("/batches", h.HandleListBatches)
	group.Get("/batches/:id", h.HandleGetBatch)
	group.Get("/reconcile", h.HandleReconcile)
}

// HandleListBatches lists recorded batches.
// @Summary List Batches
// @Description Returns the most recent batches first. Filter with ?status=running|completed|failed.
// @Tags migration
// @Produce json
// @Param status query string false "Batch status"
// @Param limit query int false "Maximum number of batches"
// @Success 200 {array} models.MigrationBatch
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /migration/batches [get]
func (h *Handler) HandleListBatches(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	batches, err := h.service.ListBatches(c.Context(), c.Query("status"), c.QueryInt("limit", DefaultBatchLimit))
	if err != nil {
		l.Error("Failed to list batches", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(batches)
}

// HandleGetBatch returns one batch with its summary.
// @Summary Get Batch
// @Tags migration
// @Produce json
// @Param id path string true "Batch id"
// @Success 200 {object} models.MigrationBatch
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /migration/batches/{id} [get]
func (h *Handler) HandleGetBatch(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	id := c.Params("id")

	batch, err := h.service.GetBatch(c.Context(), id)
	if errors.Is(err, ErrBatchNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Failed to get batch", zap.String("batch_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(batch)
}

// HandleReconcile runs the reconciliation verifier.
// @Summary Reconciliation Report
// @Description Compares the configured snapshot with the target store. Use ?refresh=true to bypass the cache.
// @Tags migration
// @Produce json
// @Param refresh query bool false "Rebuild the cached aggregates"
// @Success 200 {object} reconcile.Report
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /migration/reconcile [get]
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.Reconcile(c.Context(), c.QueryBool("refresh"))
	if err != nil {
		l.Error("Reconciliation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !report.Integrity.ZeroDiff {
		l.Warn("Reconciliation mismatch", zap.Strings("mismatches", report.Integrity.Mismatches))
	}
	return c.JSON(report)
}
