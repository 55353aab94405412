package sync

import (
	"errors"

	"syncvision/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler handles HTTP requests for sync sessions.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/runs", h.HandleTriggerRun)
	group.Get("/runs", h.HandleListRuns)
	group.Get("/runs/:id", h.HandleGetRun)
	group.Get("/runs/:id/report", h.HandleGetReport)
	group.Post("/runs/:id/abort", h.HandleAbortRun)
}

// HandleTriggerRun starts a reconciliation run in the background.
// @Summary Trigger Sync Run
// @Description Start a new reconciliation run. Fails when a run is already in progress.
// @Tags sync
// @Accept json
// @Produce json
// @Success 202 {object} models.SyncSession "Session accepted"
// @Failure 409 {object} map[string]string "Run already in progress"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/runs [post]
func (h *Handler) HandleTriggerRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	session, err := h.service.Trigger(c.Context())
	if err != nil {
		if errors.Is(err, ErrSyncAlreadyRunning) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Failed to trigger sync run", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(session)
}

// HandleListRuns lists recent sessions, newest first.
// @Summary List Sync Runs
// @Description List recent reconciliation sessions.
// @Tags sync
// @Produce json
// @Param limit query int false "Maximum sessions to return (default 50)"
// @Success 200 {array} models.SyncSession "Sessions"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/runs [get]
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	sessions, err := h.service.Sessions(c.Context(), c.QueryInt("limit"))
	if err != nil {
		l.Error("Failed to list sync runs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(sessions)
}

// HandleGetRun returns one session by ID.
// @Summary Get Sync Run
// @Description Get a single reconciliation session with its counters.
// @Tags sync
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.SyncSession "Session"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/runs/{id} [get]
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	session, err := h.service.Session(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "session not found",
			})
		}
		l.Error("Failed to load sync run", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(session)
}

// HandleGetReport returns the compiled report of a finished session.
// @Summary Get Sync Report
// @Description Get the discrepancy report of a finished reconciliation session.
// @Tags sync
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} ReportSummary "Report"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 409 {object} map[string]string "Session still running"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/runs/{id}/report [get]
func (h *Handler) HandleGetReport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.Report(c.Context(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "session not found",
			})
		case errors.Is(err, ErrSessionNotFinished):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Failed to compile sync report", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}

// HandleAbortRun requests cancellation of a running session.
// @Summary Abort Sync Run
// @Description Cancel a running reconciliation session. It finalizes at the next batch boundary.
// @Tags sync
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Success 202 {object} map[string]string "Abort requested"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 409 {object} map[string]string "Session not running"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/runs/{id}/abort [post]
func (h *Handler) HandleAbortRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	if err := h.service.Abort(c.Context(), c.Params("id")); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "session not found",
			})
		case errors.Is(err, ErrSessionNotRunning):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Failed to abort sync run", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "abort requested",
	})
}
