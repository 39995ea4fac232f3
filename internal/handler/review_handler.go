package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradpush/recommend-api/internal/dto"
	"github.com/gradpush/recommend-api/internal/observability"
	"github.com/gradpush/recommend-api/internal/service"
	"github.com/gradpush/recommend-api/internal/utils"
)

// ReviewHandler wires the application review endpoints.
type ReviewHandler struct {
	service service.ReviewService
	logger  zerolog.Logger
}

// NewReviewHandler constructs the handler.
func NewReviewHandler(service service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger.With().Str("component", "review_handler").Logger(),
	}
}

// Register attaches the reviewer decision endpoints to the router group.
func (h *ReviewHandler) Register(router fiber.Router) {
	router.Post("/:id/approve", h.approve)
	router.Post("/:id/reject", h.reject)
	router.Post("/batch", h.batch)
}

// RegisterResubmission attaches the student-facing resubmission endpoint. It
// is registered separately so the reviewer role gate does not apply to it.
func (h *ReviewHandler) RegisterResubmission(router fiber.Router) {
	router.Post("/:id/resubmit", h.resubmit)
}

func (h *ReviewHandler) approve(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.ApproveApplicationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	actor := activityActorFromContext(c)
	result, err := h.service.Approve(c.UserContext(), id, payload, actor)
	if err != nil {
		return h.sendDecisionError(c, id, err, "failed to approve application")
	}

	observability.ReviewDecisionsTotal().WithLabelValues("approve").Inc()

	message := "application approved"
	if result.RecomputeWarning != "" {
		message = "application approved, statistics update failed"
	}
	return utils.SendSuccess(c, message, result)
}

func (h *ReviewHandler) reject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.RejectApplicationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	actor := activityActorFromContext(c)
	result, err := h.service.Reject(c.UserContext(), id, payload, actor)
	if err != nil {
		return h.sendDecisionError(c, id, err, "failed to reject application")
	}

	observability.ReviewDecisionsTotal().WithLabelValues("reject").Inc()

	message := "application rejected"
	if result.RecomputeWarning != "" {
		message = "application rejected, statistics update failed"
	}
	return utils.SendSuccess(c, message, result)
}

func (h *ReviewHandler) resubmit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	studentNumber := studentNumberFromContext(c)
	if studentNumber == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "student identity required")
	}

	application, err := h.service.Resubmit(c.UserContext(), id, studentNumber)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrApplicationNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "application not found")
		case errors.Is(err, service.ErrApplicationNotRejected):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		default:
			h.logger.Error().Err(err).Uint("application_id", id).Msg("failed to resubmit application")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to resubmit application")
		}
	}

	return utils.SendSuccess(c, "application resubmitted", application)
}

func (h *ReviewHandler) batch(c *fiber.Ctx) error {
	var payload dto.BatchReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	actor := activityActorFromContext(c)
	result, err := h.service.BatchReview(c.UserContext(), payload, actor)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("batch review failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "batch review failed")
	}

	observability.ReviewDecisionsTotal().WithLabelValues("batch_" + payload.Action).Inc()

	return utils.SendSuccess(c, "batch review completed", result)
}

func (h *ReviewHandler) sendDecisionError(c *fiber.Ctx, id uint, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrApplicationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "application not found")
	case errors.Is(err, service.ErrApplicationNotPending):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Uint("application_id", id).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
