package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradpush/recommend-api/internal/dto"
	"github.com/gradpush/recommend-api/internal/service"
	"github.com/gradpush/recommend-api/internal/utils"
)

// ActivityHandler exposes the administrative audit trail.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches the audit trail endpoint to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	req := dto.ActivityListRequest{
		Action:     strings.TrimSpace(c.Query("action")),
		EntityType: strings.TrimSpace(c.Query("entity_type")),
	}
	var err error
	if req.Page, err = parseQueryInt(c, "page"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	if req.PageSize, err = parseQueryInt(c, "page_size"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}
	actorID, err := parseQueryInt(c, "actor_id")
	if err != nil || actorID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid actor_id")
	}
	req.ActorID = uint(actorID)

	result, err := h.service.List(c.UserContext(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list activity log")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity log")
	}

	return utils.SendSuccess(c, "activity log", result)
}
