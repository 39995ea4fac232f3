package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradpush/recommend-api/internal/dto"
	"github.com/gradpush/recommend-api/internal/service"
	"github.com/gradpush/recommend-api/internal/utils"
)

// ScoreSettingsHandler exposes per-faculty scoring limits.
type ScoreSettingsHandler struct {
	service service.ScoreSettingsService
	logger  zerolog.Logger
}

// NewScoreSettingsHandler constructs the handler.
func NewScoreSettingsHandler(service service.ScoreSettingsService, logger zerolog.Logger) *ScoreSettingsHandler {
	return &ScoreSettingsHandler{
		service: service,
		logger:  logger.With().Str("component", "score_settings_handler").Logger(),
	}
}

// Register attaches score settings endpoints to the router group.
func (h *ScoreSettingsHandler) Register(router fiber.Router) {
	router.Get("/:id/score-settings", h.get)
	router.Put("/:id/score-settings", h.update)
}

func (h *ScoreSettingsHandler) get(c *fiber.Ctx) error {
	facultyID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid faculty id")
	}

	settings, err := h.service.Get(c.UserContext(), facultyID)
	if err != nil {
		h.logger.Error().Err(err).Uint("faculty_id", facultyID).Msg("failed to load score settings")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load score settings")
	}

	return utils.SendSuccess(c, "score settings", settings)
}

func (h *ScoreSettingsHandler) update(c *fiber.Ctx) error {
	facultyID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid faculty id")
	}

	var payload dto.UpdateScoreSettingsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	settings, err := h.service.Update(c.UserContext(), facultyID, payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Uint("faculty_id", facultyID).Msg("failed to update score settings")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update score settings")
	}

	return utils.SendSuccess(c, "score settings updated", settings)
}
