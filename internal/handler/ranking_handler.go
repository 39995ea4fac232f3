package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradpush/recommend-api/internal/dto"
	"github.com/gradpush/recommend-api/internal/service"
	"github.com/gradpush/recommend-api/internal/utils"
)

// RankingHandler serves the admission ranking view.
type RankingHandler struct {
	service service.RankingService
	logger  zerolog.Logger
}

// NewRankingHandler constructs the handler.
func NewRankingHandler(service service.RankingService, logger zerolog.Logger) *RankingHandler {
	return &RankingHandler{
		service: service,
		logger:  logger.With().Str("component", "ranking_handler").Logger(),
	}
}

// Register attaches the ranking endpoint to the router group.
func (h *RankingHandler) Register(router fiber.Router) {
	router.Get("/", h.ranking)
}

func (h *RankingHandler) ranking(c *fiber.Ctx) error {
	req := dto.RankingRequest{}
	var err error
	if req.FacultyID, err = parseFilterID(c, "faculty_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid faculty_id")
	}
	if req.DepartmentID, err = parseFilterID(c, "department_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid department_id")
	}
	if req.MajorID, err = parseFilterID(c, "major_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid major_id")
	}

	result, err := h.service.Rank(c.UserContext(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("ranking query failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "ranking query failed")
	}

	return utils.SendSuccess(c, "ranking", result)
}
