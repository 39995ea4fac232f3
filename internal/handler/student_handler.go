package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradpush/recommend-api/internal/dto"
	"github.com/gradpush/recommend-api/internal/service"
	"github.com/gradpush/recommend-api/internal/utils"
)

// StudentHandler serves the student roster and statistics recalculation.
type StudentHandler struct {
	students   service.StudentService
	statistics service.StatisticsService
	logger     zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(students service.StudentService, statistics service.StatisticsService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		students:   students,
		statistics: statistics,
		logger:     logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches student endpoints to the router group.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/recalculate", h.recalculateAll)
	router.Get("/:number", h.get)
	router.Post("/:number/recalculate", h.recalculate)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	req := dto.StudentListRequest{Search: strings.TrimSpace(c.Query("search"))}
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
	if req.Page, err = parseQueryInt(c, "page"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	if req.PageSize, err = parseQueryInt(c, "page_size"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	result, err := h.students.List(c.UserContext(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list students")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list students")
	}

	return utils.SendSuccess(c, "students", result)
}

func (h *StudentHandler) get(c *fiber.Ctx) error {
	number := strings.TrimSpace(c.Params("number"))
	if number == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "student number required")
	}

	student, err := h.students.Get(c.UserContext(), number)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		h.logger.Error().Err(err).Str("student_number", number).Msg("failed to load student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load student")
	}

	return utils.SendSuccess(c, "student", student)
}

func (h *StudentHandler) recalculate(c *fiber.Ctx) error {
	number := strings.TrimSpace(c.Params("number"))
	if number == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "student number required")
	}

	result, err := h.statistics.Recompute(c.UserContext(), number)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		h.logger.Error().Err(err).Str("student_number", number).Msg("failed to recalculate statistics")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to recalculate statistics")
	}

	return utils.SendSuccess(c, "statistics recalculated", result)
}

func (h *StudentHandler) recalculateAll(c *fiber.Ctx) error {
	actor := activityActorFromContext(c)
	result, err := h.statistics.RecalculateAll(c.UserContext(), actor)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to recalculate statistics for all students")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to recalculate statistics")
	}

	message := "statistics recalculated"
	if len(result.Failures) > 0 {
		message = "statistics recalculated with failures"
	}
	return utils.SendSuccess(c, message, result)
}
