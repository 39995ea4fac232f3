package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradpush/recommend-api/internal/repository"
	"github.com/gradpush/recommend-api/internal/utils"
)

// OrganizationHandler serves the faculty/department/major hierarchy used by
// filter dropdowns.
type OrganizationHandler struct {
	repo   repository.OrganizationRepository
	logger zerolog.Logger
}

// NewOrganizationHandler constructs the handler.
func NewOrganizationHandler(repo repository.OrganizationRepository, logger zerolog.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		repo:   repo,
		logger: logger.With().Str("component", "organization_handler").Logger(),
	}
}

// Register attaches organization endpoints to the router group.
func (h *OrganizationHandler) Register(router fiber.Router) {
	router.Get("/faculties", h.faculties)
	router.Get("/departments", h.departments)
	router.Get("/majors", h.majors)
}

func (h *OrganizationHandler) faculties(c *fiber.Ctx) error {
	faculties, err := h.repo.ListFaculties(c.UserContext())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list faculties")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list faculties")
	}

	return utils.SendSuccess(c, "faculties", faculties)
}

func (h *OrganizationHandler) departments(c *fiber.Ctx) error {
	facultyID, err := parseFilterID(c, "faculty_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid faculty_id")
	}

	departments, err := h.repo.ListDepartments(c.UserContext(), facultyID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list departments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list departments")
	}

	return utils.SendSuccess(c, "departments", departments)
}

func (h *OrganizationHandler) majors(c *fiber.Ctx) error {
	departmentID, err := parseFilterID(c, "department_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid department_id")
	}

	majors, err := h.repo.ListMajors(c.UserContext(), departmentID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list majors")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list majors")
	}

	return utils.SendSuccess(c, "majors", majors)
}
