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

// RuleHandler exposes the scoring rule library.
type RuleHandler struct {
	service service.RuleService
	logger  zerolog.Logger
}

// NewRuleHandler constructs the handler.
func NewRuleHandler(service service.RuleService, logger zerolog.Logger) *RuleHandler {
	return &RuleHandler{
		service: service,
		logger:  logger.With().Str("component", "rule_handler").Logger(),
	}
}

// Register attaches rule endpoints to the router group.
func (h *RuleHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Patch("/:id/status", h.setStatus)
	router.Delete("/:id", h.delete)
	router.Post("/:id/match", h.match)
}

func (h *RuleHandler) list(c *fiber.Ctx) error {
	ruleType := strings.TrimSpace(c.Query("type"))

	rules, err := h.service.ListActive(c.UserContext(), ruleType)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list rules")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list rules")
	}

	return utils.SendSuccess(c, "rules", rules)
}

func (h *RuleHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	rule, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.sendRuleError(c, id, err, "failed to load rule")
	}

	return utils.SendSuccess(c, "rule", rule)
}

func (h *RuleHandler) create(c *fiber.Ctx) error {
	var payload dto.CreateRuleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	rule, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to create rule")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create rule")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "rule created", rule)
}

func (h *RuleHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.UpdateRuleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	rule, err := h.service.Update(c.UserContext(), id, payload)
	if err != nil {
		return h.sendRuleError(c, id, err, "failed to update rule")
	}

	return utils.SendSuccess(c, "rule updated", rule)
}

func (h *RuleHandler) setStatus(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	rule, err := h.service.SetStatus(c.UserContext(), id, strings.TrimSpace(payload.Status))
	if err != nil {
		if errors.Is(err, service.ErrInvalidRuleStatus) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.sendRuleError(c, id, err, "failed to update rule status")
	}

	return utils.SendSuccess(c, "rule status updated", rule)
}

func (h *RuleHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.sendRuleError(c, id, err, "failed to delete rule")
	}

	return utils.SendSuccess(c, "rule deleted", fiber.Map{"id": id})
}

func (h *RuleHandler) match(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.MatchRuleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Match(c.UserContext(), id, payload)
	if err != nil {
		if errors.Is(err, service.ErrRuleInactive) {
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		}
		return h.sendRuleError(c, id, err, "failed to match category path")
	}

	return utils.SendSuccess(c, "match evaluated", result)
}

func (h *RuleHandler) sendRuleError(c *fiber.Ctx, id uint, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrRuleNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "rule not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Uint("rule_id", id).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
