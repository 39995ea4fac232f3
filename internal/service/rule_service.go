package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gradpush/recommend-api/internal/dto"
	"github.com/gradpush/recommend-api/internal/models"
	"github.com/gradpush/recommend-api/internal/repository"
)

// ErrRuleNotFound indicates the rule was not located.
var ErrRuleNotFound = errors.New("rule not found")

// ErrRuleInactive indicates a match attempt against a disabled rule.
var ErrRuleInactive = errors.New("rule is not active")

// ErrInvalidRuleStatus indicates an unknown rule status value.
var ErrInvalidRuleStatus = errors.New("invalid rule status")

// RuleService manages the scoring rule library and prices category paths
// against it.
type RuleService interface {
	Get(ctx context.Context, id uint) (dto.RuleResponse, error)
	ListActive(ctx context.Context, ruleType string) ([]dto.RuleResponse, error)
	Create(ctx context.Context, payload dto.CreateRuleRequest) (dto.RuleResponse, error)
	Update(ctx context.Context, id uint, payload dto.UpdateRuleRequest) (dto.RuleResponse, error)
	SetStatus(ctx context.Context, id uint, status string) (dto.RuleResponse, error)
	Delete(ctx context.Context, id uint) error
	Match(ctx context.Context, id uint, payload dto.MatchRuleRequest) (dto.MatchRuleResponse, error)
}

type ruleService struct {
	repo      repository.RuleRepository
	evaluator RuleEvaluator
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewRuleService constructs the rule service.
func NewRuleService(repo repository.RuleRepository, evaluator RuleEvaluator, validate *validator.Validate, logger zerolog.Logger) RuleService {
	return &ruleService{
		repo:      repo,
		evaluator: evaluator,
		validator: validate,
		logger:    logger.With().Str("component", "rule_service").Logger(),
	}
}

func (s *ruleService) Get(ctx context.Context, id uint) (dto.RuleResponse, error) {
	rule, err := s.getRule(ctx, id)
	if err != nil {
		return dto.RuleResponse{}, err
	}

	return dto.NewRuleResponse(rule), nil
}

func (s *ruleService) ListActive(ctx context.Context, ruleType string) ([]dto.RuleResponse, error) {
	rules, err := s.repo.ListActive(ctx, ruleType)
	if err != nil {
		return nil, err
	}

	return dto.NewRuleResponses(rules), nil
}

func (s *ruleService) Create(ctx context.Context, payload dto.CreateRuleRequest) (dto.RuleResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RuleResponse{}, err
	}

	rule := models.Rule{
		Name:        payload.Name,
		Type:        payload.Type,
		MaxScore:    payload.MaxScore,
		MaxCount:    payload.MaxCount,
		Status:      models.RuleStatusActive,
		Description: payload.Description,
		Calculation: &models.RuleCalculation{
			CalculationType: payload.Calculation.CalculationType,
			Parameters:      datatypes.JSON(payload.Calculation.Parameters),
		},
	}

	if err := s.repo.Create(ctx, &rule); err != nil {
		return dto.RuleResponse{}, err
	}

	return dto.NewRuleResponse(rule), nil
}

func (s *ruleService) Update(ctx context.Context, id uint, payload dto.UpdateRuleRequest) (dto.RuleResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RuleResponse{}, err
	}

	rule, err := s.getRule(ctx, id)
	if err != nil {
		return dto.RuleResponse{}, err
	}

	rule.Name = payload.Name
	rule.MaxScore = payload.MaxScore
	rule.MaxCount = payload.MaxCount
	rule.Description = payload.Description
	if payload.Calculation != nil {
		if rule.Calculation == nil {
			rule.Calculation = &models.RuleCalculation{RuleID: rule.ID}
		}
		rule.Calculation.CalculationType = payload.Calculation.CalculationType
		rule.Calculation.Parameters = datatypes.JSON(payload.Calculation.Parameters)
	}

	if err := s.repo.Update(ctx, &rule); err != nil {
		return dto.RuleResponse{}, err
	}

	return dto.NewRuleResponse(rule), nil
}

func (s *ruleService) SetStatus(ctx context.Context, id uint, status string) (dto.RuleResponse, error) {
	if status != models.RuleStatusActive && status != models.RuleStatusDisabled {
		return dto.RuleResponse{}, ErrInvalidRuleStatus
	}

	if _, err := s.getRule(ctx, id); err != nil {
		return dto.RuleResponse{}, err
	}
	if err := s.repo.ToggleStatus(ctx, id, status); err != nil {
		return dto.RuleResponse{}, err
	}

	rule, err := s.getRule(ctx, id)
	if err != nil {
		return dto.RuleResponse{}, err
	}

	return dto.NewRuleResponse(rule), nil
}

func (s *ruleService) Delete(ctx context.Context, id uint) error {
	if _, err := s.getRule(ctx, id); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

// Match prices a category path against an active rule. A valid rule that
// simply has no node for the path is not an error; Matched is false and the
// score is zero.
func (s *ruleService) Match(ctx context.Context, id uint, payload dto.MatchRuleRequest) (dto.MatchRuleResponse, error) {
	tracer := otel.Tracer("github.com/gradpush/recommend-api/internal/service/rule")
	ctx, span := tracer.Start(ctx, "rule.match")
	span.SetAttributes(
		attribute.Int64("rule.id", int64(id)),
		attribute.Int("rule.path_depth", len(payload.CategoryPath)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.MatchRuleResponse{}, err
	}

	rule, err := s.getRule(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rule_unavailable")
		return dto.MatchRuleResponse{}, err
	}
	if !rule.IsActive() {
		span.SetStatus(codes.Error, "rule_inactive")
		return dto.MatchRuleResponse{}, ErrRuleInactive
	}

	outcome := s.evaluator.Evaluate(rule, payload.CategoryPath)
	span.SetAttributes(
		attribute.Bool("rule.matched", outcome.Matched),
		attribute.Float64("rule.score", outcome.Score),
	)

	return dto.MatchRuleResponse{Matched: outcome.Matched, Score: outcome.Score}, nil
}

func (s *ruleService) getRule(ctx context.Context, id uint) (models.Rule, error) {
	rule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Rule{}, ErrRuleNotFound
		}
		return models.Rule{}, err
	}

	return rule, nil
}
