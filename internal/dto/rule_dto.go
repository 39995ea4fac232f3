package dto

import (
	"encoding/json"
	"time"

	"github.com/gradpush/recommend-api/internal/models"
)

// CreateRuleRequest defines a new scoring rule with its calculation config.
type CreateRuleRequest struct {
	Name        string          `json:"name" validate:"required,max=256"`
	Type        string          `json:"type" validate:"required,max=50"`
	MaxScore    *float64        `json:"max_score" validate:"omitempty,gte=0"`
	MaxCount    *int            `json:"max_count" validate:"omitempty,gte=0"`
	Description string          `json:"description" validate:"max=2000"`
	Calculation CalculationSpec `json:"calculation" validate:"required"`
}

// UpdateRuleRequest replaces the mutable fields of an existing rule.
type UpdateRuleRequest struct {
	Name        string           `json:"name" validate:"required,max=256"`
	MaxScore    *float64         `json:"max_score" validate:"omitempty,gte=0"`
	MaxCount    *int             `json:"max_count" validate:"omitempty,gte=0"`
	Description string           `json:"description" validate:"max=2000"`
	Calculation *CalculationSpec `json:"calculation"`
}

// CalculationSpec carries the calculation strategy and its raw parameters.
type CalculationSpec struct {
	CalculationType string          `json:"calculation_type" validate:"required,max=50"`
	Parameters      json.RawMessage `json:"parameters" validate:"required"`
}

// MatchRuleRequest asks what score a category path is worth under a rule.
type MatchRuleRequest struct {
	CategoryPath []string `json:"category_path" validate:"required,min=1,dive,required"`
}

// MatchRuleResponse reports the evaluation outcome. Score is zero whenever
// Matched is false.
type MatchRuleResponse struct {
	Matched bool    `json:"matched"`
	Score   float64 `json:"score"`
}

// RuleResponse is the API view of a rule.
type RuleResponse struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	MaxScore    *float64         `json:"max_score"`
	MaxCount    *int             `json:"max_count"`
	Status      string           `json:"status"`
	Description string           `json:"description"`
	Calculation *CalculationSpec `json:"calculation,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewRuleResponse maps a rule model to its API view.
func NewRuleResponse(rule models.Rule) RuleResponse {
	response := RuleResponse{
		ID:          rule.ID,
		Name:        rule.Name,
		Type:        rule.Type,
		MaxScore:    rule.MaxScore,
		MaxCount:    rule.MaxCount,
		Status:      rule.Status,
		Description: rule.Description,
		CreatedAt:   rule.CreatedAt,
		UpdatedAt:   rule.UpdatedAt,
	}

	if rule.Calculation != nil {
		response.Calculation = &CalculationSpec{
			CalculationType: rule.Calculation.CalculationType,
			Parameters:      json.RawMessage(rule.Calculation.Parameters),
		}
	}

	return response
}

// NewRuleResponses maps a slice of rules.
func NewRuleResponses(rules []models.Rule) []RuleResponse {
	responses := make([]RuleResponse, 0, len(rules))
	for _, rule := range rules {
		responses = append(responses, NewRuleResponse(rule))
	}

	return responses
}
