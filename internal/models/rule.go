package models

import (
	"time"

	"gorm.io/datatypes"
)

// Rule statuses.
const (
	RuleStatusActive   = "active"
	RuleStatusDisabled = "disabled"
)

// CalculationTypeTree is the only calculation strategy the evaluator
// implements; rules carrying any other type evaluate to zero.
const CalculationTypeTree = "tree"

// Rule is a scoring template mapping an achievement to a point value.
type Rule struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Name        string   `gorm:"size:256;not null" json:"name"`
	Type        string   `gorm:"size:50;not null;index" json:"type"`
	MaxScore    *float64 `json:"max_score"`
	MaxCount    *int     `json:"max_count"`
	Status      string   `gorm:"size:20;not null;default:active" json:"status"`
	Description string   `gorm:"type:text" json:"description"`

	Calculation *RuleCalculation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"calculation"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RuleCalculation holds the evaluation configuration for a rule (1:1). For the
// tree type, Parameters encodes nested category nodes:
//
//	{"tree": {"children": [{"name": "...", "score": 2, "children": [...]}]}}
type RuleCalculation struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	RuleID          uint           `gorm:"uniqueIndex;not null" json:"rule_id"`
	CalculationType string         `gorm:"size:50;not null" json:"calculation_type"`
	Parameters      datatypes.JSON `gorm:"type:json" json:"parameters"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// IsActive reports whether the rule may be matched against new applications.
func (r Rule) IsActive() bool {
	return r.Status == RuleStatusActive
}
