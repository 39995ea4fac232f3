package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gradpush/recommend-api/internal/models"
)

// RuleRepository provides access to scoring rules and their calculations.
type RuleRepository interface {
	GetByID(ctx context.Context, id uint) (models.Rule, error)
	ListActive(ctx context.Context, ruleType string) ([]models.Rule, error)
	Create(ctx context.Context, rule *models.Rule) error
	Update(ctx context.Context, rule *models.Rule) error
	ToggleStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) error
}

type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository constructs a rule repository.
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) GetByID(ctx context.Context, id uint) (models.Rule, error) {
	var rule models.Rule
	if err := r.db.WithContext(ctx).Preload("Calculation").First(&rule, id).Error; err != nil {
		return models.Rule{}, err
	}

	return rule, nil
}

func (r *ruleRepository) ListActive(ctx context.Context, ruleType string) ([]models.Rule, error) {
	query := r.db.WithContext(ctx).Preload("Calculation").Where("status = ?", models.RuleStatusActive)
	if ruleType != "" {
		query = query.Where("type = ?", ruleType)
	}

	var rules []models.Rule
	if err := query.Order("id ASC").Find(&rules).Error; err != nil {
		return nil, err
	}

	return rules, nil
}

func (r *ruleRepository) Create(ctx context.Context, rule *models.Rule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *ruleRepository) Update(ctx context.Context, rule *models.Rule) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(rule).Error
}

func (r *ruleRepository) ToggleStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Rule{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *ruleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Rule{}, id).Error
}
