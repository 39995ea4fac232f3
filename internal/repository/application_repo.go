package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gradpush/recommend-api/internal/models"
)

// ApplicationFilter narrows application queries.
type ApplicationFilter struct {
	StudentNumber   string
	Status          string
	ApplicationType string
	Page            int
	PageSize        int
}

// ApplicationRepository provides access to achievement applications.
type ApplicationRepository interface {
	GetByID(ctx context.Context, id uint) (models.Application, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Application, error)
	ListApprovedByStudent(ctx context.Context, studentNumber string) ([]models.Application, error)
	List(ctx context.Context, filter ApplicationFilter) ([]models.Application, int64, error)
	Create(ctx context.Context, application *models.Application) error
	Update(ctx context.Context, application *models.Application) error
	UpdateAll(ctx context.Context, applications []models.Application) error
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository constructs an application repository.
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) GetByID(ctx context.Context, id uint) (models.Application, error) {
	var application models.Application
	if err := r.db.WithContext(ctx).First(&application, id).Error; err != nil {
		return models.Application{}, err
	}

	return application, nil
}

func (r *applicationRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Application, error) {
	var applications []models.Application
	if len(ids) == 0 {
		return applications, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&applications).Error; err != nil {
		return nil, err
	}

	return applications, nil
}

func (r *applicationRepository) ListApprovedByStudent(ctx context.Context, studentNumber string) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.WithContext(ctx).
		Where("student_number = ? AND status = ?", studentNumber, models.ApplicationStatusApproved).
		Find(&applications).Error
	if err != nil {
		return nil, err
	}

	return applications, nil
}

func (r *applicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]models.Application, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Application{})

	if filter.StudentNumber != "" {
		query = query.Where("student_number = ?", filter.StudentNumber)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ApplicationType != "" {
		query = query.Where("application_type = ?", filter.ApplicationType)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var applications []models.Application
	if err := query.Order("applied_at DESC").Find(&applications).Error; err != nil {
		return nil, 0, err
	}

	return applications, total, nil
}

func (r *applicationRepository) Create(ctx context.Context, application *models.Application) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *applicationRepository) Update(ctx context.Context, application *models.Application) error {
	return r.db.WithContext(ctx).Save(application).Error
}

// UpdateAll persists a batch of reviewed applications in one transaction so a
// batch review commits atomically.
func (r *applicationRepository) UpdateAll(ctx context.Context, applications []models.Application) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range applications {
			if err := tx.Save(&applications[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
