package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gradpush/recommend-api/internal/models"
)

// ScoreSettingsRepository provides access to per-faculty scoring limits.
type ScoreSettingsRepository interface {
	// GetByFaculty returns gorm.ErrRecordNotFound when the faculty has no
	// settings row; callers fall back to the model defaults.
	GetByFaculty(ctx context.Context, facultyID uint) (models.FacultyScoreSettings, error)
	Upsert(ctx context.Context, settings *models.FacultyScoreSettings) error
}

type scoreSettingsRepository struct {
	db *gorm.DB
}

// NewScoreSettingsRepository constructs a score settings repository.
func NewScoreSettingsRepository(db *gorm.DB) ScoreSettingsRepository {
	return &scoreSettingsRepository{db: db}
}

func (r *scoreSettingsRepository) GetByFaculty(ctx context.Context, facultyID uint) (models.FacultyScoreSettings, error) {
	var settings models.FacultyScoreSettings
	if err := r.db.WithContext(ctx).Where("faculty_id = ?", facultyID).First(&settings).Error; err != nil {
		return models.FacultyScoreSettings{}, err
	}

	return settings, nil
}

func (r *scoreSettingsRepository) Upsert(ctx context.Context, settings *models.FacultyScoreSettings) error {
	var existing models.FacultyScoreSettings
	err := r.db.WithContext(ctx).Where("faculty_id = ?", settings.FacultyID).First(&existing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return r.db.WithContext(ctx).Create(settings).Error
		}
		return err
	}

	settings.ID = existing.ID
	return r.db.WithContext(ctx).Save(settings).Error
}
