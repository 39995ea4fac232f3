package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gradpush/recommend-api/internal/dto"
	"github.com/gradpush/recommend-api/internal/models"
	"github.com/gradpush/recommend-api/internal/repository"
)

// ScoreSettingsService manages per-faculty scoring limits. Changing a cap does
// not touch stored statistics; an administrator runs the recalculation to
// apply it retroactively.
type ScoreSettingsService interface {
	Get(ctx context.Context, facultyID uint) (dto.ScoreSettingsResponse, error)
	Update(ctx context.Context, facultyID uint, payload dto.UpdateScoreSettingsRequest) (dto.ScoreSettingsResponse, error)
}

type scoreSettingsService struct {
	repo      repository.ScoreSettingsRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewScoreSettingsService constructs the score settings service.
func NewScoreSettingsService(repo repository.ScoreSettingsRepository, validate *validator.Validate, logger zerolog.Logger) ScoreSettingsService {
	return &scoreSettingsService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "score_settings_service").Logger(),
	}
}

// Get returns the faculty's effective limits, falling back to the global
// defaults when no row exists.
func (s *scoreSettingsService) Get(ctx context.Context, facultyID uint) (dto.ScoreSettingsResponse, error) {
	settings, err := s.repo.GetByFaculty(ctx, facultyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			defaults := models.DefaultScoreSettings()
			defaults.FacultyID = facultyID
			return dto.NewScoreSettingsResponse(defaults, true), nil
		}
		return dto.ScoreSettingsResponse{}, err
	}

	return dto.NewScoreSettingsResponse(settings, false), nil
}

func (s *scoreSettingsService) Update(ctx context.Context, facultyID uint, payload dto.UpdateScoreSettingsRequest) (dto.ScoreSettingsResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScoreSettingsResponse{}, err
	}

	settings := models.FacultyScoreSettings{
		FacultyID:           facultyID,
		AcademicScoreWeight: payload.AcademicScoreWeight,
		SpecialtyMaxScore:   payload.SpecialtyMaxScore,
		PerformanceMaxScore: payload.PerformanceMaxScore,
	}
	if err := s.repo.Upsert(ctx, &settings); err != nil {
		return dto.ScoreSettingsResponse{}, err
	}

	s.logger.Info().Uint("faculty_id", facultyID).Msg("score settings updated")

	return dto.NewScoreSettingsResponse(settings, false), nil
}
