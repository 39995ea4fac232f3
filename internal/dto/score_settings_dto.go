package dto

import "github.com/gradpush/recommend-api/internal/models"

// UpdateScoreSettingsRequest replaces a faculty's scoring limits.
type UpdateScoreSettingsRequest struct {
	AcademicScoreWeight float64 `json:"academic_score_weight" validate:"gt=0,lte=100"`
	SpecialtyMaxScore   float64 `json:"specialty_max_score" validate:"gte=0"`
	PerformanceMaxScore float64 `json:"performance_max_score" validate:"gte=0"`
}

// ScoreSettingsResponse reports the effective scoring limits for a faculty.
// Defaulted is true when no faculty-specific row exists.
type ScoreSettingsResponse struct {
	FacultyID           uint    `json:"faculty_id"`
	AcademicScoreWeight float64 `json:"academic_score_weight"`
	SpecialtyMaxScore   float64 `json:"specialty_max_score"`
	PerformanceMaxScore float64 `json:"performance_max_score"`
	Defaulted           bool    `json:"defaulted"`
}

// NewScoreSettingsResponse maps a settings row to its API view.
func NewScoreSettingsResponse(settings models.FacultyScoreSettings, defaulted bool) ScoreSettingsResponse {
	return ScoreSettingsResponse{
		FacultyID:           settings.FacultyID,
		AcademicScoreWeight: settings.AcademicScoreWeight,
		SpecialtyMaxScore:   settings.SpecialtyMaxScore,
		PerformanceMaxScore: settings.PerformanceMaxScore,
		Defaulted:           defaulted,
	}
}
