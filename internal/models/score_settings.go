package models

import "time"

// Default scoring limits applied when a faculty has no settings row.
const (
	DefaultAcademicScoreWeight = 80.0
	DefaultSpecialtyMaxScore   = 15.0
	DefaultPerformanceMaxScore = 5.0
)

// FacultyScoreSettings holds per-faculty caps and the academic score weight.
// At most one row exists per faculty; absence means the defaults above apply.
type FacultyScoreSettings struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	FacultyID           uint      `gorm:"uniqueIndex;not null" json:"faculty_id"`
	AcademicScoreWeight float64   `gorm:"not null;default:80" json:"academic_score_weight"`
	SpecialtyMaxScore   float64   `gorm:"not null;default:15" json:"specialty_max_score"`
	PerformanceMaxScore float64   `gorm:"not null;default:5" json:"performance_max_score"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DefaultScoreSettings returns the effective settings used when no
// faculty-specific row exists.
func DefaultScoreSettings() FacultyScoreSettings {
	return FacultyScoreSettings{
		AcademicScoreWeight: DefaultAcademicScoreWeight,
		SpecialtyMaxScore:   DefaultSpecialtyMaxScore,
		PerformanceMaxScore: DefaultPerformanceMaxScore,
	}
}
