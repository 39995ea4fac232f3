package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/gradpush/recommend-api/internal/dto"
	"github.com/gradpush/recommend-api/internal/models"
	"github.com/gradpush/recommend-api/internal/observability"
	"github.com/gradpush/recommend-api/internal/repository"
)

// ErrStudentNotFound indicates the student record was not located.
var ErrStudentNotFound = errors.New("student not found")

// StatisticsService recomputes the capped subtotals and the weighted composite
// score from a student's approved applications.
type StatisticsService interface {
	Recompute(ctx context.Context, studentNumber string) (dto.StudentStatisticsResponse, error)
	RecalculateAll(ctx context.Context, actor ActivityActor) (dto.BatchRecalculateResponse, error)
}

// RankingCacheInvalidator drops cached ranking views after scores change.
type RankingCacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

type statisticsService struct {
	students     repository.StudentRepository
	applications repository.ApplicationRepository
	settings     repository.ScoreSettingsRepository
	activity     ActivityRecorder
	rankings     RankingCacheInvalidator
	logger       zerolog.Logger
}

// NewStatisticsService constructs the statistics service.
func NewStatisticsService(
	students repository.StudentRepository,
	applications repository.ApplicationRepository,
	settings repository.ScoreSettingsRepository,
	activity ActivityRecorder,
	rankings RankingCacheInvalidator,
	logger zerolog.Logger,
) StatisticsService {
	return &statisticsService{
		students:     students,
		applications: applications,
		settings:     settings,
		activity:     activity,
		rankings:     rankings,
		logger:       logger.With().Str("component", "statistics_service").Logger(),
	}
}

// Recompute sums the student's approved application scores into the two
// recognized buckets, clamps each to the faculty's configured cap and persists
// the subtotals together with the weighted composite in a single update.
func (s *statisticsService) Recompute(ctx context.Context, studentNumber string) (dto.StudentStatisticsResponse, error) {
	tracer := otel.Tracer("github.com/gradpush/recommend-api/internal/service/statistics")
	ctx, span := tracer.Start(ctx, "statistics.recompute")
	span.SetAttributes(attribute.String("statistics.student_number", studentNumber))
	defer span.End()

	student, err := s.students.GetByNumber(ctx, studentNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "student_not_found")
			return dto.StudentStatisticsResponse{}, ErrStudentNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "student_lookup_failed")
		return dto.StudentStatisticsResponse{}, err
	}

	applications, err := s.applications.ListApprovedByStudent(ctx, studentNumber)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "application_lookup_failed")
		return dto.StudentStatisticsResponse{}, err
	}

	var academicSum, comprehensiveSum float64
	for _, application := range applications {
		if application.FinalScore == nil {
			continue
		}
		// Unrecognized types feed neither bucket.
		switch application.ApplicationType {
		case models.ApplicationTypeAcademic:
			academicSum += *application.FinalScore
		case models.ApplicationTypeComprehensive:
			comprehensiveSum += *application.FinalScore
		}
	}

	settings, err := s.resolveSettings(ctx, student.FacultyID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "settings_lookup_failed")
		return dto.StudentStatisticsResponse{}, err
	}
	stats := repository.StudentStatistics{
		AcademicSpecialtyTotal:        math.Min(academicSum, settings.SpecialtyMaxScore),
		ComprehensivePerformanceTotal: math.Min(comprehensiveSum, settings.PerformanceMaxScore),
	}
	stats.ComprehensiveScore = compositeScore(student.AcademicScore, settings.AcademicScoreWeight, stats.AcademicSpecialtyTotal, stats.ComprehensivePerformanceTotal)

	if err := s.students.UpdateStatistics(ctx, studentNumber, stats); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "statistics_update_failed")
		return dto.StudentStatisticsResponse{}, err
	}
	s.invalidateRankings(ctx)

	span.SetAttributes(attribute.Float64("statistics.comprehensive_score", stats.ComprehensiveScore))

	return dto.StudentStatisticsResponse{
		StudentNumber:                 studentNumber,
		AcademicSpecialtyTotal:        stats.AcademicSpecialtyTotal,
		ComprehensivePerformanceTotal: stats.ComprehensivePerformanceTotal,
		ComprehensiveScore:            stats.ComprehensiveScore,
	}, nil
}

// RecalculateAll re-clamps every student's stored subtotals against the
// current settings and refreshes the composite. It does not re-scan
// applications, so a cap change applies retroactively without touching the
// review history. One student failing never aborts the batch.
func (s *statisticsService) RecalculateAll(ctx context.Context, actor ActivityActor) (dto.BatchRecalculateResponse, error) {
	tracer := otel.Tracer("github.com/gradpush/recommend-api/internal/service/statistics")
	ctx, span := tracer.Start(ctx, "statistics.recalculate_all")
	defer span.End()

	students, err := s.students.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "student_list_failed")
		return dto.BatchRecalculateResponse{}, err
	}

	result := dto.BatchRecalculateResponse{Failures: []dto.RecalculateFailure{}}
	for _, student := range students {
		settings, err := s.resolveSettings(ctx, student.FacultyID)
		if err != nil {
			s.logger.Warn().Err(err).Str("student_number", student.StudentNumber).Msg("settings lookup failed during recalculation")
			observability.RecalculationsTotal().WithLabelValues("failure").Inc()
			result.Failures = append(result.Failures, dto.RecalculateFailure{
				StudentNumber: student.StudentNumber,
				Reason:        err.Error(),
			})
			continue
		}

		stats := repository.StudentStatistics{
			AcademicSpecialtyTotal:        math.Min(floatOrZero(student.AcademicSpecialtyTotal), settings.SpecialtyMaxScore),
			ComprehensivePerformanceTotal: math.Min(floatOrZero(student.ComprehensivePerformanceTotal), settings.PerformanceMaxScore),
		}
		stats.ComprehensiveScore = compositeScore(student.AcademicScore, settings.AcademicScoreWeight, stats.AcademicSpecialtyTotal, stats.ComprehensivePerformanceTotal)

		if err := s.students.UpdateStatistics(ctx, student.StudentNumber, stats); err != nil {
			s.logger.Warn().Err(err).Str("student_number", student.StudentNumber).Msg("recalculation failed for student")
			observability.RecalculationsTotal().WithLabelValues("failure").Inc()
			result.Failures = append(result.Failures, dto.RecalculateFailure{
				StudentNumber: student.StudentNumber,
				Reason:        err.Error(),
			})
			continue
		}
		observability.RecalculationsTotal().WithLabelValues("success").Inc()
		result.Updated++
	}

	if result.Updated > 0 {
		s.invalidateRankings(ctx)
	}

	span.SetAttributes(
		attribute.Int("statistics.updated", result.Updated),
		attribute.Int("statistics.failed", len(result.Failures)),
	)

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     models.ActionScoresRecalculated,
			EntityType: "student",
			Metadata: map[string]interface{}{
				"updated": result.Updated,
				"failed":  len(result.Failures),
			},
		})
	}

	return result, nil
}

// resolveSettings returns the faculty's effective scoring limits. The global
// defaults apply only when the student has no faculty or no settings row
// exists; a failed lookup is an error, never a silent fallback, so a faculty
// with tightened caps is not re-clamped against the defaults during an outage.
func (s *statisticsService) resolveSettings(ctx context.Context, facultyID *uint) (models.FacultyScoreSettings, error) {
	if facultyID == nil {
		return models.DefaultScoreSettings(), nil
	}

	settings, err := s.settings.GetByFaculty(ctx, *facultyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DefaultScoreSettings(), nil
		}
		return models.FacultyScoreSettings{}, fmt.Errorf("resolve score settings for faculty %d: %w", *facultyID, err)
	}

	return settings, nil
}

// invalidateRankings drops cached ranking views so the next ranking request
// reflects the scores written here. On failure the stale entry still expires
// on its TTL, so this is warn-only.
func (s *statisticsService) invalidateRankings(ctx context.Context) {
	if s.rankings == nil {
		return
	}
	if err := s.rankings.InvalidateCache(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate ranking cache")
	}
}

func compositeScore(academicScore *float64, weight, specialtyTotal, performanceTotal float64) float64 {
	return roundScore(floatOrZero(academicScore)*weight/100 + specialtyTotal + performanceTotal)
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
