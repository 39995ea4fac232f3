package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gradpush/recommend-api/internal/models"
)

func approvedApplication(id uint, studentNumber, applicationType string, score float64) models.Application {
	return models.Application{
		ID:              id,
		StudentNumber:   studentNumber,
		ApplicationType: applicationType,
		Status:          models.ApplicationStatusApproved,
		FinalScore:      ptrFloat(score),
	}
}

func TestRecomputeCapsAndComposite(t *testing.T) {
	students := newFakeStudentRepo(models.Student{
		StudentNumber: "2021001",
		FacultyID:     ptrUint(1),
		AcademicScore: ptrFloat(90),
	})
	applications := newFakeApplicationRepo(
		approvedApplication(1, "2021001", models.ApplicationTypeAcademic, 10),
		approvedApplication(2, "2021001", models.ApplicationTypeAcademic, 8),
		approvedApplication(3, "2021001", models.ApplicationTypeComprehensive, 3),
	)
	settings := newFakeSettingsRepo()
	settings.settings[1] = models.FacultyScoreSettings{
		FacultyID:           1,
		AcademicScoreWeight: 80,
		SpecialtyMaxScore:   15,
		PerformanceMaxScore: 5,
	}

	svc := NewStatisticsService(students, applications, settings, nil, nil, testLogger())

	result, err := svc.Recompute(context.Background(), "2021001")
	require.NoError(t, err)
	require.Equal(t, 15.0, result.AcademicSpecialtyTotal)
	require.Equal(t, 3.0, result.ComprehensivePerformanceTotal)
	require.Equal(t, 90.0, result.ComprehensiveScore)

	stored := students.statistics["2021001"]
	require.Equal(t, 15.0, stored.AcademicSpecialtyTotal)
	require.Equal(t, 3.0, stored.ComprehensivePerformanceTotal)
	require.Equal(t, 90.0, stored.ComprehensiveScore)
}

func TestRecomputeUsesDefaultsWithoutSettings(t *testing.T) {
	students := newFakeStudentRepo(models.Student{
		StudentNumber: "2021002",
		FacultyID:     ptrUint(7),
		AcademicScore: ptrFloat(80),
	})
	applications := newFakeApplicationRepo(
		approvedApplication(1, "2021002", models.ApplicationTypeAcademic, 100),
		approvedApplication(2, "2021002", models.ApplicationTypeComprehensive, 100),
	)

	svc := NewStatisticsService(students, applications, newFakeSettingsRepo(), nil, nil, testLogger())

	result, err := svc.Recompute(context.Background(), "2021002")
	require.NoError(t, err)
	require.Equal(t, models.DefaultSpecialtyMaxScore, result.AcademicSpecialtyTotal)
	require.Equal(t, models.DefaultPerformanceMaxScore, result.ComprehensivePerformanceTotal)
	// 80*0.8 + 15 + 5
	require.Equal(t, 84.0, result.ComprehensiveScore)
}

func TestRecomputeNilAcademicScoreAndNoFaculty(t *testing.T) {
	students := newFakeStudentRepo(models.Student{StudentNumber: "2021003"})
	applications := newFakeApplicationRepo(
		approvedApplication(1, "2021003", models.ApplicationTypeComprehensive, 2),
	)

	svc := NewStatisticsService(students, applications, newFakeSettingsRepo(), nil, nil, testLogger())

	result, err := svc.Recompute(context.Background(), "2021003")
	require.NoError(t, err)
	require.Equal(t, 0.0, result.AcademicSpecialtyTotal)
	require.Equal(t, 2.0, result.ComprehensivePerformanceTotal)
	require.Equal(t, 2.0, result.ComprehensiveScore)
}

func TestRecomputeIgnoresUnrecognizedTypes(t *testing.T) {
	students := newFakeStudentRepo(models.Student{StudentNumber: "2021004"})
	applications := newFakeApplicationRepo(
		approvedApplication(1, "2021004", "sports", 9),
		approvedApplication(2, "2021004", models.ApplicationTypeAcademic, 4),
	)

	svc := NewStatisticsService(students, applications, newFakeSettingsRepo(), nil, nil, testLogger())

	result, err := svc.Recompute(context.Background(), "2021004")
	require.NoError(t, err)
	require.Equal(t, 4.0, result.AcademicSpecialtyTotal)
	require.Equal(t, 0.0, result.ComprehensivePerformanceTotal)
}

func TestRecomputeIgnoresPendingAndNilScores(t *testing.T) {
	pending := models.Application{
		ID:              1,
		StudentNumber:   "2021005",
		ApplicationType: models.ApplicationTypeAcademic,
		Status:          models.ApplicationStatusPending,
		FinalScore:      ptrFloat(10),
	}
	approvedNoScore := models.Application{
		ID:              2,
		StudentNumber:   "2021005",
		ApplicationType: models.ApplicationTypeAcademic,
		Status:          models.ApplicationStatusApproved,
	}
	students := newFakeStudentRepo(models.Student{StudentNumber: "2021005"})
	applications := newFakeApplicationRepo(pending, approvedNoScore,
		approvedApplication(3, "2021005", models.ApplicationTypeAcademic, 5))

	svc := NewStatisticsService(students, applications, newFakeSettingsRepo(), nil, nil, testLogger())

	result, err := svc.Recompute(context.Background(), "2021005")
	require.NoError(t, err)
	require.Equal(t, 5.0, result.AcademicSpecialtyTotal)
}

func TestRecomputeStudentNotFound(t *testing.T) {
	svc := NewStatisticsService(newFakeStudentRepo(), newFakeApplicationRepo(), newFakeSettingsRepo(), nil, nil, testLogger())

	_, err := svc.Recompute(context.Background(), "missing")
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestRecalculateAllReclampsStoredSubtotals(t *testing.T) {
	students := newFakeStudentRepo(models.Student{
		StudentNumber:                 "2021006",
		FacultyID:                     ptrUint(1),
		AcademicScore:                 ptrFloat(90),
		AcademicSpecialtyTotal:        ptrFloat(15),
		ComprehensivePerformanceTotal: ptrFloat(5),
		ComprehensiveScore:            ptrFloat(92),
	})
	settings := newFakeSettingsRepo()
	// Caps tightened after the subtotals were stored.
	settings.settings[1] = models.FacultyScoreSettings{
		FacultyID:           1,
		AcademicScoreWeight: 80,
		SpecialtyMaxScore:   10,
		PerformanceMaxScore: 3,
	}

	svc := NewStatisticsService(students, newFakeApplicationRepo(), settings, nil, nil, testLogger())

	result, err := svc.RecalculateAll(context.Background(), ActivityActor{ID: 1, Role: "admin"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Updated)
	require.Empty(t, result.Failures)

	stored := students.statistics["2021006"]
	require.Equal(t, 10.0, stored.AcademicSpecialtyTotal)
	require.Equal(t, 3.0, stored.ComprehensivePerformanceTotal)
	require.Equal(t, 85.0, stored.ComprehensiveScore)
}

func TestRecalculateAllContinuesOnFailure(t *testing.T) {
	var roster []models.Student
	for _, number := range []string{"s1", "s2", "s3", "s4", "s5"} {
		roster = append(roster, models.Student{StudentNumber: number, AcademicScore: ptrFloat(60)})
	}
	students := newFakeStudentRepo(roster...)
	students.failStatisticsFor = map[string]error{"s3": errors.New("connection reset")}
	recorder := &fakeActivityRecorder{}

	svc := NewStatisticsService(students, newFakeApplicationRepo(), newFakeSettingsRepo(), recorder, nil, testLogger())

	result, err := svc.RecalculateAll(context.Background(), ActivityActor{ID: 1, Role: "admin"})
	require.NoError(t, err)
	require.Equal(t, 4, result.Updated)
	require.Len(t, result.Failures, 1)
	require.Equal(t, "s3", result.Failures[0].StudentNumber)
	require.Contains(t, result.Failures[0].Reason, "connection reset")

	for _, number := range []string{"s1", "s2", "s4", "s5"} {
		require.Contains(t, students.statistics, number)
	}

	require.Len(t, recorder.entries, 1)
	require.Equal(t, models.ActionScoresRecalculated, recorder.entries[0].Action)
}

func TestRecomputeSurfacesSettingsLookupFailure(t *testing.T) {
	students := newFakeStudentRepo(models.Student{
		StudentNumber: "2021008",
		FacultyID:     ptrUint(3),
		AcademicScore: ptrFloat(90),
	})
	applications := newFakeApplicationRepo(
		approvedApplication(1, "2021008", models.ApplicationTypeAcademic, 10),
	)
	settings := newFakeSettingsRepo()
	settings.err = errors.New("connection refused")

	svc := NewStatisticsService(students, applications, settings, nil, nil, testLogger())

	_, err := svc.Recompute(context.Background(), "2021008")
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection refused")

	// Nothing was clamped against the defaults and persisted.
	require.NotContains(t, students.statistics, "2021008")
}

func TestRecalculateAllRecordsSettingsLookupFailures(t *testing.T) {
	students := newFakeStudentRepo(
		models.Student{StudentNumber: "s1", FacultyID: ptrUint(3), AcademicScore: ptrFloat(60)},
		models.Student{StudentNumber: "s2", AcademicScore: ptrFloat(60)},
	)
	settings := newFakeSettingsRepo()
	settings.err = errors.New("connection refused")

	svc := NewStatisticsService(students, newFakeApplicationRepo(), settings, nil, nil, testLogger())

	result, err := svc.RecalculateAll(context.Background(), ActivityActor{ID: 1, Role: "admin"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Updated)
	require.Len(t, result.Failures, 1)
	require.Equal(t, "s1", result.Failures[0].StudentNumber)
	require.Contains(t, result.Failures[0].Reason, "connection refused")

	// The faculty-less student falls back to the defaults and still updates.
	require.NotContains(t, students.statistics, "s1")
	require.Contains(t, students.statistics, "s2")
}

func TestRecomputeInvalidatesRankingCache(t *testing.T) {
	students := newFakeStudentRepo(models.Student{StudentNumber: "2021009", AcademicScore: ptrFloat(80)})
	rankings := &fakeRankingCache{}

	svc := NewStatisticsService(students, newFakeApplicationRepo(), newFakeSettingsRepo(), nil, rankings, testLogger())

	_, err := svc.Recompute(context.Background(), "2021009")
	require.NoError(t, err)
	require.Equal(t, 1, rankings.invalidations)
}

func TestRecalculateAllInvalidatesRankingCacheOnce(t *testing.T) {
	students := newFakeStudentRepo(
		models.Student{StudentNumber: "s1", AcademicScore: ptrFloat(60)},
		models.Student{StudentNumber: "s2", AcademicScore: ptrFloat(70)},
	)
	rankings := &fakeRankingCache{}

	svc := NewStatisticsService(students, newFakeApplicationRepo(), newFakeSettingsRepo(), nil, rankings, testLogger())

	result, err := svc.RecalculateAll(context.Background(), ActivityActor{ID: 1, Role: "admin"})
	require.NoError(t, err)
	require.Equal(t, 2, result.Updated)
	require.Equal(t, 1, rankings.invalidations)
}

func TestRecomputeRoundsCompositeToFourDecimals(t *testing.T) {
	students := newFakeStudentRepo(models.Student{
		StudentNumber: "2021007",
		AcademicScore: ptrFloat(87.654321),
	})
	applications := newFakeApplicationRepo(
		approvedApplication(1, "2021007", models.ApplicationTypeAcademic, 1.11111),
	)

	svc := NewStatisticsService(students, applications, newFakeSettingsRepo(), nil, nil, testLogger())

	result, err := svc.Recompute(context.Background(), "2021007")
	require.NoError(t, err)
	// 87.654321*0.8 + 1.11111 = 71.2345668, rounded to 4 places.
	require.Equal(t, 71.2346, result.ComprehensiveScore)
}
