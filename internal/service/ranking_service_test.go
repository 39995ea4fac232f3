package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/gradpush/recommend-api/internal/dto"
	"github.com/gradpush/recommend-api/internal/models"
)

func rankedStudent(number string, majorID uint, score *float64) models.Student {
	return models.Student{
		StudentNumber:      number,
		Name:               "学生" + number,
		DepartmentID:       1,
		MajorID:            majorID,
		ComprehensiveScore: score,
	}
}

func newRankingService(students *fakeStudentRepo, cache *redis.Client) RankingService {
	organizations := &fakeOrganizationRepo{
		faculties:   []models.Faculty{{ID: 1, Name: "信息学院"}},
		departments: []models.Department{{ID: 1, Name: "计算机系"}},
		majors:      []models.Major{{ID: 1, Name: "软件工程"}, {ID: 2, Name: "网络工程"}},
	}
	return NewRankingService(students, organizations, cache, time.Minute, testLogger())
}

func majorRanks(rows []dto.RankedStudentResponse, majorID uint) map[string]int {
	ranks := map[string]int{}
	for _, row := range rows {
		if row.MajorID == majorID {
			ranks[row.StudentNumber] = row.MajorRanking
		}
	}
	return ranks
}

func TestRankTieSharingWithoutCompression(t *testing.T) {
	students := newFakeStudentRepo(
		rankedStudent("a", 1, ptrFloat(90)),
		rankedStudent("b", 1, ptrFloat(90)),
		rankedStudent("c", 1, ptrFloat(80)),
	)
	svc := newRankingService(students, nil)

	result, err := svc.Rank(context.Background(), dto.RankingRequest{})
	require.NoError(t, err)
	require.Equal(t, 3, result.Total)

	ranks := majorRanks(result.Students, 1)
	require.Equal(t, 1, ranks["a"])
	require.Equal(t, 1, ranks["b"])
	require.Equal(t, 3, ranks["c"])
}

func TestRankLongTieRun(t *testing.T) {
	students := newFakeStudentRepo(
		rankedStudent("a", 1, ptrFloat(90)),
		rankedStudent("b", 1, ptrFloat(90)),
		rankedStudent("c", 1, ptrFloat(90)),
		rankedStudent("d", 1, ptrFloat(70)),
	)
	svc := newRankingService(students, nil)

	result, err := svc.Rank(context.Background(), dto.RankingRequest{})
	require.NoError(t, err)

	ranks := majorRanks(result.Students, 1)
	require.Equal(t, 1, ranks["a"])
	require.Equal(t, 1, ranks["b"])
	require.Equal(t, 1, ranks["c"])
	require.Equal(t, 4, ranks["d"])
}

func TestRankMajorGroupScenario(t *testing.T) {
	students := newFakeStudentRepo(
		rankedStudent("a", 1, ptrFloat(95.5)),
		rankedStudent("b", 1, ptrFloat(95.5)),
		rankedStudent("c", 1, ptrFloat(90.0)),
		rankedStudent("d", 1, ptrFloat(90.0)),
		rankedStudent("e", 1, ptrFloat(85.0)),
	)
	svc := newRankingService(students, nil)

	result, err := svc.Rank(context.Background(), dto.RankingRequest{})
	require.NoError(t, err)

	ranks := majorRanks(result.Students, 1)
	require.Equal(t, 1, ranks["a"])
	require.Equal(t, 1, ranks["b"])
	require.Equal(t, 3, ranks["c"])
	require.Equal(t, 3, ranks["d"])
	require.Equal(t, 5, ranks["e"])

	for _, row := range result.Students {
		require.Equal(t, 5, row.TotalStudents)
	}
}

func TestRankGlobalSequenceAcrossMajors(t *testing.T) {
	students := newFakeStudentRepo(
		rankedStudent("a", 1, ptrFloat(88)),
		rankedStudent("b", 2, ptrFloat(92)),
		rankedStudent("c", 1, ptrFloat(75)),
		rankedStudent("d", 2, ptrFloat(81)),
	)
	svc := newRankingService(students, nil)

	result, err := svc.Rank(context.Background(), dto.RankingRequest{})
	require.NoError(t, err)
	require.Len(t, result.Students, 4)

	// Global order is by composite score regardless of major.
	require.Equal(t, "b", result.Students[0].StudentNumber)
	require.Equal(t, "a", result.Students[1].StudentNumber)
	require.Equal(t, "d", result.Students[2].StudentNumber)
	require.Equal(t, "c", result.Students[3].StudentNumber)
	for i, row := range result.Students {
		require.Equal(t, i+1, row.Sequence)
	}

	// Major ranks are per group: b and d lead their own major.
	require.Equal(t, 1, result.Students[0].MajorRanking)
	require.Equal(t, 1, result.Students[1].MajorRanking)
	require.Equal(t, 2, result.Students[2].MajorRanking)
	require.Equal(t, 2, result.Students[3].MajorRanking)
	require.Equal(t, 2, result.Students[0].TotalStudents)
}

func TestRankTreatsNilScoreAsZero(t *testing.T) {
	students := newFakeStudentRepo(
		rankedStudent("a", 1, nil),
		rankedStudent("b", 1, ptrFloat(50)),
	)
	svc := newRankingService(students, nil)

	result, err := svc.Rank(context.Background(), dto.RankingRequest{})
	require.NoError(t, err)
	require.Equal(t, "b", result.Students[0].StudentNumber)
	require.Equal(t, 0.0, result.Students[1].ComprehensiveScore)
	require.Equal(t, 2, result.Students[1].MajorRanking)
}

func TestRankAppliesMajorFilter(t *testing.T) {
	students := newFakeStudentRepo(
		rankedStudent("a", 1, ptrFloat(88)),
		rankedStudent("b", 2, ptrFloat(92)),
	)
	svc := newRankingService(students, nil)

	result, err := svc.Rank(context.Background(), dto.RankingRequest{MajorID: ptrUint(2)})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	require.Equal(t, "b", result.Students[0].StudentNumber)
	require.Equal(t, 1, result.Students[0].TotalStudents)
}

func TestRankPersistsMajorRankingAndGroupSize(t *testing.T) {
	students := newFakeStudentRepo(
		rankedStudent("a", 1, ptrFloat(90)),
		rankedStudent("b", 1, ptrFloat(80)),
	)
	svc := newRankingService(students, nil)

	_, err := svc.Rank(context.Background(), dto.RankingRequest{})
	require.NoError(t, err)
	require.Equal(t, [2]int{1, 2}, students.rankings["a"])
	require.Equal(t, [2]int{2, 2}, students.rankings["b"])
}

func TestRankDecoratesOrganizationNames(t *testing.T) {
	student := rankedStudent("a", 1, ptrFloat(90))
	student.FacultyID = ptrUint(1)
	students := newFakeStudentRepo(student)
	svc := newRankingService(students, nil)

	result, err := svc.Rank(context.Background(), dto.RankingRequest{})
	require.NoError(t, err)
	require.Equal(t, "信息学院", result.Students[0].Faculty)
	require.Equal(t, "计算机系", result.Students[0].Department)
	require.Equal(t, "软件工程", result.Students[0].Major)
}

func TestRankServesCachedResponse(t *testing.T) {
	server := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	students := newFakeStudentRepo(rankedStudent("a", 1, ptrFloat(90)))
	svc := newRankingService(students, cache)

	first, err := svc.Rank(context.Background(), dto.RankingRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, first.Total)

	// A roster change invisible to the cache must not alter the cached view.
	students.students = append(students.students, rankedStudent("b", 1, ptrFloat(95)))

	second, err := svc.Rank(context.Background(), dto.RankingRequest{})
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestInvalidateCacheDropsCachedRankings(t *testing.T) {
	server := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	students := newFakeStudentRepo(rankedStudent("a", 1, ptrFloat(90)))
	svc := newRankingService(students, cache)

	first, err := svc.Rank(context.Background(), dto.RankingRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, first.Total)

	students.students = append(students.students, rankedStudent("b", 1, ptrFloat(95)))
	require.NoError(t, svc.InvalidateCache(context.Background()))

	refreshed, err := svc.Rank(context.Background(), dto.RankingRequest{})
	require.NoError(t, err)
	require.Equal(t, 2, refreshed.Total)
	require.Equal(t, "b", refreshed.Students[0].StudentNumber)
}
