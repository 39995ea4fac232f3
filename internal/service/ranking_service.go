package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gradpush/recommend-api/internal/dto"
	"github.com/gradpush/recommend-api/internal/observability"
	"github.com/gradpush/recommend-api/internal/repository"
)

// RankingService produces the ordered admission ranking view.
type RankingService interface {
	Rank(ctx context.Context, req dto.RankingRequest) (dto.RankingResponse, error)
	InvalidateCache(ctx context.Context) error
}

type rankingService struct {
	students      repository.StudentRepository
	organizations repository.OrganizationRepository
	cache         *redis.Client
	cacheTTL      time.Duration
	logger        zerolog.Logger
}

// NewRankingService constructs the ranking service.
func NewRankingService(
	students repository.StudentRepository,
	organizations repository.OrganizationRepository,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) RankingService {
	return &rankingService{
		students:      students,
		organizations: organizations,
		cache:         cache,
		cacheTTL:      ttl,
		logger:        logger.With().Str("component", "ranking_service").Logger(),
	}
}

// Rank groups the filtered students by major, sorts each group by composite
// score descending and assigns dense ranks where equal scores share a rank
// but the sequence does not compress (scores 90,90,80 rank 1,1,3). The
// flattened list is then ordered globally and numbered with a 1-based
// sequence. Major rank and group size are persisted; the sequence is
// response-only.
func (s *rankingService) Rank(ctx context.Context, req dto.RankingRequest) (dto.RankingResponse, error) {
	tracer := otel.Tracer("github.com/gradpush/recommend-api/internal/service/ranking")
	ctx, span := tracer.Start(ctx, "ranking.rank")
	defer span.End()

	cacheKey := rankingCacheKey(req)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.RankingResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Str("key", cacheKey).Msg("ranking cache hit")
				span.SetAttributes(attribute.Bool("ranking.cache_hit", true))
				observability.RankingRequestsTotal().WithLabelValues("hit").Inc()
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read ranking cache")
		}
	}

	filter := repository.StudentFilter{
		FacultyID:    req.FacultyID,
		DepartmentID: req.DepartmentID,
		MajorID:      req.MajorID,
	}
	students, err := s.students.ListForRanking(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "student_list_failed")
		return dto.RankingResponse{}, err
	}

	facultyNames, departmentNames, majorNames, err := s.loadNames(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "organization_lookup_failed")
		return dto.RankingResponse{}, err
	}

	rows := make([]dto.RankedStudentResponse, 0, len(students))
	for _, student := range students {
		rows = append(rows, dto.NewRankedStudentResponse(student, facultyNames, departmentNames, majorNames))
	}

	byMajor := map[uint][]int{}
	for i, row := range rows {
		byMajor[row.MajorID] = append(byMajor[row.MajorID], i)
	}

	for _, group := range byMajor {
		sort.SliceStable(group, func(a, b int) bool {
			return rows[group[a]].ComprehensiveScore > rows[group[b]].ComprehensiveScore
		})

		for position, idx := range group {
			rank := position + 1
			if position > 0 {
				prev := rows[group[position-1]]
				if rows[idx].ComprehensiveScore == prev.ComprehensiveScore {
					rank = prev.MajorRanking
				}
			}
			rows[idx].MajorRanking = rank
			rows[idx].TotalStudents = len(group)

			if err := s.students.UpdateRanking(ctx, rows[idx].StudentNumber, rank, len(group)); err != nil {
				s.logger.Warn().Err(err).Str("student_number", rows[idx].StudentNumber).Msg("failed to persist ranking")
			}
		}
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].ComprehensiveScore > rows[b].ComprehensiveScore
	})
	for i := range rows {
		rows[i].Sequence = i + 1
	}

	response := dto.RankingResponse{Students: rows, Total: len(rows)}
	span.SetAttributes(attribute.Int("ranking.total", response.Total))
	observability.RankingRequestsTotal().WithLabelValues("miss").Inc()

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store ranking cache")
			}
		}
	}

	return response, nil
}

// InvalidateCache removes every cached ranking view. Called after a score
// recomputation so stale ranks never outlive the data they were built from.
func (s *rankingService) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	iter := s.cache.Scan(ctx, 0, "ranking:*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	s.logger.Debug().Int("keys", len(keys)).Msg("ranking cache invalidated")
	return s.cache.Del(ctx, keys...).Err()
}

func (s *rankingService) loadNames(ctx context.Context) (map[uint]string, map[uint]string, map[uint]string, error) {
	faculties, err := s.organizations.ListFaculties(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	departments, err := s.organizations.ListDepartments(ctx, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	majors, err := s.organizations.ListMajors(ctx, nil)
	if err != nil {
		return nil, nil, nil, err
	}

	facultyNames := make(map[uint]string, len(faculties))
	for _, faculty := range faculties {
		facultyNames[faculty.ID] = faculty.Name
	}
	departmentNames := make(map[uint]string, len(departments))
	for _, department := range departments {
		departmentNames[department.ID] = department.Name
	}
	majorNames := make(map[uint]string, len(majors))
	for _, major := range majors {
		majorNames[major.ID] = major.Name
	}

	return facultyNames, departmentNames, majorNames, nil
}

func rankingCacheKey(req dto.RankingRequest) string {
	return fmt.Sprintf("ranking:%s:%s:%s", filterKey(req.FacultyID), filterKey(req.DepartmentID), filterKey(req.MajorID))
}

func filterKey(id *uint) string {
	if id == nil {
		return "all"
	}
	return fmt.Sprintf("%d", *id)
}
