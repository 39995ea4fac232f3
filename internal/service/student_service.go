package service

import (
	"context"
	"errors"
	"math"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gradpush/recommend-api/internal/dto"
	"github.com/gradpush/recommend-api/internal/repository"
)

// StudentService exposes the read side of the student roster.
type StudentService interface {
	List(ctx context.Context, req dto.StudentListRequest) (dto.StudentListResponse, error)
	Get(ctx context.Context, studentNumber string) (dto.StudentResponse, error)
}

type studentService struct {
	repo   repository.StudentRepository
	logger zerolog.Logger
}

// NewStudentService constructs the student roster service.
func NewStudentService(repo repository.StudentRepository, logger zerolog.Logger) StudentService {
	return &studentService{
		repo:   repo,
		logger: logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) List(ctx context.Context, req dto.StudentListRequest) (dto.StudentListResponse, error) {
	filter := repository.StudentFilter{
		FacultyID:    req.FacultyID,
		DepartmentID: req.DepartmentID,
		MajorID:      req.MajorID,
		Search:       req.Search,
		Page:         req.Page,
		PageSize:     req.PageSize,
	}

	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.StudentListResponse{}, err
	}

	responses := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, dto.NewStudentResponse(student))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.StudentListResponse{Students: responses, Pagination: pagination}, nil
}

func (s *studentService) Get(ctx context.Context, studentNumber string) (dto.StudentResponse, error) {
	student, err := s.repo.GetByNumber(ctx, studentNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}
