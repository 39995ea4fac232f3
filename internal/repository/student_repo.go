package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gradpush/recommend-api/internal/models"
)

// StudentFilter narrows student queries. Nil pointers mean "no restriction"
// for that dimension.
type StudentFilter struct {
	FacultyID    *uint
	DepartmentID *uint
	MajorID      *uint
	Search       string
	Page         int
	PageSize     int
}

// StudentStatistics is the set of computed columns owned by the statistics
// service, persisted in a single update.
type StudentStatistics struct {
	AcademicSpecialtyTotal        float64
	ComprehensivePerformanceTotal float64
	ComprehensiveScore            float64
}

// StudentRepository provides access to admission candidates.
type StudentRepository interface {
	GetByNumber(ctx context.Context, studentNumber string) (models.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]models.Student, int64, error)
	ListForRanking(ctx context.Context, filter StudentFilter) ([]models.Student, error)
	ListAll(ctx context.Context) ([]models.Student, error)
	UpdateStatistics(ctx context.Context, studentNumber string, stats StudentStatistics) error
	UpdateRanking(ctx context.Context, studentNumber string, majorRanking, totalStudents int) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByNumber(ctx context.Context, studentNumber string) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("student_number = ?", studentNumber).First(&student).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) List(ctx context.Context, filter StudentFilter) ([]models.Student, int64, error) {
	query := applyStudentFilter(r.db.WithContext(ctx).Model(&models.Student{}), filter)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR student_number LIKE ?", pattern, pattern)
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

	var students []models.Student
	if err := query.Order("student_number ASC").Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

func (r *studentRepository) ListForRanking(ctx context.Context, filter StudentFilter) ([]models.Student, error) {
	query := applyStudentFilter(r.db.WithContext(ctx).Model(&models.Student{}), filter)

	var students []models.Student
	if err := query.Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.WithContext(ctx).Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) UpdateStatistics(ctx context.Context, studentNumber string, stats StudentStatistics) error {
	return r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("student_number = ?", studentNumber).
		Updates(map[string]interface{}{
			"academic_specialty_total":        stats.AcademicSpecialtyTotal,
			"comprehensive_performance_total": stats.ComprehensivePerformanceTotal,
			"comprehensive_score":             stats.ComprehensiveScore,
		}).Error
}

func (r *studentRepository) UpdateRanking(ctx context.Context, studentNumber string, majorRanking, totalStudents int) error {
	return r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("student_number = ?", studentNumber).
		Updates(map[string]interface{}{
			"major_ranking":  majorRanking,
			"total_students": totalStudents,
		}).Error
}

func applyStudentFilter(query *gorm.DB, filter StudentFilter) *gorm.DB {
	if filter.FacultyID != nil {
		query = query.Where("faculty_id = ?", *filter.FacultyID)
	}
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.MajorID != nil {
		query = query.Where("major_id = ?", *filter.MajorID)
	}
	return query
}
