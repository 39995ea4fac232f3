package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gradpush/recommend-api/internal/models"
)

// OrganizationRepository provides read access to the faculty/department/major
// hierarchy used to decorate ranking responses.
type OrganizationRepository interface {
	ListFaculties(ctx context.Context) ([]models.Faculty, error)
	ListDepartments(ctx context.Context, facultyID *uint) ([]models.Department, error)
	ListMajors(ctx context.Context, departmentID *uint) ([]models.Major, error)
}

type organizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository constructs an organization repository.
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) ListFaculties(ctx context.Context) ([]models.Faculty, error) {
	var faculties []models.Faculty
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&faculties).Error; err != nil {
		return nil, err
	}

	return faculties, nil
}

func (r *organizationRepository) ListDepartments(ctx context.Context, facultyID *uint) ([]models.Department, error) {
	query := r.db.WithContext(ctx).Model(&models.Department{})
	if facultyID != nil {
		query = query.Where("faculty_id = ?", *facultyID)
	}

	var departments []models.Department
	if err := query.Order("id ASC").Find(&departments).Error; err != nil {
		return nil, err
	}

	return departments, nil
}

func (r *organizationRepository) ListMajors(ctx context.Context, departmentID *uint) ([]models.Major, error) {
	query := r.db.WithContext(ctx).Model(&models.Major{})
	if departmentID != nil {
		query = query.Where("department_id = ?", *departmentID)
	}

	var majors []models.Major
	if err := query.Order("id ASC").Find(&majors).Error; err != nil {
		return nil, err
	}

	return majors, nil
}
