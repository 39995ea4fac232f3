package service

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gradpush/recommend-api/internal/dto"
	"github.com/gradpush/recommend-api/internal/models"
	"github.com/gradpush/recommend-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type fakeStudentRepo struct {
	students          []models.Student
	statistics        map[string]repository.StudentStatistics
	rankings          map[string][2]int
	failStatisticsFor map[string]error
}

func newFakeStudentRepo(students ...models.Student) *fakeStudentRepo {
	return &fakeStudentRepo{
		students:   students,
		statistics: map[string]repository.StudentStatistics{},
		rankings:   map[string][2]int{},
	}
}

func (f *fakeStudentRepo) GetByNumber(ctx context.Context, studentNumber string) (models.Student, error) {
	for _, student := range f.students {
		if student.StudentNumber == studentNumber {
			return student, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (f *fakeStudentRepo) List(ctx context.Context, filter repository.StudentFilter) ([]models.Student, int64, error) {
	return f.students, int64(len(f.students)), nil
}

func (f *fakeStudentRepo) ListForRanking(ctx context.Context, filter repository.StudentFilter) ([]models.Student, error) {
	var matched []models.Student
	for _, student := range f.students {
		if filter.FacultyID != nil && (student.FacultyID == nil || *student.FacultyID != *filter.FacultyID) {
			continue
		}
		if filter.DepartmentID != nil && student.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.MajorID != nil && student.MajorID != *filter.MajorID {
			continue
		}
		matched = append(matched, student)
	}
	return matched, nil
}

func (f *fakeStudentRepo) ListAll(ctx context.Context) ([]models.Student, error) {
	return f.students, nil
}

func (f *fakeStudentRepo) UpdateStatistics(ctx context.Context, studentNumber string, stats repository.StudentStatistics) error {
	if err, ok := f.failStatisticsFor[studentNumber]; ok {
		return err
	}
	f.statistics[studentNumber] = stats
	for i := range f.students {
		if f.students[i].StudentNumber == studentNumber {
			specialty := stats.AcademicSpecialtyTotal
			performance := stats.ComprehensivePerformanceTotal
			composite := stats.ComprehensiveScore
			f.students[i].AcademicSpecialtyTotal = &specialty
			f.students[i].ComprehensivePerformanceTotal = &performance
			f.students[i].ComprehensiveScore = &composite
		}
	}
	return nil
}

func (f *fakeStudentRepo) UpdateRanking(ctx context.Context, studentNumber string, majorRanking, totalStudents int) error {
	f.rankings[studentNumber] = [2]int{majorRanking, totalStudents}
	return nil
}

type fakeApplicationRepo struct {
	applications map[uint]models.Application
	updated      []models.Application
	batchErr     error
	listErr      error
}

func newFakeApplicationRepo(applications ...models.Application) *fakeApplicationRepo {
	byID := make(map[uint]models.Application, len(applications))
	for _, application := range applications {
		byID[application.ID] = application
	}
	return &fakeApplicationRepo{applications: byID}
}

func (f *fakeApplicationRepo) GetByID(ctx context.Context, id uint) (models.Application, error) {
	application, ok := f.applications[id]
	if !ok {
		return models.Application{}, gorm.ErrRecordNotFound
	}
	return application, nil
}

func (f *fakeApplicationRepo) ListByIDs(ctx context.Context, ids []uint) ([]models.Application, error) {
	var matched []models.Application
	for _, id := range ids {
		if application, ok := f.applications[id]; ok {
			matched = append(matched, application)
		}
	}
	return matched, nil
}

func (f *fakeApplicationRepo) ListApprovedByStudent(ctx context.Context, studentNumber string) ([]models.Application, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var matched []models.Application
	for _, application := range f.applications {
		if application.StudentNumber == studentNumber && application.Status == models.ApplicationStatusApproved {
			matched = append(matched, application)
		}
	}
	return matched, nil
}

func (f *fakeApplicationRepo) List(ctx context.Context, filter repository.ApplicationFilter) ([]models.Application, int64, error) {
	var all []models.Application
	for _, application := range f.applications {
		all = append(all, application)
	}
	return all, int64(len(all)), nil
}

func (f *fakeApplicationRepo) Create(ctx context.Context, application *models.Application) error {
	f.applications[application.ID] = *application
	return nil
}

func (f *fakeApplicationRepo) Update(ctx context.Context, application *models.Application) error {
	f.applications[application.ID] = *application
	f.updated = append(f.updated, *application)
	return nil
}

func (f *fakeApplicationRepo) UpdateAll(ctx context.Context, applications []models.Application) error {
	if f.batchErr != nil {
		return f.batchErr
	}
	for _, application := range applications {
		f.applications[application.ID] = application
		f.updated = append(f.updated, application)
	}
	return nil
}

type fakeSettingsRepo struct {
	settings map[uint]models.FacultyScoreSettings
	err      error
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: map[uint]models.FacultyScoreSettings{}}
}

func (f *fakeSettingsRepo) GetByFaculty(ctx context.Context, facultyID uint) (models.FacultyScoreSettings, error) {
	if f.err != nil {
		return models.FacultyScoreSettings{}, f.err
	}
	settings, ok := f.settings[facultyID]
	if !ok {
		return models.FacultyScoreSettings{}, gorm.ErrRecordNotFound
	}
	return settings, nil
}

func (f *fakeSettingsRepo) Upsert(ctx context.Context, settings *models.FacultyScoreSettings) error {
	f.settings[settings.FacultyID] = *settings
	return nil
}

type fakeOrganizationRepo struct {
	faculties   []models.Faculty
	departments []models.Department
	majors      []models.Major
}

func (f *fakeOrganizationRepo) ListFaculties(ctx context.Context) ([]models.Faculty, error) {
	return f.faculties, nil
}

func (f *fakeOrganizationRepo) ListDepartments(ctx context.Context, facultyID *uint) ([]models.Department, error) {
	return f.departments, nil
}

func (f *fakeOrganizationRepo) ListMajors(ctx context.Context, departmentID *uint) ([]models.Major, error) {
	return f.majors, nil
}

type fakeActivityRecorder struct {
	entries []ActivityEntry
}

func (f *fakeActivityRecorder) Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	f.entries = append(f.entries, entry)
	return dto.ActivityResponse{}, nil
}

type fakeNotificationPublisher struct {
	published []dto.NotificationCreateRequest
}

func (f *fakeNotificationPublisher) Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	f.published = append(f.published, payload)
	return dto.NotificationResponse{}, nil
}

func (f *fakeNotificationPublisher) List(ctx context.Context, userID string, limit, offset int) ([]dto.NotificationResponse, error) {
	return nil, nil
}

func (f *fakeNotificationPublisher) MarkRead(ctx context.Context, id uint, userID string) (dto.NotificationResponse, error) {
	return dto.NotificationResponse{}, nil
}

func (f *fakeNotificationPublisher) Subscribe(userID string) (<-chan dto.NotificationResponse, func()) {
	ch := make(chan dto.NotificationResponse)
	return ch, func() { close(ch) }
}

func (f *fakeNotificationPublisher) Start(ctx context.Context) {}

type fakeRankingCache struct {
	invalidations int
	err           error
}

func (f *fakeRankingCache) InvalidateCache(ctx context.Context) error {
	f.invalidations++
	return f.err
}

type fakeStatisticsService struct {
	recomputed []string
	failFor    map[string]error
}

func (f *fakeStatisticsService) Recompute(ctx context.Context, studentNumber string) (dto.StudentStatisticsResponse, error) {
	if err, ok := f.failFor[studentNumber]; ok {
		return dto.StudentStatisticsResponse{}, err
	}
	f.recomputed = append(f.recomputed, studentNumber)
	return dto.StudentStatisticsResponse{StudentNumber: studentNumber}, nil
}

func (f *fakeStatisticsService) RecalculateAll(ctx context.Context, actor ActivityActor) (dto.BatchRecalculateResponse, error) {
	return dto.BatchRecalculateResponse{}, nil
}

func ptrFloat(v float64) *float64 { return &v }

func ptrUint(v uint) *uint { return &v }
