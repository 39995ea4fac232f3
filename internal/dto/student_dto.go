package dto

import "github.com/gradpush/recommend-api/internal/models"

// RankingRequest carries the optional equality filters for a ranking query.
// Zero values (or the literal "all" at the HTTP layer) mean no restriction.
type RankingRequest struct {
	FacultyID    *uint
	DepartmentID *uint
	MajorID      *uint
}

// StudentListRequest filters and paginates the student roster.
type StudentListRequest struct {
	FacultyID    *uint
	DepartmentID *uint
	MajorID      *uint
	Search       string
	Page         int
	PageSize     int
}

// StudentResponse is the roster view of a student.
type StudentResponse struct {
	ID                            uint     `json:"id"`
	StudentNumber                 string   `json:"student_number"`
	Name                          string   `json:"name"`
	Gender                        string   `json:"gender"`
	FacultyID                     *uint    `json:"faculty_id"`
	DepartmentID                  uint     `json:"department_id"`
	MajorID                       uint     `json:"major_id"`
	GPA                           *float64 `json:"gpa"`
	AcademicScore                 *float64 `json:"academic_score"`
	AcademicSpecialtyTotal        *float64 `json:"academic_specialty_total"`
	ComprehensivePerformanceTotal *float64 `json:"comprehensive_performance_total"`
	ComprehensiveScore            *float64 `json:"comprehensive_score"`
	MajorRanking                  *int     `json:"major_ranking"`
	TotalStudents                 *int     `json:"total_students"`
}

// StudentListResponse wraps one roster page.
type StudentListResponse struct {
	Students   []StudentResponse `json:"students"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewStudentResponse maps a student model to its roster view.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		ID:                            student.ID,
		StudentNumber:                 student.StudentNumber,
		Name:                          student.Name,
		Gender:                        student.Gender,
		FacultyID:                     student.FacultyID,
		DepartmentID:                  student.DepartmentID,
		MajorID:                       student.MajorID,
		GPA:                           student.GPA,
		AcademicScore:                 student.AcademicScore,
		AcademicSpecialtyTotal:        student.AcademicSpecialtyTotal,
		ComprehensivePerformanceTotal: student.ComprehensivePerformanceTotal,
		ComprehensiveScore:            student.ComprehensiveScore,
		MajorRanking:                  student.MajorRanking,
		TotalStudents:                 student.TotalStudents,
	}
}

// RankedStudentResponse is one row of the ranking view. Field names are
// camelCase because existing API consumers depend on them.
type RankedStudentResponse struct {
	ID                            uint     `json:"id"`
	StudentNumber                 string   `json:"studentId"`
	StudentName                   string   `json:"studentName"`
	FacultyID                     *uint    `json:"facultyId"`
	Faculty                       string   `json:"faculty"`
	DepartmentID                  uint     `json:"departmentId"`
	Department                    string   `json:"department"`
	MajorID                       uint     `json:"majorId"`
	Major                         string   `json:"major"`
	GPA                           *float64 `json:"gpa"`
	AcademicScore                 *float64 `json:"academicScore"`
	AcademicSpecialtyTotal        float64  `json:"academicSpecialtyTotal"`
	ComprehensivePerformanceTotal float64  `json:"comprehensivePerformanceTotal"`
	ComprehensiveScore            float64  `json:"comprehensiveScore"`
	MajorRanking                  int      `json:"majorRanking"`
	TotalStudents                 int      `json:"totalStudents"`
	Sequence                      int      `json:"sequence"`
}

// RankingResponse wraps the globally ordered ranking rows.
type RankingResponse struct {
	Students []RankedStudentResponse `json:"students"`
	Total    int                     `json:"total"`
}

// StudentStatisticsResponse reports the computed statistics for one student.
type StudentStatisticsResponse struct {
	StudentNumber                 string  `json:"studentId"`
	AcademicSpecialtyTotal        float64 `json:"academicSpecialtyTotal"`
	ComprehensivePerformanceTotal float64 `json:"comprehensivePerformanceTotal"`
	ComprehensiveScore            float64 `json:"comprehensiveScore"`
}

// RecalculateFailure identifies one student whose recomputation failed during
// a batch run.
type RecalculateFailure struct {
	StudentNumber string `json:"studentId"`
	Reason        string `json:"reason"`
}

// BatchRecalculateResponse summarises a recalculate-all run. Failures never
// abort the batch; they are reported here instead.
type BatchRecalculateResponse struct {
	Updated  int                  `json:"updated"`
	Failures []RecalculateFailure `json:"failures"`
}

// NewRankedStudentResponse builds a ranking row from a student and the name
// lookup tables. Computed fields default to zero when never calculated.
func NewRankedStudentResponse(student models.Student, facultyNames, departmentNames, majorNames map[uint]string) RankedStudentResponse {
	response := RankedStudentResponse{
		ID:            student.ID,
		StudentNumber: student.StudentNumber,
		StudentName:   student.Name,
		FacultyID:     student.FacultyID,
		DepartmentID:  student.DepartmentID,
		Department:    departmentNames[student.DepartmentID],
		MajorID:       student.MajorID,
		Major:         majorNames[student.MajorID],
		GPA:           student.GPA,
		AcademicScore: student.AcademicScore,
	}

	if student.FacultyID != nil {
		response.Faculty = facultyNames[*student.FacultyID]
	}
	if student.AcademicSpecialtyTotal != nil {
		response.AcademicSpecialtyTotal = *student.AcademicSpecialtyTotal
	}
	if student.ComprehensivePerformanceTotal != nil {
		response.ComprehensivePerformanceTotal = *student.ComprehensivePerformanceTotal
	}
	if student.ComprehensiveScore != nil {
		response.ComprehensiveScore = *student.ComprehensiveScore
	}
	if student.MajorRanking != nil {
		response.MajorRanking = *student.MajorRanking
	}
	if student.TotalStudents != nil {
		response.TotalStudents = *student.TotalStudents
	}

	return response
}
