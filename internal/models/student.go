package models

import "time"

// Student is one admission candidate. StudentNumber is the stable business key
// applications reference; the database ID is internal.
//
// AcademicSpecialtyTotal, ComprehensivePerformanceTotal and ComprehensiveScore
// are owned by the statistics service and must not be written elsewhere.
// MajorRanking and TotalStudents are recomputed by the ranking service on every
// ranking query.
type Student struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	StudentNumber string `gorm:"size:32;uniqueIndex;not null" json:"student_number"`
	Name          string `gorm:"size:128;not null" json:"name"`
	Gender        string `gorm:"size:10" json:"gender"`
	FacultyID     *uint  `gorm:"index" json:"faculty_id"`
	DepartmentID  uint   `gorm:"not null;index" json:"department_id"`
	MajorID       uint   `gorm:"not null;index" json:"major_id"`

	// Raw academic inputs.
	GPA           *float64 `json:"gpa"`
	AcademicScore *float64 `json:"academic_score"`
	CET4Score     *int     `json:"cet4_score"`
	CET6Score     *int     `json:"cet6_score"`

	// Capped subtotals and weighted composite, written by the statistics service.
	AcademicSpecialtyTotal        *float64 `json:"academic_specialty_total"`
	ComprehensivePerformanceTotal *float64 `json:"comprehensive_performance_total"`
	ComprehensiveScore            *float64 `json:"comprehensive_score"`

	// Ranking fields, written by the ranking service.
	MajorRanking  *int `json:"major_ranking"`
	TotalStudents *int `json:"total_students"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
