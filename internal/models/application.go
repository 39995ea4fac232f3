package models

import (
	"time"

	"gorm.io/datatypes"
)

// Application workflow states.
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

// Application types that feed the composite score. Any other value is ignored
// by the statistics aggregation.
const (
	ApplicationTypeAcademic      = "academic"
	ApplicationTypeComprehensive = "comprehensive"
)

// Application is one achievement/award claim submitted by a student. Only
// approved applications with a final score contribute to the student's capped
// subtotals.
type Application struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	StudentNumber string `gorm:"size:32;not null;index" json:"student_number"`
	StudentName   string `gorm:"size:128" json:"student_name"`
	FacultyID     *uint  `json:"faculty_id"`
	DepartmentID  uint   `gorm:"not null" json:"department_id"`
	MajorID       uint   `gorm:"not null" json:"major_id"`

	ApplicationType string `gorm:"size:50;not null;index" json:"application_type"`
	ProjectName     string `gorm:"size:256;not null" json:"project_name"`
	AwardDate       *time.Time `json:"award_date"`
	AwardLevel      string     `gorm:"size:50" json:"award_level"`
	AwardType       string     `gorm:"size:50" json:"award_type"`
	AuthorOrder     *int       `json:"author_order"`
	Description     string     `gorm:"type:text" json:"description"`
	// Evidence file metadata handed in by the upload collaborator.
	Files datatypes.JSON `gorm:"type:json" json:"files"`

	SelfScore  *float64 `json:"self_score"`
	Status     string   `gorm:"size:20;not null;default:pending;index" json:"status"`
	FinalScore *float64 `json:"final_score"`
	RuleID     *uint    `json:"rule_id"`

	ReviewComment string     `gorm:"type:text" json:"review_comment"`
	ReviewedBy    string     `gorm:"size:128" json:"reviewed_by"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	AppliedAt     time.Time  `json:"applied_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CountsTowardStatistics reports whether the application can contribute to a
// subtotal bucket at all.
func (a Application) CountsTowardStatistics() bool {
	return a.Status == ApplicationStatusApproved && a.FinalScore != nil
}
