package models

import "time"

// User roles recognised by the API.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User is an authentication principal. Students additionally own a Student row
// keyed by StudentNumber.
type User struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Username      string     `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Password      string     `gorm:"size:128;not null" json:"-"`
	Name          string     `gorm:"size:128;not null" json:"name"`
	Role          string     `gorm:"size:20;not null" json:"role"`
	StudentNumber string     `gorm:"size:32;index" json:"student_number"`
	FacultyID     *uint      `json:"faculty_id"`
	DepartmentID  *uint      `json:"department_id"`
	MajorID       *uint      `json:"major_id"`
	Email         string     `gorm:"size:128" json:"email"`
	Status        string     `gorm:"size:20;default:active" json:"status"`
	LastLogin     *time.Time `json:"last_login"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
