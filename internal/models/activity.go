package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions recorded by the review and scoring workflows.
const (
	ActionApplicationApproved  = "application.approved"
	ActionApplicationRejected  = "application.rejected"
	ActionApplicationResubmit  = "application.resubmitted"
	ActionBatchReviewCompleted = "application.batch_reviewed"
	ActionScoresRecalculated   = "student.scores_recalculated"
)

// ActivityLog is the audit trail for review decisions and administrative
// recalculations.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"not null" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	Action     string            `gorm:"size:64;not null" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   *uint             `json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}
