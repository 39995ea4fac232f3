package dto

import (
	"time"

	"github.com/gradpush/recommend-api/internal/models"
)

// ApproveApplicationRequest confirms an application with its final score.
type ApproveApplicationRequest struct {
	FinalScore float64 `json:"final_score" validate:"gte=0"`
	RuleID     *uint   `json:"rule_id"`
	Comment    string  `json:"comment" validate:"max=2000"`
}

// RejectApplicationRequest declines an application with a mandatory reason.
type RejectApplicationRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}

// BatchReviewRequest reviews several applications with one decision. Scores
// maps application ID to its final score and is required for approvals.
type BatchReviewRequest struct {
	ApplicationIDs []uint           `json:"application_ids" validate:"required,min=1,dive,gt=0"`
	Action         string           `json:"action" validate:"required,oneof=approve reject"`
	Scores         map[uint]float64 `json:"scores"`
	Comment        string           `json:"comment" validate:"max=2000"`
}

// ApplicationResponse is the review-facing view of an application.
type ApplicationResponse struct {
	ID              uint       `json:"id"`
	StudentNumber   string     `json:"student_number"`
	StudentName     string     `json:"student_name"`
	ApplicationType string     `json:"application_type"`
	ProjectName     string     `json:"project_name"`
	AwardLevel      string     `json:"award_level"`
	SelfScore       *float64   `json:"self_score"`
	Status          string     `json:"status"`
	FinalScore      *float64   `json:"final_score"`
	RuleID          *uint      `json:"rule_id"`
	ReviewComment   string     `json:"review_comment"`
	ReviewedBy      string     `json:"reviewed_by"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	AppliedAt       time.Time  `json:"applied_at"`
}

// ReviewDecisionResponse reports a single review outcome. RecomputeWarning is
// set when the decision committed but the follow-up statistics refresh failed.
type ReviewDecisionResponse struct {
	Application      ApplicationResponse `json:"application"`
	RecomputeWarning string              `json:"recompute_warning,omitempty"`
}

// BatchReviewFailure records one application a batch review could not process.
type BatchReviewFailure struct {
	ApplicationID uint   `json:"application_id"`
	Reason        string `json:"reason"`
}

// BatchReviewResponse summarises a batch review run. Individual failures and
// recompute warnings do not abort the batch.
type BatchReviewResponse struct {
	Processed         int                  `json:"processed"`
	Failures          []BatchReviewFailure `json:"failures"`
	RecomputeWarnings []string             `json:"recompute_warnings,omitempty"`
}

// NewApplicationResponse maps an application model to its review view.
func NewApplicationResponse(application models.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:              application.ID,
		StudentNumber:   application.StudentNumber,
		StudentName:     application.StudentName,
		ApplicationType: application.ApplicationType,
		ProjectName:     application.ProjectName,
		AwardLevel:      application.AwardLevel,
		SelfScore:       application.SelfScore,
		Status:          application.Status,
		FinalScore:      application.FinalScore,
		RuleID:          application.RuleID,
		ReviewComment:   application.ReviewComment,
		ReviewedBy:      application.ReviewedBy,
		ReviewedAt:      application.ReviewedAt,
		AppliedAt:       application.AppliedAt,
	}
}

// NewApplicationResponses maps a slice of applications.
func NewApplicationResponses(applications []models.Application) []ApplicationResponse {
	responses := make([]ApplicationResponse, 0, len(applications))
	for _, application := range applications {
		responses = append(responses, NewApplicationResponse(application))
	}

	return responses
}
