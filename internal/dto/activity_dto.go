package dto

import (
	"time"

	"github.com/gradpush/recommend-api/internal/models"
)

// ActivityListRequest filters the audit trail.
type ActivityListRequest struct {
	Page       int    `json:"page" validate:"gte=0"`
	PageSize   int    `json:"page_size" validate:"gte=0,lte=100"`
	ActorID    uint   `json:"actor_id"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
}

// ActivityResponse is one audit trail entry.
type ActivityResponse struct {
	ID         uint           `json:"id"`
	ActorID    uint           `json:"actor_id"`
	ActorRole  string         `json:"actor_role"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   *uint          `json:"entity_id"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ActivityListResponse wraps a paginated audit trail page.
type ActivityListResponse struct {
	Activities []ActivityResponse `json:"activities"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewActivityResponse maps an activity log entry to its API view.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	return ActivityResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   entry.Metadata,
		CreatedAt:  entry.CreatedAt,
	}
}

// NewActivityResponses maps a slice of activity log entries.
func NewActivityResponses(entries []models.ActivityLog) []ActivityResponse {
	responses := make([]ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewActivityResponse(entry))
	}

	return responses
}
