package dto

import (
	"time"

	"github.com/gradpush/recommend-api/internal/models"
)

// NotificationCreateRequest publishes a notification to one student. UserID
// carries the student number; ApplicationID points at the reviewed
// application when the notification follows a decision.
type NotificationCreateRequest struct {
	UserID        string `json:"user_id" validate:"required,max=64"`
	ApplicationID *uint  `json:"application_id,omitempty"`
	Type          string `json:"type" validate:"required,max=50"`
	Message       string `json:"message" validate:"required"`
}

// NotificationResponse is one notification as seen by the student. UserID is
// the owning student number; cross-node delivery routes on it.
type NotificationResponse struct {
	ID            uint      `json:"id"`
	UserID        string    `json:"user_id"`
	ApplicationID *uint     `json:"application_id,omitempty"`
	Type          string    `json:"type"`
	Message       string    `json:"message"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewNotificationResponse maps a notification model to its API view.
func NewNotificationResponse(notification models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:            notification.ID,
		UserID:        notification.UserID,
		ApplicationID: notification.ApplicationID,
		Type:          notification.Type,
		Message:       notification.Message,
		Read:          notification.Read,
		CreatedAt:     notification.CreatedAt,
	}
}

// NewNotificationResponses maps a slice of notifications.
func NewNotificationResponses(notifications []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		responses = append(responses, NewNotificationResponse(notification))
	}

	return responses
}
