package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/deniz/commverse/internal/app/models"
)

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID          uuid.UUID               `json:"id"`
	UserID      uuid.UUID               `json:"userId"`
	CommunityID *uuid.UUID              `json:"communityId,omitempty"`
	Type        models.NotificationType `json:"type"`
	ContentID   *uuid.UUID              `json:"contentId,omitempty"`
	Title       string                  `json:"title"`
	Description *string                 `json:"description,omitempty"`
	Read        bool                    `json:"read"`
	CreatedAt   time.Time               `json:"createdAt"`
}

// UnreadCountResponse carries the unread notification badge count
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// NewNotificationResponse maps a notification model to its response form
func NewNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		UserID:      n.UserID,
		CommunityID: n.CommunityID,
		Type:        n.Type,
		ContentID:   n.ContentID,
		Title:       n.Title,
		Description: n.Description,
		Read:        n.Read,
		CreatedAt:   n.CreatedAt,
	}
}
