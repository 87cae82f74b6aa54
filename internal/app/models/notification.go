package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies a notification and decides how ContentID is
// resolved (invitation id, survey id or post id)
type NotificationType string

const (
	NotificationTypeCommunityInvitation NotificationType = "community_invitation"
	NotificationTypeInfo                NotificationType = "info"
	NotificationTypeSurveyCreation      NotificationType = "survey_creation"
	NotificationTypePostCreation        NotificationType = "post_creation"
)

// Notification represents a per-recipient notification row created by the
// fan-out dispatcher and acknowledged (read=true) by its recipient.
type Notification struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	UserID      uuid.UUID        `json:"userId" db:"user_id"`
	CommunityID *uuid.UUID       `json:"communityId,omitempty" db:"community_id"`
	Type        NotificationType `json:"type" db:"type"`
	ContentID   *uuid.UUID       `json:"contentId,omitempty" db:"content_id"`
	Title       string           `json:"title" db:"title"`
	Description *string          `json:"description,omitempty" db:"description"`
	Read        bool             `json:"read" db:"read"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
}
