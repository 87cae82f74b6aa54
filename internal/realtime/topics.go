package realtime

import (
	"fmt"

	"github.com/google/uuid"
)

// Topic names are deterministic strings derived from entity ids. Every
// client interested in an entity's live updates subscribes to the same
// string, so they must never change format.

// MessagesTopic is the chat topic of a community.
func MessagesTopic(communityID uuid.UUID) string {
	return fmt.Sprintf("messages:%s", communityID)
}

// SurveyTopic carries answer and close events of a single survey.
func SurveyTopic(surveyID uuid.UUID) string {
	return fmt.Sprintf("survey:%s", surveyID)
}

// PostTopic carries comment events of a single post.
func PostTopic(postID uuid.UUID) string {
	return fmt.Sprintf("post:%s", postID)
}

// CommunityTopic carries membership and invitation events of a community.
func CommunityTopic(communityID uuid.UUID) string {
	return fmt.Sprintf("community:%s", communityID)
}

// NotificationsTopic is the private notification channel of a user.
func NotificationsTopic(userID uuid.UUID) string {
	return fmt.Sprintf("notifications:%s", userID)
}
