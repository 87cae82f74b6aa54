package models

import (
	"time"

	"github.com/google/uuid"
)

// Survey represents a community survey
type Survey struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CommunityID uuid.UUID `json:"communityId" db:"community_id"`
	CreatorID   uuid.UUID `json:"creatorId" db:"creator_id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	Open        bool      `json:"open" db:"open"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`

	// Related entities
	Choices []*SurveyChoice `json:"choices,omitempty"`
}

// SurveyChoice represents one selectable option of a survey
type SurveyChoice struct {
	ID       uuid.UUID `json:"id" db:"id"`
	SurveyID uuid.UUID `json:"surveyId" db:"survey_id"`
	Text     string    `json:"text" db:"text"`
}

// SurveyAnswer represents a user's answer in a survey. The (survey_id,
// user_id) pair is unique: a repeat choice mutates the row in place.
type SurveyAnswer struct {
	SurveyID  uuid.UUID `json:"surveyId" db:"survey_id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	ChoiceID  uuid.UUID `json:"choiceId" db:"choice_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
