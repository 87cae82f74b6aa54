package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateSurveyRequest represents the survey creation payload
type CreateSurveyRequest struct {
	Title       string   `json:"title" binding:"required,min=3,max=128"`
	Description *string  `json:"description,omitempty"`
	Choices     []string `json:"choices" binding:"required,min=2,dive,required"`
}

// AnswerRequest represents a survey answer payload
type AnswerRequest struct {
	ChoiceID uuid.UUID `json:"choiceId" binding:"required"`
}

// SurveyChoiceResponse represents one choice with its live tally
type SurveyChoiceResponse struct {
	ID    uuid.UUID `json:"id"`
	Text  string    `json:"text"`
	Count int       `json:"count"`
	Share float64   `json:"share"`
}

// SurveyResponse represents a survey with its answer distribution
type SurveyResponse struct {
	ID           uuid.UUID              `json:"id"`
	CommunityID  uuid.UUID              `json:"communityId"`
	CreatorID    uuid.UUID              `json:"creatorId"`
	Title        string                 `json:"title"`
	Description  *string                `json:"description,omitempty"`
	Open         bool                   `json:"open"`
	Choices      []SurveyChoiceResponse `json:"choices"`
	AnswerCount  int                    `json:"answerCount"`
	UserChoiceID *uuid.UUID             `json:"userChoiceId,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
}
