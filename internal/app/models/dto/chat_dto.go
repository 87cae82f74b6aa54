package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/deniz/commverse/internal/app/models"
)

// SendMessageRequest represents the payload for sending a chat message
type SendMessageRequest struct {
	Content          string     `json:"content" binding:"required,max=2000"`
	RepliedMessageID *uuid.UUID `json:"repliedMessageId,omitempty"`
}

// ChatMessageResponse represents a chat message in API responses. The
// replied-to message, when present, is embedded one level deep.
type ChatMessageResponse struct {
	ID               uuid.UUID            `json:"id"`
	CommunityID      uuid.UUID            `json:"communityId"`
	UserID           uuid.UUID            `json:"userId"`
	SenderUsername   string               `json:"senderUsername"`
	Content          string               `json:"content"`
	RepliedMessageID *uuid.UUID           `json:"repliedMessageId,omitempty"`
	RepliedMessage   *ChatMessageResponse `json:"repliedMessage,omitempty"`
	CreatedAt        time.Time            `json:"createdAt"`
}

// ChatDayResponse groups one day's messages in the history response
type ChatDayResponse struct {
	Day      string                `json:"day"`
	Messages []ChatMessageResponse `json:"messages"`
}

// ChatHistoryResponse represents a page of chat history grouped by day
type ChatHistoryResponse struct {
	Days    []ChatDayResponse `json:"days"`
	HasMore bool              `json:"hasMore"`
}

// NewChatMessageResponse maps a chat message model to its response form
func NewChatMessageResponse(message *models.ChatMessage) ChatMessageResponse {
	resp := ChatMessageResponse{
		ID:               message.ID,
		CommunityID:      message.CommunityID,
		UserID:           message.UserID,
		SenderUsername:   message.SenderUsername,
		Content:          message.Content,
		RepliedMessageID: message.RepliedMessageID,
		CreatedAt:        message.CreatedAt,
	}
	if message.RepliedMessage != nil {
		replied := NewChatMessageResponse(message.RepliedMessage)
		// Replies render one level deep
		replied.RepliedMessage = nil
		resp.RepliedMessage = &replied
	}
	return resp
}
