package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage represents a message in a community chat.
//
// SenderUsername is a snapshot taken at write time, not a live join, so
// history keeps the display name the sender had when the message was sent.
type ChatMessage struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	CommunityID      uuid.UUID  `json:"communityId" db:"community_id"`
	UserID           uuid.UUID  `json:"userId" db:"user_id"`
	SenderUsername   string     `json:"senderUsername" db:"sender_username"`
	Content          string     `json:"content" db:"content"`
	RepliedMessageID *uuid.UUID `json:"repliedMessageId,omitempty" db:"replied_message_id"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`

	// Denormalized snapshot of the replied message, loaded with the row.
	// Kept even when the replied message is later deleted.
	RepliedMessage *ChatMessage `json:"repliedMessage,omitempty"`
}
