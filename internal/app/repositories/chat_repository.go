package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/pkg/apperrors"
)

// ChatRepository handles database operations for chat messages
type ChatRepository struct {
	db *pgxpool.Pool
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

// InsertMessage inserts a new chat message and returns the stored row.
// The sender username is written as a snapshot so the message keeps its
// attribution even if the profile is later renamed or deleted.
func (r *ChatRepository) InsertMessage(ctx context.Context, message *models.ChatMessage) (*models.ChatMessage, error) {
	query := `
		INSERT INTO chat_messages (community_id, user_id, sender_username, content, replied_message_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	stored := *message
	err := r.db.QueryRow(ctx, query,
		message.CommunityID,
		message.UserID,
		message.SenderUsername,
		message.Content,
		message.RepliedMessageID,
	).Scan(&stored.ID, &stored.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("error creating chat message: %w", err)
	}

	return &stored, nil
}

// GetByID retrieves a message by its ID
func (r *ChatRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ChatMessage, error) {
	query := `
		SELECT id, community_id, user_id, sender_username, content, replied_message_id, created_at
		FROM chat_messages
		WHERE id = $1
	`

	var message models.ChatMessage
	err := r.db.QueryRow(ctx, query, id).Scan(
		&message.ID,
		&message.CommunityID,
		&message.UserID,
		&message.SenderUsername,
		&message.Content,
		&message.RepliedMessageID,
		&message.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving chat message: %w", err)
	}

	return &message, nil
}

// ListMessages retrieves a page of a community's messages, newest first.
// Each replied-to message is embedded through a self join so a reply can
// be rendered even when its target falls outside the loaded page.
func (r *ChatRepository) ListMessages(ctx context.Context, communityID uuid.UUID, limit, offset int) ([]*models.ChatMessage, error) {
	query := `
		SELECT
			cm.id, cm.community_id, cm.user_id, cm.sender_username,
			cm.content, cm.replied_message_id, cm.created_at,
			rm.id, rm.community_id, rm.user_id, rm.sender_username,
			rm.content, rm.created_at
		FROM chat_messages cm
		LEFT JOIN chat_messages rm ON rm.id = cm.replied_message_id
		WHERE cm.community_id = $1
		ORDER BY cm.created_at DESC, cm.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, communityID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		var message models.ChatMessage
		var replied models.ChatMessage
		var repliedID *uuid.UUID
		var repliedCommunityID, repliedUserID *uuid.UUID
		var repliedUsername, repliedContent *string
		var repliedCreatedAt *time.Time

		if err := rows.Scan(
			&message.ID,
			&message.CommunityID,
			&message.UserID,
			&message.SenderUsername,
			&message.Content,
			&message.RepliedMessageID,
			&message.CreatedAt,
			&repliedID,
			&repliedCommunityID,
			&repliedUserID,
			&repliedUsername,
			&repliedContent,
			&repliedCreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning chat message: %w", err)
		}

		if repliedID != nil {
			replied.ID = *repliedID
			replied.CommunityID = *repliedCommunityID
			replied.UserID = *repliedUserID
			replied.SenderUsername = *repliedUsername
			replied.Content = *repliedContent
			replied.CreatedAt = *repliedCreatedAt
			message.RepliedMessage = &replied
		}

		messages = append(messages, &message)
	}

	return messages, rows.Err()
}

// DeleteMessage removes a message within a community
func (r *ChatRepository) DeleteMessage(ctx context.Context, communityID, messageID uuid.UUID) error {
	query := `
		DELETE FROM chat_messages
		WHERE id = $1 AND community_id = $2
	`

	tag, err := r.db.Exec(ctx, query, messageID, communityID)
	if err != nil {
		return fmt.Errorf("error deleting chat message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}

	return nil
}
