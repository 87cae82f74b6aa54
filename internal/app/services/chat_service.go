package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/app/models/dto"
	"github.com/deniz/commverse/internal/liveview"
	"github.com/deniz/commverse/internal/pkg/apperrors"
	"github.com/deniz/commverse/internal/realtime"
)

// ChatStore is the persistence surface for chat messages
type ChatStore interface {
	InsertMessage(ctx context.Context, message *models.ChatMessage) (*models.ChatMessage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ChatMessage, error)
	ListMessages(ctx context.Context, communityID uuid.UUID, limit, offset int) ([]*models.ChatMessage, error)
	DeleteMessage(ctx context.Context, communityID, messageID uuid.UUID) error
}

// ChatService defines the interface for chat operations
type ChatService interface {
	History(ctx context.Context, communityID, userID uuid.UUID, offset int) (*dto.ChatHistoryResponse, error)
	Send(ctx context.Context, communityID, userID uuid.UUID, req *dto.SendMessageRequest) (*dto.ChatMessageResponse, error)
	Delete(ctx context.Context, communityID, userID, messageID uuid.UUID) error
}

// chatServiceImpl implements ChatService
type chatServiceImpl struct {
	messages  ChatStore
	members   MemberStore
	profiles  ProfileStore
	publisher Publisher
	logger    zerolog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(
	messages ChatStore,
	members MemberStore,
	profiles ProfileStore,
	publisher Publisher,
	logger zerolog.Logger,
) ChatService {
	return &chatServiceImpl{
		messages:  messages,
		members:   members,
		profiles:  profiles,
		publisher: publisher,
		logger:    logger,
	}
}

// History retrieves one page of a community's chat, grouped by day with
// the oldest day first. One row beyond the page is fetched to learn
// whether older history remains.
func (s *chatServiceImpl) History(ctx context.Context, communityID, userID uuid.UUID, offset int) (*dto.ChatHistoryResponse, error) {
	if err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	batch, err := s.messages.ListMessages(ctx, communityID, liveview.DefaultPageSize+1, offset)
	if err != nil {
		return nil, err
	}

	hasMore := len(batch) > liveview.DefaultPageSize
	if hasMore {
		batch = batch[:liveview.DefaultPageSize]
	}

	// batch is newest first, the buckets want oldest first
	ascending := make([]*models.ChatMessage, len(batch))
	for i, msg := range batch {
		ascending[len(batch)-1-i] = msg
	}

	resp := &dto.ChatHistoryResponse{
		Days:    make([]dto.ChatDayResponse, 0),
		HasMore: hasMore,
	}
	for _, bucket := range liveview.BucketByDay(ascending) {
		day := dto.ChatDayResponse{
			Day:      bucket.Day.Format("2006-01-02"),
			Messages: make([]dto.ChatMessageResponse, 0, len(bucket.Messages)),
		}
		for _, msg := range bucket.Messages {
			day.Messages = append(day.Messages, dto.NewChatMessageResponse(msg))
		}
		resp.Days = append(resp.Days, day)
	}

	return resp, nil
}

// Send stores a message and publishes its "add" event. The sender's
// username is captured as a snapshot on the row. The publish happens
// strictly after the insert so no channel ever carries a message that
// was not persisted.
func (s *chatServiceImpl) Send(ctx context.Context, communityID, userID uuid.UUID, req *dto.SendMessageRequest) (*dto.ChatMessageResponse, error) {
	if err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	message := &models.ChatMessage{
		CommunityID:      communityID,
		UserID:           userID,
		SenderUsername:   profile.Username,
		Content:          req.Content,
		RepliedMessageID: req.RepliedMessageID,
	}

	if req.RepliedMessageID != nil {
		replied, err := s.messages.GetByID(ctx, *req.RepliedMessageID)
		if err != nil {
			return nil, err
		}
		if replied.CommunityID != communityID {
			return nil, apperrors.ErrBadRequest
		}
		message.RepliedMessage = replied
	}

	stored, err := s.messages.InsertMessage(ctx, message)
	if err != nil {
		return nil, err
	}
	stored.RepliedMessage = message.RepliedMessage

	resp := dto.NewChatMessageResponse(stored)
	s.publisher.Publish(realtime.MessagesTopic(communityID), "add", resp)

	return &resp, nil
}

// Delete removes a message and publishes its "delete" event. Senders may
// delete their own messages, admins any message.
func (s *chatServiceImpl) Delete(ctx context.Context, communityID, userID, messageID uuid.UUID) error {
	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message.CommunityID != communityID {
		return apperrors.ErrResourceNotFound
	}

	if message.UserID != userID {
		isAdmin, err := s.members.IsAdmin(ctx, communityID, userID)
		if err != nil {
			return err
		}
		if !isAdmin {
			return apperrors.ErrPermissionDenied
		}
	}

	if err := s.messages.DeleteMessage(ctx, communityID, messageID); err != nil {
		return err
	}

	s.publisher.Publish(realtime.MessagesTopic(communityID), "delete", map[string]any{"id": messageID})

	return nil
}

func (s *chatServiceImpl) requireMember(ctx context.Context, communityID, userID uuid.UUID) error {
	isMember, err := s.members.IsMember(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperrors.ErrNotMember
	}
	return nil
}
