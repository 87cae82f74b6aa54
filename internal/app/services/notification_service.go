package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/app/models/dto"
	"github.com/deniz/commverse/internal/app/repositories"
	"github.com/deniz/commverse/internal/realtime"
)

// NotificationStore is the persistence surface for notifications
type NotificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []*models.Notification) error
	ListUnread(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// MemberLister enumerates the members of a community for fan-out
type MemberLister interface {
	ListUserIDs(ctx context.Context, communityID uuid.UUID) ([]uuid.UUID, error)
}

// UnreadCounter caches per-user unread counts. Implemented by
// repositories.NotificationCache.
type UnreadCounter interface {
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	Increment(ctx context.Context, userID uuid.UUID, delta int64)
	Decrement(ctx context.Context, userID uuid.UUID, delta int64)
}

// NotificationService defines the interface for notification operations
type NotificationService interface {
	Notify(ctx context.Context, notification *models.Notification) error
	NotifyMembers(ctx context.Context, communityID, actorID uuid.UUID, template *models.Notification) error
	ListUnread(ctx context.Context, userID uuid.UUID) ([]dto.NotificationResponse, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

// notificationServiceImpl implements NotificationService
type notificationServiceImpl struct {
	notifications NotificationStore
	members       MemberLister
	counter       UnreadCounter
	publisher     Publisher
	logger        zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notifications NotificationStore,
	members MemberLister,
	counter UnreadCounter,
	publisher Publisher,
	logger zerolog.Logger,
) NotificationService {
	return &notificationServiceImpl{
		notifications: notifications,
		members:       members,
		counter:       counter,
		publisher:     publisher,
		logger:        logger,
	}
}

var _ UnreadCounter = (*repositories.NotificationCache)(nil)

// Notify stores a single notification and pushes it to the recipient's
// notification channel.
func (s *notificationServiceImpl) Notify(ctx context.Context, notification *models.Notification) error {
	if err := s.notifications.Create(ctx, notification); err != nil {
		return err
	}

	s.counter.Increment(ctx, notification.UserID, 1)
	s.publisher.Publish(
		realtime.NotificationsTopic(notification.UserID),
		"add",
		dto.NewNotificationResponse(notification),
	)

	return nil
}

// NotifyMembers fans a notification out to every member of a community
// except the actor who caused it. All rows are stored in one batch
// insert before anything is pushed: if the insert fails, no channel sees
// a notification that does not exist.
func (s *notificationServiceImpl) NotifyMembers(ctx context.Context, communityID, actorID uuid.UUID, template *models.Notification) error {
	memberIDs, err := s.members.ListUserIDs(ctx, communityID)
	if err != nil {
		return err
	}

	var batch []*models.Notification
	for _, id := range memberIDs {
		if id == actorID {
			continue
		}
		n := *template
		n.UserID = id
		n.CommunityID = &communityID
		batch = append(batch, &n)
	}
	if len(batch) == 0 {
		return nil
	}

	if err := s.notifications.CreateBatch(ctx, batch); err != nil {
		return err
	}

	for _, n := range batch {
		s.counter.Increment(ctx, n.UserID, 1)
		s.publisher.Publish(realtime.NotificationsTopic(n.UserID), "add", dto.NewNotificationResponse(n))
	}

	s.logger.Debug().
		Str("communityID", communityID.String()).
		Int("recipients", len(batch)).
		Str("type", string(template.Type)).
		Msg("Notifications fanned out")

	return nil
}

// ListUnread retrieves the user's unread notifications
func (s *notificationServiceImpl) ListUnread(ctx context.Context, userID uuid.UUID) ([]dto.NotificationResponse, error) {
	notifications, err := s.notifications.ListUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, dto.NewNotificationResponse(n))
	}
	return out, nil
}

// UnreadCount returns the badge count, served from the cache when warm
func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.counter.UnreadCount(ctx, userID)
}

// MarkRead marks one notification read and removes it from the user's
// channel on every session.
func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.notifications.MarkRead(ctx, userID, notificationID); err != nil {
		return err
	}

	s.counter.Decrement(ctx, userID, 1)
	s.publisher.Publish(realtime.NotificationsTopic(userID), "remove", map[string]any{"id": notificationID})

	return nil
}

// MarkAllRead marks every unread notification read
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	ids, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return err
	}

	s.counter.Decrement(ctx, userID, int64(len(ids)))
	for _, id := range ids {
		s.publisher.Publish(realtime.NotificationsTopic(userID), "remove", map[string]any{"id": id})
	}

	return nil
}
