package liveview

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/realtime"
)

type fakeNotificationGateway struct {
	mu     sync.Mutex
	unread map[uuid.UUID][]*models.Notification
	read   []uuid.UUID
}

func newFakeNotificationGateway() *fakeNotificationGateway {
	return &fakeNotificationGateway{unread: make(map[uuid.UUID][]*models.Notification)}
}

func (g *fakeNotificationGateway) ListUnread(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*models.Notification(nil), g.unread[userID]...), nil
}

func (g *fakeNotificationGateway) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.read = append(g.read, notificationID)
	items := g.unread[userID]
	for i, n := range items {
		if n.ID == notificationID {
			g.unread[userID] = append(items[:i], items[i+1:]...)
			break
		}
	}
	return nil
}

func notificationFor(userID uuid.UUID, title string) *models.Notification {
	return &models.Notification{
		ID:     uuid.New(),
		UserID: userID,
		Type:   models.NotificationTypeInfo,
		Title:  title,
	}
}

func TestInboxLoadsUnread(t *testing.T) {
	userID := uuid.New()
	gw := newFakeNotificationGateway()
	gw.unread[userID] = []*models.Notification{
		notificationFor(userID, "one"),
		notificationFor(userID, "two"),
	}

	inbox := NewInbox(gw, userID)
	require.NoError(t, inbox.Load(context.Background()))

	assert.Equal(t, 2, inbox.Len())
}

func TestInboxAddEventIsIdempotent(t *testing.T) {
	userID := uuid.New()
	ch := newFakeChannel()

	inbox := NewInbox(newFakeNotificationGateway(), userID)
	inbox.Attach(ch)
	defer inbox.Detach()

	n := notificationFor(userID, "invited")
	ch.Publish(realtime.NotificationsTopic(userID), "add", n)
	ch.Publish(realtime.NotificationsTopic(userID), "add", n)

	require.Equal(t, 1, inbox.Len())
	assert.Equal(t, "invited", inbox.Items()[0].Title)
}

func TestInboxIgnoresOtherUsers(t *testing.T) {
	userID := uuid.New()
	ch := newFakeChannel()

	inbox := NewInbox(newFakeNotificationGateway(), userID)
	inbox.Attach(ch)
	defer inbox.Detach()

	ch.Publish(realtime.NotificationsTopic(userID), "add", notificationFor(uuid.New(), "stray"))

	assert.Zero(t, inbox.Len())
}

func TestInboxRemoveEventIsIdempotent(t *testing.T) {
	userID := uuid.New()
	ch := newFakeChannel()

	inbox := NewInbox(newFakeNotificationGateway(), userID)
	inbox.Attach(ch)
	defer inbox.Detach()

	n := notificationFor(userID, "gone soon")
	ch.Publish(realtime.NotificationsTopic(userID), "add", n)
	require.Equal(t, 1, inbox.Len())

	evt := RemoveNotificationEvent{ID: n.ID}
	ch.Publish(realtime.NotificationsTopic(userID), "remove", evt)
	ch.Publish(realtime.NotificationsTopic(userID), "remove", evt)

	assert.Zero(t, inbox.Len())

	// Remove for a never-seen id is harmless
	ch.Publish(realtime.NotificationsTopic(userID), "remove", RemoveNotificationEvent{ID: uuid.New()})
	assert.Zero(t, inbox.Len())
}

func TestInboxAcknowledgeMarksReadAndPublishesRemove(t *testing.T) {
	userID := uuid.New()
	gw := newFakeNotificationGateway()
	n := notificationFor(userID, "ack me")
	gw.unread[userID] = []*models.Notification{n}

	ch := newFakeChannel()
	inbox := NewInbox(gw, userID)
	inbox.Attach(ch)
	defer inbox.Detach()
	require.NoError(t, inbox.Load(context.Background()))

	require.NoError(t, inbox.Acknowledge(context.Background(), n.ID))

	assert.Zero(t, inbox.Len())
	assert.Contains(t, gw.read, n.ID)

	removes := ch.eventsNamed("remove")
	require.Len(t, removes, 1)
	assert.Equal(t, realtime.NotificationsTopic(userID), removes[0].topic)
}
