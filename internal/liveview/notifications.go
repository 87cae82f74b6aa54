package liveview

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/realtime"
)

// NotificationGateway is the persistence surface an Inbox works against.
type NotificationGateway interface {
	ListUnread(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
}

// RemoveNotificationEvent is the payload of notification "remove" events.
type RemoveNotificationEvent struct {
	ID uuid.UUID `json:"id"`
}

// Inbox is the live view of a user's unread notifications. "add" events
// append, "remove" events drop, and both are idempotent.
type Inbox struct {
	mu sync.Mutex

	gw     NotificationGateway
	ch     Channel
	userID uuid.UUID

	items []*models.Notification
	seen  map[uuid.UUID]bool

	detach func()
}

// NewInbox creates an empty inbox view for a user.
func NewInbox(gw NotificationGateway, userID uuid.UUID) *Inbox {
	return &Inbox{
		gw:     gw,
		userID: userID,
		seen:   make(map[uuid.UUID]bool),
	}
}

// Load fetches the unread notifications, replacing the current items.
func (b *Inbox) Load(ctx context.Context) error {
	items, err := b.gw.ListUnread(ctx, b.userID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = nil
	b.seen = make(map[uuid.UUID]bool, len(items))
	for _, n := range items {
		if b.seen[n.ID] {
			continue
		}
		b.seen[n.ID] = true
		b.items = append(b.items, n)
	}
	return nil
}

// Attach subscribes to the user's notification topic.
func (b *Inbox) Attach(ch Channel) {
	b.ch = ch
	b.detach = ch.Subscribe(realtime.NotificationsTopic(b.userID), b.handleEvent)
}

// Detach unsubscribes from the channel. Safe to call when not attached.
func (b *Inbox) Detach() {
	if b.detach != nil {
		b.detach()
		b.detach = nil
	}
}

// Acknowledge marks a notification read and publishes its "remove"
// event so every session of the user drops it.
func (b *Inbox) Acknowledge(ctx context.Context, notificationID uuid.UUID) error {
	if err := b.gw.MarkRead(ctx, b.userID, notificationID); err != nil {
		return err
	}

	if b.ch != nil {
		b.ch.Publish(realtime.NotificationsTopic(b.userID), "remove", RemoveNotificationEvent{ID: notificationID})
	}
	b.applyRemove(notificationID)

	return nil
}

func (b *Inbox) handleEvent(name string, data []byte) {
	switch name {
	case "add":
		var n models.Notification
		if err := json.Unmarshal(data, &n); err != nil {
			return
		}
		b.applyAdd(&n)

	case "remove":
		var evt RemoveNotificationEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			return
		}
		b.applyRemove(evt.ID)
	}
}

// applyAdd appends a notification. Duplicates and notifications for
// other users are dropped.
func (b *Inbox) applyAdd(n *models.Notification) {
	if n.UserID != b.userID {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.seen[n.ID] {
		return
	}
	b.seen[n.ID] = true
	b.items = append(b.items, n)
}

// applyRemove drops a notification. Unknown ids are ignored.
func (b *Inbox) applyRemove(notificationID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.seen[notificationID] {
		return
	}
	delete(b.seen, notificationID)

	for i, n := range b.items {
		if n.ID == notificationID {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return
		}
	}
}

// Items returns the unread notifications in arrival order.
func (b *Inbox) Items() []*models.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*models.Notification, len(b.items))
	copy(out, b.items)
	return out
}

// Len returns the number of unread notifications.
func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
