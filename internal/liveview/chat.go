package liveview

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/realtime"
)

// DefaultPageSize is the chat history page size.
const DefaultPageSize = 16

// ErrReplyNotLoaded is returned when a message replies to one outside
// the loaded window and no embedded snapshot is available.
var ErrReplyNotLoaded = errors.New("replied message is not loaded")

// MessageGateway is the persistence surface a ChatThread works against.
// ListMessages returns messages newest first.
type MessageGateway interface {
	ListMessages(ctx context.Context, communityID uuid.UUID, limit, offset int) ([]*models.ChatMessage, error)
	InsertMessage(ctx context.Context, msg *models.ChatMessage) (*models.ChatMessage, error)
	DeleteMessage(ctx context.Context, communityID, messageID uuid.UUID) error
}

// DeleteMessageEvent is the payload of chat "delete" events.
type DeleteMessageEvent struct {
	ID uuid.UUID `json:"id"`
}

// ChatThread is the live view of a community's chat: a window over the
// newest messages that grows backwards through LoadMore and forwards
// through realtime "add" events. Messages are held oldest first.
//
// The window invariant is that loaded messages are exactly the newest
// len(messages) rows of the thread, which makes len(messages) the
// correct offset for the next history page even while new messages
// arrive.
type ChatThread struct {
	mu sync.Mutex

	gw          MessageGateway
	ch          Channel
	communityID uuid.UUID
	pageSize    int

	messages []*models.ChatMessage
	seen     map[uuid.UUID]bool
	hasMore  bool

	detach func()
}

// NewChatThread creates an empty thread view over a community's chat.
func NewChatThread(gw MessageGateway, communityID uuid.UUID) *ChatThread {
	return &ChatThread{
		gw:          gw,
		communityID: communityID,
		pageSize:    DefaultPageSize,
		seen:        make(map[uuid.UUID]bool),
	}
}

// Attach subscribes to the community's message topic and wires Send and
// Delete to publish on it.
func (t *ChatThread) Attach(ch Channel) {
	t.ch = ch
	t.detach = ch.Subscribe(realtime.MessagesTopic(t.communityID), t.handleEvent)
}

// Detach unsubscribes from the channel. Safe to call when not attached.
func (t *ChatThread) Detach() {
	if t.detach != nil {
		t.detach()
		t.detach = nil
	}
}

// Load fetches the newest page, replacing whatever was loaded.
func (t *ChatThread) Load(ctx context.Context) error {
	t.mu.Lock()
	t.messages = nil
	t.seen = make(map[uuid.UUID]bool)
	t.hasMore = false
	t.mu.Unlock()

	return t.loadPage(ctx, 0)
}

// LoadMore fetches the page preceding the oldest loaded message. It is a
// no-op once the full history is loaded.
func (t *ChatThread) LoadMore(ctx context.Context) error {
	t.mu.Lock()
	if len(t.messages) > 0 && !t.hasMore {
		t.mu.Unlock()
		return nil
	}
	offset := len(t.messages)
	t.mu.Unlock()

	return t.loadPage(ctx, offset)
}

// loadPage fetches one page newest-first at the given offset. One extra
// row is requested purely to learn whether older history remains.
func (t *ChatThread) loadPage(ctx context.Context, offset int) error {
	batch, err := t.gw.ListMessages(ctx, t.communityID, t.pageSize+1, offset)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.hasMore = len(batch) > t.pageSize
	if t.hasMore {
		batch = batch[:t.pageSize]
	}

	// batch is newest first; walk it forward so each message is older
	// than the last and prepends before everything already loaded.
	older := make([]*models.ChatMessage, 0, len(batch))
	for _, msg := range batch {
		if t.seen[msg.ID] {
			continue
		}
		t.seen[msg.ID] = true
		older = append([]*models.ChatMessage{msg}, older...)
	}
	t.messages = append(older, t.messages...)

	return nil
}

// Send persists a new message and publishes its "add" event. The stored
// message lands in the local window through the event or, when the
// thread is not attached, through a direct apply.
func (t *ChatThread) Send(ctx context.Context, userID uuid.UUID, username, content string, repliedMessageID *uuid.UUID) (*models.ChatMessage, error) {
	msg := &models.ChatMessage{
		CommunityID:      t.communityID,
		UserID:           userID,
		SenderUsername:   username,
		Content:          content,
		RepliedMessageID: repliedMessageID,
	}

	// Gateway and channel calls happen without holding the mutex: the
	// channel dispatches listeners synchronously, and our own listener
	// needs the lock.
	stored, err := t.gw.InsertMessage(ctx, msg)
	if err != nil {
		return nil, err
	}

	if t.ch != nil {
		t.ch.Publish(realtime.MessagesTopic(t.communityID), "add", stored)
	}
	t.applyAdd(stored)

	return stored, nil
}

// Delete removes a message and publishes its "delete" event.
func (t *ChatThread) Delete(ctx context.Context, messageID uuid.UUID) error {
	if err := t.gw.DeleteMessage(ctx, t.communityID, messageID); err != nil {
		return err
	}

	if t.ch != nil {
		t.ch.Publish(realtime.MessagesTopic(t.communityID), "delete", DeleteMessageEvent{ID: messageID})
	}
	t.applyDelete(messageID)

	return nil
}

func (t *ChatThread) handleEvent(name string, data []byte) {
	switch name {
	case "add":
		var msg models.ChatMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return
		}
		t.applyAdd(&msg)

	case "delete":
		var evt DeleteMessageEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			return
		}
		t.applyDelete(evt.ID)
	}
}

// applyAdd inserts a message into the window, keeping ascending creation
// order. Duplicates and messages of other communities are dropped.
func (t *ChatThread) applyAdd(msg *models.ChatMessage) {
	if msg.CommunityID != t.communityID {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.seen[msg.ID] {
		return
	}
	t.seen[msg.ID] = true

	i := len(t.messages)
	for i > 0 && t.messages[i-1].CreatedAt.After(msg.CreatedAt) {
		i--
	}
	t.messages = append(t.messages, nil)
	copy(t.messages[i+1:], t.messages[i:])
	t.messages[i] = msg
}

// applyDelete drops a message from the window. Unknown ids are ignored.
func (t *ChatThread) applyDelete(messageID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.seen[messageID] {
		return
	}
	delete(t.seen, messageID)

	for i, msg := range t.messages {
		if msg.ID == messageID {
			t.messages = append(t.messages[:i], t.messages[i+1:]...)
			return
		}
	}
}

// Messages returns the loaded window, oldest first.
func (t *ChatThread) Messages() []*models.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*models.ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

// HasMore reports whether older history remains unloaded.
func (t *ChatThread) HasMore() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasMore
}

// ResolveReply returns the message msg replies to. It prefers the
// embedded snapshot, falls back to the loaded window, and reports
// ErrReplyNotLoaded otherwise. A nil result means msg is not a reply.
func (t *ChatThread) ResolveReply(msg *models.ChatMessage) (*models.ChatMessage, error) {
	if msg.RepliedMessageID == nil {
		return nil, nil
	}
	if msg.RepliedMessage != nil {
		return msg.RepliedMessage, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, m := range t.messages {
		if m.ID == *msg.RepliedMessageID {
			return m, nil
		}
	}
	return nil, ErrReplyNotLoaded
}

// DayBucket groups the messages of one UTC calendar day.
type DayBucket struct {
	Day      time.Time
	Messages []*models.ChatMessage
}

// DayBuckets splits the loaded window into per-day groups, oldest day
// first.
func (t *ChatThread) DayBuckets() []DayBucket {
	t.mu.Lock()
	defer t.mu.Unlock()

	return BucketByDay(t.messages)
}

// BucketByDay groups messages, given oldest first, by their UTC calendar
// day.
func BucketByDay(messages []*models.ChatMessage) []DayBucket {
	var buckets []DayBucket
	for _, msg := range messages {
		day := msg.CreatedAt.UTC().Truncate(24 * time.Hour)
		if n := len(buckets); n > 0 && buckets[n-1].Day.Equal(day) {
			buckets[n-1].Messages = append(buckets[n-1].Messages, msg)
			continue
		}
		buckets = append(buckets, DayBucket{Day: day, Messages: []*models.ChatMessage{msg}})
	}
	return buckets
}
