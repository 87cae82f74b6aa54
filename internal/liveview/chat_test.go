package liveview

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/realtime"
)

// fakeMessageGateway keeps messages in insertion order, oldest first.
type fakeMessageGateway struct {
	mu       sync.Mutex
	messages []*models.ChatMessage
	now      time.Time
}

func newFakeMessageGateway() *fakeMessageGateway {
	return &fakeMessageGateway{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (g *fakeMessageGateway) seed(communityID uuid.UUID, n int) {
	for i := 0; i < n; i++ {
		g.InsertMessage(context.Background(), &models.ChatMessage{
			CommunityID:    communityID,
			UserID:         uuid.New(),
			SenderUsername: "seed",
			Content:        fmt.Sprintf("message %d", i),
		})
	}
}

func (g *fakeMessageGateway) ListMessages(ctx context.Context, communityID uuid.UUID, limit, offset int) ([]*models.ChatMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var scoped []*models.ChatMessage
	for _, m := range g.messages {
		if m.CommunityID == communityID {
			scoped = append(scoped, m)
		}
	}

	// newest first
	var out []*models.ChatMessage
	for i := len(scoped) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, scoped[i])
	}
	return out, nil
}

func (g *fakeMessageGateway) InsertMessage(ctx context.Context, msg *models.ChatMessage) (*models.ChatMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	stored := *msg
	stored.ID = uuid.New()
	g.now = g.now.Add(time.Minute)
	stored.CreatedAt = g.now
	g.messages = append(g.messages, &stored)
	return &stored, nil
}

func (g *fakeMessageGateway) DeleteMessage(ctx context.Context, communityID, messageID uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, m := range g.messages {
		if m.ID == messageID && m.CommunityID == communityID {
			g.messages = append(g.messages[:i], g.messages[i+1:]...)
			return nil
		}
	}
	return nil
}

func TestChatThreadLoadNewestPage(t *testing.T) {
	communityID := uuid.New()
	gw := newFakeMessageGateway()
	gw.seed(communityID, 20)

	thread := NewChatThread(gw, communityID)
	require.NoError(t, thread.Load(context.Background()))

	msgs := thread.Messages()
	require.Len(t, msgs, DefaultPageSize)
	assert.True(t, thread.HasMore())

	// Window is the newest 16 of 20, oldest first
	assert.Equal(t, "message 4", msgs[0].Content)
	assert.Equal(t, "message 19", msgs[len(msgs)-1].Content)
}

func TestChatThreadShortHistoryHasNoMore(t *testing.T) {
	communityID := uuid.New()
	gw := newFakeMessageGateway()
	gw.seed(communityID, 5)

	thread := NewChatThread(gw, communityID)
	require.NoError(t, thread.Load(context.Background()))

	assert.Len(t, thread.Messages(), 5)
	assert.False(t, thread.HasMore())
}

func TestChatThreadExactPageBoundary(t *testing.T) {
	communityID := uuid.New()
	gw := newFakeMessageGateway()
	gw.seed(communityID, DefaultPageSize)

	thread := NewChatThread(gw, communityID)
	require.NoError(t, thread.Load(context.Background()))

	assert.Len(t, thread.Messages(), DefaultPageSize)
	assert.False(t, thread.HasMore())

	// LoadMore after exhausting history is a no-op
	require.NoError(t, thread.LoadMore(context.Background()))
	assert.Len(t, thread.Messages(), DefaultPageSize)
}

func TestChatThreadLoadMoreExtendsBackwards(t *testing.T) {
	communityID := uuid.New()
	gw := newFakeMessageGateway()
	gw.seed(communityID, 40)

	thread := NewChatThread(gw, communityID)
	require.NoError(t, thread.Load(context.Background()))
	require.NoError(t, thread.LoadMore(context.Background()))

	msgs := thread.Messages()
	require.Len(t, msgs, 32)
	assert.True(t, thread.HasMore())
	assert.Equal(t, "message 8", msgs[0].Content)
	assert.Equal(t, "message 39", msgs[len(msgs)-1].Content)

	require.NoError(t, thread.LoadMore(context.Background()))
	msgs = thread.Messages()
	assert.Len(t, msgs, 40)
	assert.False(t, thread.HasMore())
	assert.Equal(t, "message 0", msgs[0].Content)
}

func TestChatThreadRealtimeAddKeepsPaginationCorrect(t *testing.T) {
	// New messages arriving over the channel grow the window at its
	// newest edge, so the next LoadMore offset still lands exactly on
	// the oldest unloaded row.
	communityID := uuid.New()
	gw := newFakeMessageGateway()
	gw.seed(communityID, 20)

	ch := newFakeChannel()
	thread := NewChatThread(gw, communityID)
	thread.Attach(ch)
	defer thread.Detach()

	require.NoError(t, thread.Load(context.Background()))

	// Another participant persists and publishes a message
	stored, err := gw.InsertMessage(context.Background(), &models.ChatMessage{
		CommunityID:    communityID,
		UserID:         uuid.New(),
		SenderUsername: "other",
		Content:        "fresh",
	})
	require.NoError(t, err)
	ch.Publish(realtime.MessagesTopic(communityID), "add", stored)

	require.Len(t, thread.Messages(), DefaultPageSize+1)

	require.NoError(t, thread.LoadMore(context.Background()))
	msgs := thread.Messages()

	require.Len(t, msgs, 21)
	assert.Equal(t, "message 0", msgs[0].Content)
	assert.Equal(t, "fresh", msgs[len(msgs)-1].Content)

	seen := make(map[uuid.UUID]bool)
	for _, m := range msgs {
		assert.False(t, seen[m.ID], "duplicate message %s", m.Content)
		seen[m.ID] = true
	}
}

func TestChatThreadDuplicateAddIsIgnored(t *testing.T) {
	communityID := uuid.New()
	gw := newFakeMessageGateway()
	ch := newFakeChannel()

	thread := NewChatThread(gw, communityID)
	thread.Attach(ch)
	defer thread.Detach()
	require.NoError(t, thread.Load(context.Background()))

	stored, err := gw.InsertMessage(context.Background(), &models.ChatMessage{
		CommunityID: communityID, UserID: uuid.New(), SenderUsername: "a", Content: "once",
	})
	require.NoError(t, err)

	ch.Publish(realtime.MessagesTopic(communityID), "add", stored)
	ch.Publish(realtime.MessagesTopic(communityID), "add", stored)

	assert.Len(t, thread.Messages(), 1)
}

func TestChatThreadIgnoresOtherCommunities(t *testing.T) {
	communityID := uuid.New()
	gw := newFakeMessageGateway()
	ch := newFakeChannel()

	thread := NewChatThread(gw, communityID)
	thread.Attach(ch)
	defer thread.Detach()

	ch.Publish(realtime.MessagesTopic(communityID), "add", &models.ChatMessage{
		ID: uuid.New(), CommunityID: uuid.New(), Content: "stray",
	})

	assert.Empty(t, thread.Messages())
}

func TestChatThreadSendPersistsThenPublishes(t *testing.T) {
	communityID := uuid.New()
	gw := newFakeMessageGateway()
	ch := newFakeChannel()

	thread := NewChatThread(gw, communityID)
	thread.Attach(ch)
	defer thread.Detach()
	require.NoError(t, thread.Load(context.Background()))

	userID := uuid.New()
	stored, err := thread.Send(context.Background(), userID, "deniz", "hello", nil)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, stored.ID)
	assert.Equal(t, "deniz", stored.SenderUsername)

	// Exactly one copy in the window despite the synchronous echo of
	// our own publish
	msgs := thread.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, stored.ID, msgs[0].ID)

	adds := ch.eventsNamed("add")
	require.Len(t, adds, 1)
	assert.Equal(t, realtime.MessagesTopic(communityID), adds[0].topic)
}

func TestChatThreadDeleteEvent(t *testing.T) {
	communityID := uuid.New()
	gw := newFakeMessageGateway()
	ch := newFakeChannel()

	thread := NewChatThread(gw, communityID)
	thread.Attach(ch)
	defer thread.Detach()
	require.NoError(t, thread.Load(context.Background()))

	stored, err := thread.Send(context.Background(), uuid.New(), "deniz", "oops", nil)
	require.NoError(t, err)
	require.Len(t, thread.Messages(), 1)

	require.NoError(t, thread.Delete(context.Background(), stored.ID))
	assert.Empty(t, thread.Messages())

	// Replayed delete for an unknown id is harmless
	ch.Publish(realtime.MessagesTopic(communityID), "delete", DeleteMessageEvent{ID: stored.ID})
	assert.Empty(t, thread.Messages())
}

func TestChatThreadResolveReply(t *testing.T) {
	communityID := uuid.New()
	gw := newFakeMessageGateway()
	ch := newFakeChannel()

	thread := NewChatThread(gw, communityID)
	thread.Attach(ch)
	defer thread.Detach()
	require.NoError(t, thread.Load(context.Background()))

	original, err := thread.Send(context.Background(), uuid.New(), "alice", "first", nil)
	require.NoError(t, err)

	reply, err := thread.Send(context.Background(), uuid.New(), "bob", "second", &original.ID)
	require.NoError(t, err)

	resolved, err := thread.ResolveReply(reply)
	require.NoError(t, err)
	assert.Equal(t, original.ID, resolved.ID)

	// Not a reply at all
	resolved, err = thread.ResolveReply(original)
	require.NoError(t, err)
	assert.Nil(t, resolved)

	// Reply target outside the loaded window
	missing := uuid.New()
	_, err = thread.ResolveReply(&models.ChatMessage{
		ID:               uuid.New(),
		CommunityID:      communityID,
		RepliedMessageID: &missing,
	})
	assert.ErrorIs(t, err, ErrReplyNotLoaded)

	// Embedded snapshot wins even when the target is not loaded
	snapshot := &models.ChatMessage{ID: missing, CommunityID: communityID, Content: "archived"}
	resolved, err = thread.ResolveReply(&models.ChatMessage{
		ID:               uuid.New(),
		CommunityID:      communityID,
		RepliedMessageID: &missing,
		RepliedMessage:   snapshot,
	})
	require.NoError(t, err)
	assert.Equal(t, "archived", resolved.Content)
}

func TestChatThreadDayBuckets(t *testing.T) {
	communityID := uuid.New()
	gw := newFakeMessageGateway()

	base := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)
	for i, offset := range []time.Duration{0, 20 * time.Minute, 40 * time.Minute, 26 * time.Hour} {
		gw.messages = append(gw.messages, &models.ChatMessage{
			ID:          uuid.New(),
			CommunityID: communityID,
			Content:     fmt.Sprintf("m%d", i),
			CreatedAt:   base.Add(offset),
		})
	}

	thread := NewChatThread(gw, communityID)
	require.NoError(t, thread.Load(context.Background()))

	buckets := thread.DayBuckets()
	require.Len(t, buckets, 3)

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), buckets[0].Day)
	assert.Len(t, buckets[0].Messages, 2)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), buckets[1].Day)
	assert.Len(t, buckets[1].Messages, 1)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), buckets[2].Day)
	assert.Len(t, buckets[2].Messages, 1)
}
