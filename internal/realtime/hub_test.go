package realtime

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(zerolog.Nop())
}

func TestPublishReachesSubscribedListener(t *testing.T) {
	hub := newTestHub()

	var gotName string
	var gotData []byte
	unsubscribe := hub.Subscribe("messages:abc", func(name string, data []byte) {
		gotName = name
		gotData = data
	})
	defer unsubscribe()

	hub.Publish("messages:abc", "add", map[string]string{"content": "hello"})

	assert.Equal(t, "add", gotName)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(gotData, &payload))
	assert.Equal(t, "hello", payload["content"])
}

func TestPublishIsolatedByTopic(t *testing.T) {
	hub := newTestHub()

	calls := 0
	unsubscribe := hub.Subscribe("survey:one", func(name string, data []byte) {
		calls++
	})
	defer unsubscribe()

	hub.Publish("survey:two", "answer", nil)

	assert.Zero(t, calls)
}

func TestPublishFansOutToAllListeners(t *testing.T) {
	hub := newTestHub()

	calls := make([]int, 3)
	for i := range calls {
		i := i
		defer hub.Subscribe("community:xyz", func(name string, data []byte) {
			calls[i]++
		})()
	}

	hub.Publish("community:xyz", "new_member", map[string]string{"username": "deniz"})

	for i, n := range calls {
		assert.Equal(t, 1, n, "listener %d", i)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := newTestHub()

	calls := 0
	unsubscribe := hub.Subscribe("notifications:u1", func(name string, data []byte) {
		calls++
	})

	hub.Publish("notifications:u1", "add", nil)
	unsubscribe()
	hub.Publish("notifications:u1", "add", nil)

	assert.Equal(t, 1, calls)

	// Unsubscribing twice must be harmless
	unsubscribe()
}

func TestPublishDropsUnmarshalablePayload(t *testing.T) {
	hub := newTestHub()

	calls := 0
	defer hub.Subscribe("messages:abc", func(name string, data []byte) {
		calls++
	})()

	// channels cannot be JSON-marshaled
	hub.Publish("messages:abc", "add", make(chan int))

	assert.Zero(t, calls)
}

func TestTopicNamesAreDeterministic(t *testing.T) {
	communityID := uuid.MustParse("6f1c1530-9f7e-4b7f-9d15-2b0a1e2d3c4b")
	userID := uuid.MustParse("0e8b1c2d-3f4a-5b6c-7d8e-9f0a1b2c3d4e")

	assert.Equal(t, "messages:6f1c1530-9f7e-4b7f-9d15-2b0a1e2d3c4b", MessagesTopic(communityID))
	assert.Equal(t, "community:6f1c1530-9f7e-4b7f-9d15-2b0a1e2d3c4b", CommunityTopic(communityID))
	assert.Equal(t, "notifications:0e8b1c2d-3f4a-5b6c-7d8e-9f0a1b2c3d4e", NotificationsTopic(userID))
	assert.Equal(t, SurveyTopic(communityID), SurveyTopic(communityID))
	assert.NotEqual(t, SurveyTopic(communityID), PostTopic(communityID))
}
