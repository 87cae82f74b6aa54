package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event is a named message published on a topic. Data is the
// JSON-serialized payload.
type Event struct {
	Topic string          `json:"topic"`
	Name  string          `json:"name"`
	Data  json.RawMessage `json:"data"`
}

// Listener receives events published on a subscribed topic.
type Listener func(name string, data []byte)

// Sink mirrors published events to an external stream (e.g. Kafka) for
// cross-instance fan-out. Write failures are dropped, not retried.
type Sink interface {
	Write(ctx context.Context, evt Event) error
}

// Hub maintains the set of active WebSocket clients and in-process
// listeners, and dispatches published events to both by topic.
//
// Publish is fire-and-forget: delivery is not acknowledged and no ordering
// is guaranteed across independently published events. Consumers must
// apply events idempotently.
type Hub struct {
	// WebSocket clients organized by topic
	mu      sync.RWMutex
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan Event

	// In-process listeners organized by topic
	listenersMu sync.RWMutex
	listeners   map[string]map[int64]Listener
	nextID      int64

	sink Sink

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
		listeners:  make(map[string]map[int64]Listener),
		logger:     logger,
	}
}

// AttachSink mirrors every published event to the given sink. Must be
// called before Run.
func (h *Hub) AttachSink(sink Sink) {
	h.sink = sink
}

// Run starts the hub loop handling client registrations and WebSocket
// broadcasts. In-process listeners are dispatched directly from Publish.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case evt := <-h.broadcast:
			h.broadcastEvent(evt)
		}
	}
}

// Publish serializes the payload and delivers the event to all topic
// subscribers. Failures are logged and dropped.
func (h *Hub) Publish(topic, name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("topic", topic).
			Str("event", name).
			Msg("Failed to marshal event payload")
		return
	}

	evt := Event{Topic: topic, Name: name, Data: data}
	h.deliver(evt)

	if h.sink != nil {
		go h.mirrorToSink(evt)
	}
}

// deliver fans an event out to local subscribers only. Used by Publish
// and by the Kafka relay, which must not mirror events back to the sink.
func (h *Hub) deliver(evt Event) {
	h.dispatchListeners(evt)

	// Hand off to the hub loop for WebSocket fan-out. Dropping under
	// backpressure is acceptable: clients recover state on next load.
	select {
	case h.broadcast <- evt:
	default:
		h.logger.Warn().
			Str("topic", evt.Topic).
			Str("event", evt.Name).
			Msg("Broadcast buffer full, event dropped")
	}
}

// Subscribe registers an in-process listener for a topic and returns the
// function that removes it. Callers must unsubscribe on teardown so
// events are never applied to a torn-down view.
func (h *Hub) Subscribe(topic string, listener Listener) (unsubscribe func()) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	if _, ok := h.listeners[topic]; !ok {
		h.listeners[topic] = make(map[int64]Listener)
	}
	h.nextID++
	id := h.nextID
	h.listeners[topic][id] = listener

	return func() {
		h.listenersMu.Lock()
		defer h.listenersMu.Unlock()

		if subs, ok := h.listeners[topic]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(h.listeners, topic)
			}
		}
	}
}

func (h *Hub) dispatchListeners(evt Event) {
	h.listenersMu.RLock()
	subs := make([]Listener, 0, len(h.listeners[evt.Topic]))
	for _, l := range h.listeners[evt.Topic] {
		subs = append(subs, l)
	}
	h.listenersMu.RUnlock()

	for _, l := range subs {
		l(evt.Name, evt.Data)
	}
}

func (h *Hub) mirrorToSink(evt Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.sink.Write(ctx, evt); err != nil {
		h.logger.Warn().
			Err(err).
			Str("topic", evt.Topic).
			Str("event", evt.Name).
			Msg("Failed to mirror event to sink")
	}
}

// registerClient registers a WebSocket client for all its topics
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range client.topics {
		if _, ok := h.clients[topic]; !ok {
			h.clients[topic] = make(map[*Client]bool)
		}
		h.clients[topic][client] = true
	}

	h.logger.Info().
		Str("userID", client.userID.String()).
		Strs("topics", client.topics).
		Msg("Client registered")
}

// unregisterClient removes a WebSocket client from all its topics
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeClientLocked(client)
}

// removeClientLocked drops a client from every topic it registered for
// and closes its send channel. Caller must hold the write lock.
func (h *Hub) removeClientLocked(client *Client) {
	registered := false
	for _, topic := range client.topics {
		if clients, ok := h.clients[topic]; ok {
			if _, ok := clients[client]; ok {
				registered = true
				delete(clients, client)
				if len(clients) == 0 {
					delete(h.clients, topic)
				}
			}
		}
	}

	if registered {
		close(client.send)
		h.logger.Info().
			Str("userID", client.userID.String()).
			Strs("topics", client.topics).
			Msg("Client unregistered")
	}
}

// broadcastEvent sends an event to all WebSocket clients on its topic
func (h *Hub) broadcastEvent(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("topic", evt.Topic).
			Msg("Failed to marshal event for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[evt.Topic] {
		select {
		case client.send <- data:
		default:
			// Client's send buffer is full, they might be slow or
			// disconnected. Drop them so they can reconnect cleanly.
			h.removeClientLocked(client)
		}
	}
}

// ClientCount returns the number of connected clients for a topic
func (h *Hub) ClientCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[topic])
}
