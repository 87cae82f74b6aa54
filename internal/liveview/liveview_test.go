package liveview

import (
	"encoding/json"
	"sync"
)

// fakeChannel dispatches published events to subscribed listeners
// synchronously, mirroring how the hub delivers to in-process listeners.
type fakeChannel struct {
	mu        sync.Mutex
	listeners map[string]map[int]func(name string, data []byte)
	nextID    int
	published []fakeEvent
}

type fakeEvent struct {
	topic string
	name  string
	data  []byte
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		listeners: make(map[string]map[int]func(name string, data []byte)),
	}
}

func (c *fakeChannel) Publish(topic, name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	c.mu.Lock()
	c.published = append(c.published, fakeEvent{topic: topic, name: name, data: data})
	subs := make([]func(string, []byte), 0, len(c.listeners[topic]))
	for _, l := range c.listeners[topic] {
		subs = append(subs, l)
	}
	c.mu.Unlock()

	for _, l := range subs {
		l(name, data)
	}
}

func (c *fakeChannel) Subscribe(topic string, listener func(name string, data []byte)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.listeners[topic]; !ok {
		c.listeners[topic] = make(map[int]func(string, []byte))
	}
	c.nextID++
	id := c.nextID
	c.listeners[topic][id] = listener

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners[topic], id)
	}
}

func (c *fakeChannel) eventsNamed(name string) []fakeEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []fakeEvent
	for _, evt := range c.published {
		if evt.name == name {
			out = append(out, evt)
		}
	}
	return out
}
