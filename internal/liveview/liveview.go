// Package liveview holds client-session views that mirror server state
// over the realtime channel. Each view loads a snapshot through a gateway
// and then applies published events to converge on the live state.
// Events may arrive duplicated or reordered, so every application is
// idempotent.
package liveview

// Channel is the topic-scoped event bus views attach to. Satisfied by
// realtime.Hub.
type Channel interface {
	Publish(topic, name string, payload any)
	Subscribe(topic string, listener func(name string, data []byte)) (unsubscribe func())
}
