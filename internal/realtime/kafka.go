package realtime

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// KafkaSink mirrors published events to a Kafka topic so other instances
// can replay them into their own hubs. Events are keyed by their topic
// string, which keeps per-entity ordering within a partition.
type KafkaSink struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// NewKafkaSink creates a sink writing to the given brokers and topic.
func NewKafkaSink(brokers []string, topic string, logger zerolog.Logger) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
		logger: logger,
	}
}

// Write publishes a single event to Kafka.
func (s *KafkaSink) Write(ctx context.Context, evt Event) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.Topic),
		Value: value,
	})
}

// Close flushes and closes the underlying writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

// RunKafkaRelay consumes mirrored events from Kafka and republishes them
// into the local hub, so events produced by other instances reach local
// subscribers. Runs until the context is cancelled.
func RunKafkaRelay(ctx context.Context, brokers []string, topic, groupID string, hub *Hub, logger zerolog.Logger) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	defer reader.Close()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn().Err(err).Msg("Failed to read event from Kafka")
			continue
		}

		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.Warn().Err(err).Msg("Failed to decode mirrored event")
			continue
		}

		// Deliver locally only. Republishing through Publish would mirror
		// the event back to Kafka and loop it between instances.
		hub.deliver(evt)
	}
}
