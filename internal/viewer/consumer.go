package viewer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"meeting-transcript-relay/internal/models"
	"meeting-transcript-relay/internal/observability/logging"
)

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// NewReader reads topic from partition 0 without a consumer group, starting
// from messages of the last hour.
func NewReader(ctx context.Context, brokers []string, topic string) *kafka.Reader {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	if err := reader.SetOffsetAt(ctx, time.Now().Add(-1*time.Hour)); err != nil {
		log := logging.WithComponent("viewer")
		log.Warn().Err(err).Str("topic", topic).Msg("Failed to rewind reader, reading new messages only")
	}
	return reader
}

// Consume decodes fragments from reader and broadcasts them until ctx is done.
// Undecodable messages are skipped; read errors are retried after a pause.
func Consume(ctx context.Context, reader MessageReader, hub *Hub) {
	log := logging.WithComponent("viewer")

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("Kafka read failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		var ev models.TranscriptFragment
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			log.Warn().Err(err).Str("topic", msg.Topic).Msg("Skipping undecodable message")
			continue
		}

		log.Info().
			Str("eventType", ev.EventType).
			Str("botId", ev.CallID).
			Str("segmentId", ev.SegmentID).
			Str("text", truncate(ev.Text, 40)).
			Msg("Fragment received")
		hub.Broadcast(ctx, ev)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
