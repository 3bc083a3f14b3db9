// Package ingest turns provider webhook deliveries into accumulator lines.
//
// Provider payloads have changed shape across API versions, so extraction
// probes a fixed list of strategies (see Extract). Handling never fails from
// the provider's point of view: every delivery is acknowledged, and problems
// are only logged and counted.
package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"meeting-transcript-relay/internal/models"
	"meeting-transcript-relay/internal/observability/logging"
	"meeting-transcript-relay/internal/observability/metrics"
	"meeting-transcript-relay/internal/service/bot"
	"meeting-transcript-relay/internal/service/segment"
	"meeting-transcript-relay/internal/service/transcript"
)

// Webhook outcomes as recorded in metrics.
const (
	OutcomeAppended   = "appended"
	OutcomeNoCallID   = "no_call_id"
	OutcomeEmpty      = "empty"
	OutcomeStoreError = "store_error"
)

// Publisher receives every accepted fragment.
type Publisher interface {
	PublishFragment(ctx context.Context, ev models.TranscriptFragment) error
}

// Ingestor handles webhook deliveries.
type Ingestor struct {
	store     transcript.Store
	publisher Publisher
	segments  *segment.Generator
	metrics   *metrics.Metrics
	log       zerolog.Logger
	now       func() time.Time
}

// New creates an Ingestor. publisher may be nil.
func New(store transcript.Store, publisher Publisher, m *metrics.Metrics) *Ingestor {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &Ingestor{
		store:     store,
		publisher: publisher,
		segments:  segment.New(),
		metrics:   m,
		log:       logging.WithComponent("ingest"),
		now:       time.Now,
	}
}

// Handle processes one webhook body and returns its acknowledgment.
func (i *Ingestor) Handle(ctx context.Context, body []byte) models.WebhookAck {
	f := Extract(body)
	ack := models.WebhookAck{
		OK:    true,
		Event: f.Event,
		BotID: f.CallID,
		Shape: f.Shape,
	}

	if f.CallID == "" {
		i.log.Debug().Str("event", f.Event).Msg("Webhook without call identifier ignored")
		i.metrics.RecordWebhook(f.Shape, OutcomeNoCallID)
		return ack
	}
	if f.Text == "" {
		i.metrics.RecordWebhook(f.Shape, OutcomeEmpty)
		return ack
	}

	log := logging.WithCall("ingest", f.CallID)

	res, err := i.store.Append(ctx, f.CallID, f.Line())
	if err != nil {
		log.Error().Err(err).Str("shape", f.Shape).Msg("Failed to append fragment")
		i.metrics.RecordStoreError("append")
		i.metrics.RecordWebhook(f.Shape, OutcomeStoreError)
		return ack
	}
	if !res.Appended {
		i.metrics.RecordWebhook(f.Shape, OutcomeEmpty)
		return ack
	}

	ack.Appended = true
	i.metrics.RecordAppend(res.Created)
	i.metrics.RecordWebhook(f.Shape, OutcomeAppended)

	log.Debug().
		Str("event", f.Event).
		Str("shape", f.Shape).
		Int("lines", res.Lines).
		Msg("Fragment appended")

	i.publish(ctx, f)
	return ack
}

// publish is best effort; a failure never affects the acknowledgment.
func (i *Ingestor) publish(ctx context.Context, f Fragment) {
	if i.publisher == nil {
		return
	}

	eventType := models.EventTypeFinal
	if f.Event == bot.EventTranscriptPartial {
		eventType = models.EventTypePartial
	}

	ev := models.TranscriptFragment{
		EventType:     eventType,
		EventID:       uuid.NewString(),
		CallID:        f.CallID,
		SegmentID:     i.segments.Next(f.CallID),
		Speaker:       f.Speaker,
		Text:          f.Text,
		ProviderEvent: f.Event,
		Shape:         f.Shape,
		Timestamp:     i.now().UnixMilli(),
	}

	if err := i.publisher.PublishFragment(ctx, ev); err != nil {
		i.log.Warn().Err(err).Str("botId", f.CallID).Msg("Failed to publish fragment event")
	}
}
