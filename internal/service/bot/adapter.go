// Package bot defines the interface for meeting bot providers.
package bot

import "context"

// Webhook events the relay subscribes to when it registers a realtime endpoint.
const (
	EventTranscriptPartial = "transcript.partial_data"
	EventTranscriptFinal   = "transcript.data"
)

// CreateRequest describes a bot that should join a meeting.
type CreateRequest struct {
	MeetingURL string
	Name       string
	// WebhookURL receives transcript events. Empty disables live transcription.
	WebhookURL string
}

// Bot is the provider's view of one meeting bot.
type Bot struct {
	ID    string
	State string
	// TranscriptURL is the download link of the finalized transcript artifact,
	// empty while the provider is still processing or on older API versions.
	TranscriptURL string
}

// Provider is implemented by meeting bot services (Recall.ai, mock).
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// CreateBot asks the provider to send a bot into the meeting.
	CreateBot(ctx context.Context, req CreateRequest) (*Bot, error)

	// LeaveCall tells the bot to leave its meeting.
	LeaveCall(ctx context.Context, botID string) error

	// GetBot fetches the bot's current state.
	GetBot(ctx context.Context, botID string) (*Bot, error)

	// DownloadTranscript fetches the finalized transcript artifact from a download URL.
	DownloadTranscript(ctx context.Context, url string) ([]byte, error)

	// LegacyTranscript fetches the transcript from the pre-artifact endpoint.
	LegacyTranscript(ctx context.Context, botID string) ([]byte, error)
}
