// Package session starts and stops meeting bots and fetches their finalized transcripts.
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"meeting-transcript-relay/internal/observability/logging"
	"meeting-transcript-relay/internal/service/bot"
)

// DefaultBotName is used when neither the request nor the config names the bot.
const DefaultBotName = "Sales Notetaker"

// Notes explaining the readiness of a finalized transcript.
const (
	NoteAvailable  = "Transcript available"
	NoteProcessed  = "Processing complete but no transcript yet"
	NoteRecording  = "Still recording"
	NoteStopFollow = "Transcript is still processing. Poll /api/transcript for the final version."
)

// StateDone is the provider state of a bot whose recording has been processed.
const StateDone = "done"

// Config holds session controller configuration.
type Config struct {
	// PublicBaseURL is the externally reachable base of this service, if any.
	PublicBaseURL  string
	DefaultBotName string
}

// StartInput describes a bot to send into a meeting.
type StartInput struct {
	MeetingURL  string
	DisplayName string
	// Host is the Host header of the start request, used to derive the webhook URL.
	Host string
}

// StartResult is the outcome of a successful Start.
type StartResult struct {
	BotID string
	State string
	// WebhookURL is empty when live transcription could not be configured.
	WebhookURL string
}

// Final is a finalized transcript and whether it is ready.
type Final struct {
	State      string
	Transcript string
	Ready      bool
	Note       string
}

// FetchError wraps a provider failure while fetching a finalized transcript.
// State is the bot state when it was already known.
type FetchError struct {
	State string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch transcript: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Controller proxies session operations to a bot provider.
type Controller struct {
	provider bot.Provider
	cfg      Config
	log      zerolog.Logger
}

// NewController creates a Controller.
func NewController(provider bot.Provider, cfg Config) *Controller {
	if cfg.DefaultBotName == "" {
		cfg.DefaultBotName = DefaultBotName
	}
	return &Controller{
		provider: provider,
		cfg:      cfg,
		log:      logging.WithComponent("session"),
	}
}

// Start sends a bot into the meeting. Provider errors are returned unchanged.
func (c *Controller) Start(ctx context.Context, in StartInput) (*StartResult, error) {
	webhookURL := WebhookURL(c.cfg.PublicBaseURL, in.Host)
	if webhookURL == "" {
		c.log.Warn().
			Str("host", in.Host).
			Msg("No public webhook URL, live transcription disabled. Set PUBLIC_BASE_URL")
	}

	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = c.cfg.DefaultBotName
	}

	b, err := c.provider.CreateBot(ctx, bot.CreateRequest{
		MeetingURL: in.MeetingURL,
		Name:       name,
		WebhookURL: webhookURL,
	})
	if err != nil {
		return nil, err
	}

	log := logging.WithCall("session", b.ID)
	log.Info().
		Str("provider", c.provider.Name()).
		Str("state", b.State).
		Bool("webhook", webhookURL != "").
		Msg("Bot created")

	return &StartResult{BotID: b.ID, State: b.State, WebhookURL: webhookURL}, nil
}

// Stop removes the bot from its meeting and makes one attempt at the finalized
// transcript. Only the leave command can fail; an unavailable transcript is
// reported as not ready.
func (c *Controller) Stop(ctx context.Context, botID string) (*Final, error) {
	log := logging.WithCall("session", botID)

	if err := c.provider.LeaveCall(ctx, botID); err != nil {
		return nil, err
	}
	log.Info().Msg("Bot leaving call")

	final, err := c.Fetch(ctx, botID)
	if err != nil {
		log.Warn().Err(err).Msg("Transcript not available after stop")
		return &Final{Note: NoteStopFollow}, nil
	}
	if !final.Ready {
		final.Note = NoteStopFollow
	}
	return final, nil
}

// Fetch returns the finalized transcript. The artifact download link from the
// bot is preferred; without one the legacy transcript endpoint is queried, where
// a 4xx answer means the transcript is not ready yet.
func (c *Controller) Fetch(ctx context.Context, botID string) (*Final, error) {
	log := logging.WithCall("session", botID)

	b, err := c.provider.GetBot(ctx, botID)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	var raw []byte
	if b.TranscriptURL != "" {
		raw, err = c.provider.DownloadTranscript(ctx, b.TranscriptURL)
		if err != nil {
			return nil, &FetchError{State: b.State, Err: err}
		}
	} else {
		raw, err = c.provider.LegacyTranscript(ctx, botID)
		if err != nil {
			if !bot.IsClientError(err) {
				return nil, &FetchError{State: b.State, Err: err}
			}
			log.Debug().Err(err).Str("state", b.State).Msg("Transcript not ready")
			raw = nil
		}
	}

	text := Normalize(raw)
	final := &Final{
		State:      b.State,
		Transcript: text,
		Ready:      strings.TrimSpace(text) != "",
	}
	switch {
	case final.Ready:
		final.Note = NoteAvailable
	case b.State == StateDone:
		final.Note = NoteProcessed
	default:
		final.Note = NoteRecording
	}

	log.Debug().
		Str("state", final.State).
		Bool("ready", final.Ready).
		Int("chars", len(text)).
		Msg("Transcript fetched")

	return final, nil
}
