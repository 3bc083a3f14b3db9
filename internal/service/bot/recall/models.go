package recall

import (
	"encoding/json"

	"meeting-transcript-relay/internal/service/bot"
)

type createPayload struct {
	MeetingURL      string          `json:"meeting_url"`
	Name            string          `json:"name"`
	RecordingConfig recordingConfig `json:"recording_config"`
}

type recordingConfig struct {
	Transcript        transcriptConfig   `json:"transcript"`
	RealtimeEndpoints []realtimeEndpoint `json:"realtime_endpoints,omitempty"`
}

type transcriptConfig struct {
	// Provider holds exactly one key, the provider name, mapped to its (empty) options.
	Provider map[string]struct{} `json:"provider"`
}

type realtimeEndpoint struct {
	Type   string   `json:"type"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

func newCreatePayload(req bot.CreateRequest, transcriptProvider string) createPayload {
	p := createPayload{
		MeetingURL: req.MeetingURL,
		Name:       req.Name,
		RecordingConfig: recordingConfig{
			Transcript: transcriptConfig{
				Provider: map[string]struct{}{transcriptProvider: {}},
			},
		},
	}
	if req.WebhookURL != "" {
		p.RecordingConfig.RealtimeEndpoints = []realtimeEndpoint{{
			Type:   "webhook",
			URL:    req.WebhookURL,
			Events: []string{bot.EventTranscriptPartial, bot.EventTranscriptFinal},
		}}
	}
	return p
}

// legacyCreatePayload is the bot schema of the pre-recording_config API.
type legacyCreatePayload struct {
	MeetingURL            string                     `json:"meeting_url"`
	BotName               string                     `json:"bot_name"`
	TranscriptionOptions  legacyTranscriptionOptions `json:"transcription_options"`
	RealTimeTranscription *legacyRealTime            `json:"real_time_transcription,omitempty"`
}

type legacyTranscriptionOptions struct {
	Provider string `json:"provider"`
}

type legacyRealTime struct {
	DestinationURL string `json:"destination_url"`
	PartialResults bool   `json:"partial_results"`
}

func newLegacyCreatePayload(req bot.CreateRequest) legacyCreatePayload {
	p := legacyCreatePayload{
		MeetingURL:           req.MeetingURL,
		BotName:              req.Name,
		TranscriptionOptions: legacyTranscriptionOptions{Provider: legacyCaptionsProvider},
	}
	if req.WebhookURL != "" {
		p.RealTimeTranscription = &legacyRealTime{
			DestinationURL: req.WebhookURL,
			PartialResults: true,
		}
	}
	return p
}

// botResponse covers the bot object across API versions: state used to be a
// plain string, later a status object, and later still a status_changes log.
type botResponse struct {
	ID            string          `json:"id"`
	State         string          `json:"state"`
	Status        json.RawMessage `json:"status"`
	StatusChanges []statusChange  `json:"status_changes"`
	Recordings    []recording     `json:"recordings"`
}

type statusChange struct {
	Code string `json:"code"`
}

type recording struct {
	MediaShortcuts struct {
		Transcript *struct {
			Data struct {
				DownloadURL string `json:"download_url"`
			} `json:"data"`
		} `json:"transcript"`
	} `json:"media_shortcuts"`
}

func (r botResponse) state() string {
	if r.State != "" {
		return r.State
	}
	if len(r.Status) > 0 {
		var s string
		if err := json.Unmarshal(r.Status, &s); err == nil && s != "" {
			return s
		}
		var obj statusChange
		if err := json.Unmarshal(r.Status, &obj); err == nil && obj.Code != "" {
			return obj.Code
		}
	}
	if n := len(r.StatusChanges); n > 0 {
		return r.StatusChanges[n-1].Code
	}
	return ""
}

func (r botResponse) transcriptURL() string {
	for _, rec := range r.Recordings {
		if t := rec.MediaShortcuts.Transcript; t != nil && t.Data.DownloadURL != "" {
			return t.Data.DownloadURL
		}
	}
	return ""
}

func (r botResponse) toBot() *bot.Bot {
	return &bot.Bot{
		ID:            r.ID,
		State:         r.state(),
		TranscriptURL: r.transcriptURL(),
	}
}
