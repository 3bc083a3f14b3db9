// Package models defines the data structures for transcript events and API responses.
package models

const (
	EventTypePartial = "meeting.transcript.partial"
	EventTypeFinal   = "meeting.transcript.final"
)

// TranscriptFragment is published for every fragment accepted from the provider.
type TranscriptFragment struct {
	EventType     string `json:"eventType"`
	EventID       string `json:"eventId"`
	CallID        string `json:"callId"`
	SegmentID     string `json:"segmentId"`
	Speaker       string `json:"speaker,omitempty"`
	Text          string `json:"text"`
	ProviderEvent string `json:"providerEvent,omitempty"`
	Shape         string `json:"shape"`
	Timestamp     int64  `json:"timestamp"`
}

// WebhookAck is the answer to every webhook delivery.
type WebhookAck struct {
	OK       bool   `json:"ok"`
	Event    string `json:"event"`
	BotID    string `json:"bot_id"`
	Shape    string `json:"shape"`
	Appended bool   `json:"appended"`
}

// LiveTranscript is the accumulated transcript of a call in progress.
type LiveTranscript struct {
	Success    bool   `json:"success"`
	HasData    bool   `json:"hasData"`
	Transcript string `json:"transcript"`
	// Updated is the unix millisecond time of the last append, 0 when absent.
	Updated   int64 `json:"updated"`
	LineCount int   `json:"line_count"`
	CharCount int   `json:"char_count"`
}

type StartRequest struct {
	ZoomURL     string `json:"zoom_url" validate:"required"`
	DisplayName string `json:"display_name"`
}

type StartResponse struct {
	Success           bool   `json:"success"`
	BotID             string `json:"bot_id"`
	Message           string `json:"message"`
	WebhookConfigured bool   `json:"webhook_configured"`
	WebhookURL        string `json:"webhook_url"`
}

type StopRequest struct {
	BotID string `json:"bot_id" validate:"required"`
}

type StopResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Transcript string `json:"transcript"`
	Ready      bool   `json:"ready"`
	Note       string `json:"note"`
}

// FinalTranscript is the provider's finalized transcript of a call.
type FinalTranscript struct {
	Success    bool   `json:"success"`
	State      string `json:"state"`
	Ready      bool   `json:"ready"`
	Transcript string `json:"transcript"`
	CharCount  int    `json:"char_count"`
	Note       string `json:"note"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
	Note    string `json:"note,omitempty"`
	Message string `json:"message,omitempty"`
	State   string `json:"state,omitempty"`
}
