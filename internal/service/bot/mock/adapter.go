// Package mock provides a mock bot provider for running without Recall.ai credentials.
// Bots record until LeaveCall, after which a canned transcript becomes downloadable.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"meeting-transcript-relay/internal/service/bot"
	"meeting-transcript-relay/internal/service/segment"
)

const (
	providerName = "mock"

	StateRecording = "in_call_recording"
	StateDone      = "done"

	transcriptScheme = "mock://transcripts/"
)

// SimulatedUtterance is one speaker turn with the progressive partials a
// streaming transcriber would emit before the final text.
type SimulatedUtterance struct {
	Speaker  string
	Partials []string
	Final    string
}

// DefaultUtterances provides a sample sales call.
var DefaultUtterances = []SimulatedUtterance{
	{
		Speaker:  "Alice",
		Partials: []string{"Thanks for", "Thanks for joining", "Thanks for joining today"},
		Final:    "Thanks for joining today",
	},
	{
		Speaker:  "Bob",
		Partials: []string{"Happy to", "Happy to be here"},
		Final:    "Happy to be here",
	},
	{
		Speaker:  "Alice",
		Partials: []string{"Can you", "Can you walk me", "Can you walk me through"},
		Final:    "Can you walk me through your current setup",
	},
	{
		Speaker:  "Bob",
		Partials: []string{"We run", "We run everything on"},
		Final:    "We run everything on spreadsheets right now",
	},
	{
		Speaker:  "Alice",
		Partials: []string{"Thank you"},
		Final:    "Thank you very much",
	},
}

type mockBot struct {
	state string
}

// Adapter implements bot.Provider in memory.
type Adapter struct {
	mu         sync.Mutex
	ids        *segment.Generator
	bots       map[string]*mockBot
	utterances []SimulatedUtterance
}

// New creates a mock provider serving DefaultUtterances.
func New() *Adapter {
	return NewWithUtterances(DefaultUtterances)
}

// NewWithUtterances creates a mock provider serving the given transcript.
func NewWithUtterances(utterances []SimulatedUtterance) *Adapter {
	return &Adapter{
		ids:        segment.New(),
		bots:       make(map[string]*mockBot),
		utterances: utterances,
	}
}

// Name implements bot.Provider.
func (a *Adapter) Name() string { return providerName }

// CreateBot implements bot.Provider.
func (a *Adapter) CreateBot(ctx context.Context, req bot.CreateRequest) (*bot.Bot, error) {
	if strings.TrimSpace(req.MeetingURL) == "" {
		return nil, a.apiError("create_bot", http.StatusBadRequest, `{"meeting_url":["This field is required."]}`)
	}

	id := fmt.Sprintf("mock-bot-%d", a.ids.Seq(providerName))

	a.mu.Lock()
	defer a.mu.Unlock()
	a.bots[id] = &mockBot{state: StateRecording}
	return &bot.Bot{ID: id, State: StateRecording}, nil
}

// LeaveCall implements bot.Provider.
func (a *Adapter) LeaveCall(ctx context.Context, botID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.bots[botID]
	if !ok {
		return a.notFound("leave_call")
	}
	b.state = StateDone
	return nil
}

// GetBot implements bot.Provider. The transcript link appears once the bot is done.
func (a *Adapter) GetBot(ctx context.Context, botID string) (*bot.Bot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.bots[botID]
	if !ok {
		return nil, a.notFound("get_bot")
	}
	out := &bot.Bot{ID: botID, State: b.state}
	if b.state == StateDone {
		out.TranscriptURL = transcriptScheme + botID
	}
	return out, nil
}

// DownloadTranscript implements bot.Provider for mock:// links.
func (a *Adapter) DownloadTranscript(ctx context.Context, url string) ([]byte, error) {
	botID, ok := strings.CutPrefix(url, transcriptScheme)
	if !ok {
		return nil, a.apiError("download_transcript", http.StatusBadRequest, `{"detail":"unsupported transcript URL"}`)
	}
	if !a.isDone(botID) {
		return nil, a.notFound("download_transcript")
	}
	return a.blocks()
}

// LegacyTranscript implements bot.Provider. It answers 404 until the bot is done.
func (a *Adapter) LegacyTranscript(ctx context.Context, botID string) ([]byte, error) {
	if !a.isDone(botID) {
		return nil, a.notFound("legacy_transcript")
	}
	return a.blocks()
}

func (a *Adapter) isDone(botID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.bots[botID]
	return ok && b.state == StateDone
}

type transcriptWord struct {
	Text string `json:"text"`
}

type transcriptBlock struct {
	Speaker string           `json:"speaker"`
	Words   []transcriptWord `json:"words"`
}

// blocks renders the utterances in the speaker-block artifact shape.
func (a *Adapter) blocks() ([]byte, error) {
	out := make([]transcriptBlock, 0, len(a.utterances))
	for _, u := range a.utterances {
		fields := strings.Fields(u.Final)
		words := make([]transcriptWord, 0, len(fields))
		for _, f := range fields {
			words = append(words, transcriptWord{Text: f})
		}
		out = append(out, transcriptBlock{Speaker: u.Speaker, Words: words})
	}
	return json.Marshal(out)
}

func (a *Adapter) notFound(op string) error {
	return a.apiError(op, http.StatusNotFound, `{"detail":"Not found."}`)
}

func (a *Adapter) apiError(op string, status int, body string) error {
	return &bot.APIError{Provider: providerName, Operation: op, StatusCode: status, Body: body}
}

var _ bot.Provider = (*Adapter)(nil)
