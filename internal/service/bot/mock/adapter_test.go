package mock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"meeting-transcript-relay/internal/service/bot"
)

func TestAdapter_New(t *testing.T) {
	adapter := New()
	if adapter == nil {
		t.Fatal("expected non-nil adapter")
	}
	if adapter.Name() != "mock" {
		t.Errorf("expected name 'mock', got %s", adapter.Name())
	}
}

func TestAdapter_CreateBot_SequentialIDs(t *testing.T) {
	adapter := New()
	ctx := context.Background()

	for _, want := range []string{"mock-bot-1", "mock-bot-2", "mock-bot-3"} {
		b, err := adapter.CreateBot(ctx, bot.CreateRequest{MeetingURL: "https://zoom.us/j/1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.ID != want {
			t.Errorf("expected %s, got %s", want, b.ID)
		}
		if b.State != StateRecording {
			t.Errorf("expected state %s, got %s", StateRecording, b.State)
		}
	}
}

func TestAdapter_CreateBot_RequiresMeetingURL(t *testing.T) {
	adapter := New()

	_, err := adapter.CreateBot(context.Background(), bot.CreateRequest{MeetingURL: "  "})
	var apiErr *bot.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 400 {
		t.Fatalf("expected 400 APIError, got %v", err)
	}
}

func TestAdapter_Lifecycle(t *testing.T) {
	adapter := NewWithUtterances([]SimulatedUtterance{
		{Speaker: "A", Final: "hello there"},
		{Speaker: "B", Final: "hi"},
	})
	ctx := context.Background()

	b, _ := adapter.CreateBot(ctx, bot.CreateRequest{MeetingURL: "https://zoom.us/j/1"})

	// While recording there is no transcript.
	got, err := adapter.GetBot(ctx, b.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.State != StateRecording || got.TranscriptURL != "" {
		t.Errorf("unexpected recording bot %+v", got)
	}
	if _, err := adapter.LegacyTranscript(ctx, b.ID); !bot.IsClientError(err) {
		t.Errorf("expected 4xx before leaving, got %v", err)
	}

	if err := adapter.LeaveCall(ctx, b.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ = adapter.GetBot(ctx, b.ID)
	if got.State != StateDone {
		t.Errorf("expected state %s, got %s", StateDone, got.State)
	}
	if got.TranscriptURL != "mock://transcripts/"+b.ID {
		t.Errorf("unexpected transcript URL %s", got.TranscriptURL)
	}

	raw, err := adapter.DownloadTranscript(ctx, got.TranscriptURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var blocks []transcriptBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		t.Fatalf("invalid transcript JSON: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Speaker != "A" || len(blocks[0].Words) != 2 || blocks[0].Words[1].Text != "there" {
		t.Errorf("unexpected first block %+v", blocks[0])
	}

	legacy, err := adapter.LegacyTranscript(ctx, b.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(legacy) != string(raw) {
		t.Error("expected legacy transcript to match the artifact")
	}
}

func TestAdapter_UnknownBot(t *testing.T) {
	adapter := New()
	ctx := context.Background()

	if err := adapter.LeaveCall(ctx, "nope"); !errors.Is(err, bot.ErrNotFound) {
		t.Errorf("LeaveCall: expected ErrNotFound, got %v", err)
	}
	if _, err := adapter.GetBot(ctx, "nope"); !errors.Is(err, bot.ErrNotFound) {
		t.Errorf("GetBot: expected ErrNotFound, got %v", err)
	}
	if _, err := adapter.DownloadTranscript(ctx, "https://elsewhere/t.json"); !errors.Is(err, bot.ErrBadRequest) {
		t.Errorf("DownloadTranscript: expected ErrBadRequest, got %v", err)
	}
}
