package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"meeting-transcript-relay/internal/app"
	"meeting-transcript-relay/internal/models"
	"meeting-transcript-relay/internal/observability/logging"
	"meeting-transcript-relay/internal/observability/metrics"
	"meeting-transcript-relay/internal/schema"
	"meeting-transcript-relay/internal/service/bot"
	"meeting-transcript-relay/internal/service/ingest"
	"meeting-transcript-relay/internal/service/session"
	"meeting-transcript-relay/internal/service/transcript"
)

const (
	// maxRequestBytes caps request bodies, webhook payloads included.
	maxRequestBytes = 1 << 20

	msgMissingConfig = "Missing RECALL_REGION or RECALL_API_KEY env vars"
	msgBotJoining    = "Bot is joining. If Zoom prompts, click 'Admit'."
	msgBotLeaving    = "Bot is leaving the call."
	msgNoWebhook     = "Not configured - live transcription disabled"
	noteCreateFailed = "Check Recall.ai API credentials and meeting URL"
)

type handlers struct {
	store     transcript.Store
	ingestor  *ingest.Ingestor
	sessions  *session.Controller
	validator *schema.Validator
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

func newHandlers(a *app.Application) *handlers {
	return &handlers{
		store:     a.Store,
		ingestor:  a.Ingestor,
		sessions:  a.Sessions,
		validator: a.Validator,
		metrics:   a.Metrics,
		log:       logging.WithComponent("http"),
	}
}

func (h *handlers) start(w http.ResponseWriter, r *http.Request) {
	var req models.StartRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.sessions.Start(r.Context(), session.StartInput{
		MeetingURL:  req.ZoomURL,
		DisplayName: req.DisplayName,
		Host:        r.Host,
	})
	if err != nil {
		h.providerFailure(w, err, "Failed to create bot", noteCreateFailed, "")
		return
	}

	webhookURL := res.WebhookURL
	if webhookURL == "" {
		webhookURL = msgNoWebhook
	}
	writeJSON(w, http.StatusOK, models.StartResponse{
		Success:           true,
		BotID:             res.BotID,
		Message:           msgBotJoining,
		WebhookConfigured: res.WebhookURL != "",
		WebhookURL:        webhookURL,
	})
}

func (h *handlers) stop(w http.ResponseWriter, r *http.Request) {
	var req models.StopRequest
	if !h.decode(w, r, &req) {
		return
	}

	final, err := h.sessions.Stop(r.Context(), req.BotID)
	if err != nil {
		h.providerFailure(w, err, "Failed to stop bot", "", "")
		return
	}

	writeJSON(w, http.StatusOK, models.StopResponse{
		Success:    true,
		Message:    msgBotLeaving,
		Transcript: final.Transcript,
		Ready:      final.Ready,
		Note:       final.Note,
	})
}

func (h *handlers) transcript(w http.ResponseWriter, r *http.Request) {
	botID, ok := requireBotID(w, r)
	if !ok {
		return
	}

	final, err := h.sessions.Fetch(r.Context(), botID)
	if err != nil {
		var fe *session.FetchError
		state := ""
		if errors.As(err, &fe) {
			state = fe.State
		}
		note := "Bot still in progress"
		if state == session.StateDone {
			note = "Bot finished but transcript may not be ready yet"
		}
		h.providerFailure(w, err, "Failed to fetch transcript", note, state)
		return
	}

	writeJSON(w, http.StatusOK, models.FinalTranscript{
		Success:    true,
		State:      final.State,
		Ready:      final.Ready,
		Transcript: final.Transcript,
		CharCount:  len(final.Transcript),
		Note:       final.Note,
	})
}

func (h *handlers) live(w http.ResponseWriter, r *http.Request) {
	botID, ok := requireBotID(w, r)
	if !ok {
		return
	}

	entry, found, err := h.store.Get(r.Context(), botID)
	if err != nil {
		log := logging.WithCall("http", botID)
		log.Error().Err(err).Msg("Live transcript read failed")
		h.metrics.RecordStoreError("get")
		entry, found = transcript.Entry{}, false
	}
	h.metrics.RecordLiveRead(found)

	writeJSON(w, http.StatusOK, models.LiveTranscript{
		Success:    true,
		HasData:    found && entry.HasData(),
		Transcript: entry.Text,
		Updated:    entry.UpdatedMillis(),
		LineCount:  len(entry.Lines),
		CharCount:  len(entry.Text),
	})
}

// webhook always answers 200 so the provider does not retry.
func (h *handlers) webhook(w http.ResponseWriter, r *http.Request) {
	body, truncated, err := readLimited(r.Body, maxRequestBytes)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read webhook body")
	}
	if truncated {
		h.log.Warn().Int("limit", maxRequestBytes).Msg("Webhook body exceeds limit, payload truncated")
	}
	writeJSON(w, http.StatusOK, h.ingestor.Handle(r.Context(), body))
}

// decode reads a JSON body into req and validates it, writing a 400 on failure.
// An empty body decodes as {}.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	body, truncated, err := readLimited(r.Body, maxRequestBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}
	if truncated {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return false
		}
	}
	if err := h.validator.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// providerFailure translates a session error into the HTTP error taxonomy:
// missing config is a 500, provider answers keep their status and body, and
// anything else is an internal error.
func (h *handlers) providerFailure(w http.ResponseWriter, err error, message, note, state string) {
	if errors.Is(err, bot.ErrNotConfigured) {
		h.log.Error().Msg("Missing env vars: RECALL_REGION or RECALL_API_KEY")
		writeError(w, http.StatusInternalServerError, msgMissingConfig)
		return
	}

	var apiErr *bot.APIError
	if errors.As(err, &apiErr) {
		if bot.IsAuthError(err) {
			h.log.Warn().Int("status", apiErr.StatusCode).Msg("Provider rejected credentials")
		}
		writeJSON(w, apiErr.StatusCode, models.ErrorResponse{
			Error:   message,
			Details: apiErr.Body,
			Note:    note,
			State:   state,
		})
		return
	}

	h.log.Error().Err(err).Msg(message)
	writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{
		Error:   "Internal error",
		Message: err.Error(),
	})
}

// readLimited reads at most limit bytes of r and reports whether more followed.
func readLimited(r io.Reader, limit int64) ([]byte, bool, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if int64(len(body)) > limit {
		return body[:limit], true, err
	}
	return body, false, err
}

func requireBotID(w http.ResponseWriter, r *http.Request) (string, bool) {
	botID := strings.TrimSpace(r.URL.Query().Get("bot_id"))
	if botID == "" {
		writeError(w, http.StatusBadRequest, "bot_id is required")
		return "", false
	}
	return botID, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}
