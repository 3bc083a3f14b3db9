// Webhook client replays a simulated meeting against a running relay: it posts
// realtime transcript webhooks for each utterance, then reads the live transcript.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"meeting-transcript-relay/internal/observability/logging"
	"meeting-transcript-relay/internal/service/bot"
	"meeting-transcript-relay/internal/service/bot/mock"
)

type word struct {
	Text string `json:"text"`
}

type participant struct {
	Name string `json:"name"`
}

type realtimeData struct {
	Words       []word      `json:"words"`
	Participant participant `json:"participant"`
}

type botRef struct {
	ID string `json:"id"`
}

type webhookData struct {
	Data realtimeData `json:"data"`
	Bot  botRef       `json:"bot"`
}

type webhook struct {
	Event string      `json:"event"`
	Data  webhookData `json:"data"`
}

func payload(botID, event, speaker, text string) webhook {
	fields := strings.Fields(text)
	words := make([]word, 0, len(fields))
	for _, f := range fields {
		words = append(words, word{Text: f})
	}
	return webhook{
		Event: event,
		Data: webhookData{
			Data: realtimeData{Words: words, Participant: participant{Name: speaker}},
			Bot:  botRef{ID: botID},
		},
	}
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Relay base URL")
	botID := flag.String("bot", "bot-local-1", "Bot id to report fragments for")
	partials := flag.Bool("partials", false, "Also send partial results")
	delay := flag.Duration("delay", 100*time.Millisecond, "Pause between deliveries")
	flag.Parse()

	logging.Init(logging.Config{Level: "info", Format: "console", Service: "webhookclient"})

	client := &http.Client{Timeout: 10 * time.Second}
	base := strings.TrimRight(*baseURL, "/")

	for _, u := range mock.DefaultUtterances {
		if *partials {
			for _, p := range u.Partials {
				post(client, base, payload(*botID, bot.EventTranscriptPartial, u.Speaker, p))
				time.Sleep(*delay)
			}
		}
		post(client, base, payload(*botID, bot.EventTranscriptFinal, u.Speaker, u.Final))
		time.Sleep(*delay)
	}

	resp, err := client.Get(base + "/api/live?bot_id=" + *botID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read live transcript")
	}
	defer resp.Body.Close()

	var live struct {
		HasData    bool   `json:"hasData"`
		Transcript string `json:"transcript"`
		LineCount  int    `json:"line_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&live); err != nil {
		log.Fatal().Err(err).Msg("Failed to decode live transcript")
	}

	log.Info().
		Bool("hasData", live.HasData).
		Int("lines", live.LineCount).
		Msg("Live transcript")
	for _, line := range strings.Split(live.Transcript, "\n") {
		log.Info().Msg(line)
	}
}

func post(client *http.Client, base string, w webhook) {
	body, err := json.Marshal(w)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal webhook")
	}

	resp, err := client.Post(base+"/api/recall/transcript", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to post webhook")
	}
	defer resp.Body.Close()

	ack, _ := io.ReadAll(resp.Body)
	log.Info().
		Str("event", w.Event).
		Int("status", resp.StatusCode).
		RawJSON("ack", bytes.TrimSpace(ack)).
		Msg("Webhook delivered")
}
