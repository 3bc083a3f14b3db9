// Transcript Viewer streams relayed fragments from Kafka to WebSocket clients.
package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"meeting-transcript-relay/internal/observability/logging"
	"meeting-transcript-relay/internal/viewer"
)

func main() {
	port := flag.String("port", "8081", "HTTP server port")
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topicPartial := flag.String("topic-partial", "meeting.transcript.partial", "Partial transcript topic")
	topicFinal := flag.String("topic-final", "meeting.transcript.final", "Final transcript topic")
	flag.Parse()

	logging.Init(logging.Config{Level: "info", Format: "console", Service: "transcript-viewer"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := viewer.NewHub()
	go hub.Run(ctx)

	brokerList := strings.Split(*brokers, ",")
	for _, topic := range []string{*topicPartial, *topicFinal} {
		reader := viewer.NewReader(ctx, brokerList, topic)
		defer reader.Close()
		go viewer.Consume(ctx, reader, hub)
		log.Info().Str("topic", topic).Msg("Consuming partition 0 (last hour)")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)

	server := &http.Server{
		Addr:              ":" + *port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("addr", "ws://localhost:"+*port+"/ws").
		Strs("brokers", brokerList).
		Msg("Transcript viewer started")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Server error")
	}
}
