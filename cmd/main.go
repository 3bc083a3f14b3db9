package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	grpcapi "meeting-transcript-relay/internal/api/grpc"
	"meeting-transcript-relay/internal/app"
	"meeting-transcript-relay/internal/config"
	apihttp "meeting-transcript-relay/internal/http"
	"meeting-transcript-relay/internal/observability"
	"meeting-transcript-relay/internal/observability/logging"
)

func main() {
	// A missing .env is normal outside local development.
	envErr := godotenv.Load()

	cfg := config.Load()

	logging.Init(logging.Config{
		Level:   cfg.Observability.LogLevel,
		Format:  cfg.Observability.LogFormat,
		Service: cfg.Service.Name,
	})
	if envErr == nil {
		log.Info().Msg("Loaded environment from .env")
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create application")
	}
	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	// Observability server: /metrics, /healthz, /readyz
	obsServer := observability.NewServer(cfg.Observability.MetricsAddr, application.Checks()...)
	obsServer.Start()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Service.HTTPPort,
		Handler:           apihttp.NewRouter(application),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("Meeting transcript relay started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var healthServer *grpcapi.HealthServer
	if cfg.Observability.GRPCHealthEnabled {
		lis, err := net.Listen("tcp", ":"+cfg.Observability.GRPCHealthPort)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to listen for gRPC health")
		}
		healthServer = grpcapi.NewHealthServer()
		go func() {
			if err := healthServer.Serve(lis); err != nil {
				log.Error().Err(err).Msg("gRPC health server failed")
			}
		}()
		go healthServer.WatchReadiness(ctx, 5*time.Second, application.Ready)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down")
	stop()
	if healthServer != nil {
		healthServer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Service.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := obsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Observability server shutdown failed")
	}
	if err := application.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Application shutdown failed")
	}
}
