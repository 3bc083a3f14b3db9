// Package grpcapi exposes the service's health over gRPC for orchestrators and grpcurl.
package grpcapi

import (
	"context"
	"net"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"meeting-transcript-relay/internal/observability/logging"
)

// ServiceName is the health service name reported next to the overall ("") status.
const ServiceName = "meeting.transcript.Relay"

// ReadinessFunc reports whether the service can serve traffic.
type ReadinessFunc func(ctx context.Context) error

// HealthServer serves grpc.health.v1.Health and reflection.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	log    zerolog.Logger
}

func NewHealthServer() *HealthServer {
	server := grpc.NewServer()
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, hs)

	// Enable gRPC reflection for debugging tools like grpcurl
	reflection.Register(server)

	s := &HealthServer{
		server: server,
		health: hs,
		log:    logging.WithComponent("grpc-health"),
	}
	s.SetServing(true)
	return s
}

// SetServing flips both the overall and the named service status.
func (s *HealthServer) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve blocks serving on lis until Stop.
func (s *HealthServer) Serve(lis net.Listener) error {
	s.log.Info().Str("addr", lis.Addr().String()).Msg("gRPC health server started")
	return s.server.Serve(lis)
}

// WatchReadiness mirrors ready into the health status every interval until ctx is done.
func (s *HealthServer) WatchReadiness(ctx context.Context, interval time.Duration, ready ReadinessFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval)
			err := ready(checkCtx)
			cancel()

			if now := err == nil; now != serving {
				serving = now
				s.SetServing(serving)
				s.log.Warn().Err(err).Bool("serving", serving).Msg("gRPC health status changed")
			}
		}
	}
}

// Stop reports NOT_SERVING and drains in-flight health calls.
func (s *HealthServer) Stop() {
	s.SetServing(false)
	s.server.GracefulStop()
}
