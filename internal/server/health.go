package server

import (
	"context"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// AnalyzerService is the health service name that tracks AI availability.
const AnalyzerService = "compliance.analyzer"

// NewHealthServer returns a gRPC server exposing grpc.health.v1. The overall service is
// SERVING; AnalyzerService is SERVING only when analyzerAvailable is true.
func NewHealthServer(analyzerAvailable bool) (*grpc.Server, *health.Server) {
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if analyzerAvailable {
		st = healthpb.HealthCheckResponse_SERVING
	}
	hs.SetServingStatus(AnalyzerService, st)
	return gs, hs
}

// ServeGRPC serves gs on lis until ctx is done, then stops gracefully.
func ServeGRPC(ctx context.Context, gs *grpc.Server, hs *health.Server, lis net.Listener, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- gs.Serve(lis) }()

	select {
	case <-ctx.Done():
		hs.Shutdown()
		gs.GracefulStop()
		logger.Info("grpc.stopped")
		return nil
	case err := <-errCh:
		return err
	}
}
