package server

import (
	"log/slog"

	grpc3 "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// BoardServiceName is the service reported next to the overall ("") status.
const BoardServiceName = "board.MessageBoard"

// HealthServer reports whether the board accepts requests, for gRPC health checks.
type HealthServer struct {
	*health.Server
	log *slog.Logger
}

// NewHealthServer starts NOT_SERVING until the store is open and the HTTP listener is up.
func NewHealthServer(log *slog.Logger) *HealthServer {
	hs := &HealthServer{Server: health.NewServer(), log: log}
	hs.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return hs
}

func (h *HealthServer) Serving() {
	h.set(healthpb.HealthCheckResponse_SERVING)
}

func (h *HealthServer) NotServing() {
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
}

func (h *HealthServer) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.SetServingStatus("", status)
	h.SetServingStatus(BoardServiceName, status)
	h.log.Debug("Health status changed", "status", status.String())
}

// NewGRPCServer builds the server exposing grpc.health.v1.Health.
func NewGRPCServer(log *slog.Logger, hs *HealthServer) *grpc.Server {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc3.UnaryLoggingInterceptor(log),
		))
	healthpb.RegisterHealthServer(s, hs.Server)
	return s
}
