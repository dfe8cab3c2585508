// Package server hosts the gRPC side of the service: the standard health
// protocol and reflection, served next to the HTTP API on one port.
package server

import (
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"wikijobs/internal/config"
	"wikijobs/internal/grpc/interceptors"
	"wikijobs/internal/logging"
	"wikijobs/internal/logging/types"
)

// ProviderStatus reports on the text generation provider
type ProviderStatus interface {
	IsHealthy() bool
}

// TaskStatus reports on the background task manager
type TaskStatus interface {
	IsHealthy() bool
}

type Server struct {
	cfg    *config.Config
	llm    ProviderStatus
	tasks  TaskStatus
	health *health.Server
	grpc   *grpc.Server
	logger types.Logger
}

func NewServer(cfg *config.Config, llm ProviderStatus, tasks TaskStatus) *Server {
	grpcServer := grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 5 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.MaxRecvMsgSize(4*1024*1024), // 4MB
		grpc.ChainUnaryInterceptor(
			interceptors.RecoveryInterceptor(),
			interceptors.LoggingInterceptor(),
			interceptors.MetricsInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			interceptors.StreamRecoveryInterceptor(),
			interceptors.StreamLoggingInterceptor(),
			interceptors.StreamMetricsInterceptor(),
		),
	)

	s := &Server{
		cfg:    cfg,
		llm:    llm,
		tasks:  tasks,
		health: health.NewServer(),
		grpc:   grpcServer,
		logger: logging.ForComponent("grpc"),
	}

	healthpb.RegisterHealthServer(grpcServer, s.health)

	// Enable reflection for debugging
	reflection.Register(grpcServer)

	s.RefreshHealth()
	return s
}

func (s *Server) Start(lis net.Listener) error {
	s.logger.Info("Starting gRPC server", map[string]interface{}{
		"address": lis.Addr().String(),
	})
	return s.grpc.Serve(lis)
}

// Stop marks every service NOT_SERVING and drains in-flight calls
func (s *Server) Stop() {
	s.logger.Info("Shutting down gRPC server")
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

// GRPCServer exposes the underlying server for registering extra services
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpc
}
