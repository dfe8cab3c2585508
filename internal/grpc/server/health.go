package server

import (
	"context"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Service names reported through the gRPC health protocol. The empty name
// is the overall server status.
const (
	ServiceOverall  = ""
	ServiceSessions = "wikijobs.sessions"
	ServicePlans    = "wikijobs.plans"
)

// RefreshHealth publishes the current component health. Sessions depend on
// the task manager only; plans additionally report NOT_SERVING while the
// generator is down, although the fallback plan still answers.
func (s *Server) RefreshHealth() {
	overall := healthpb.HealthCheckResponse_SERVING
	if !s.tasks.IsHealthy() {
		overall = healthpb.HealthCheckResponse_NOT_SERVING
	}

	plans := overall
	if !s.llm.IsHealthy() {
		plans = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus(ServiceOverall, overall)
	s.health.SetServingStatus(ServiceSessions, overall)
	s.health.SetServingStatus(ServicePlans, plans)

	s.logger.Debug("gRPC health refreshed", map[string]interface{}{
		"overall": overall.String(),
		"plans":   plans.String(),
	})
}

// RefreshHealthSweep adapts RefreshHealth to the scheduler's sweep signature
func (s *Server) RefreshHealthSweep(ctx context.Context) (int, error) {
	s.RefreshHealth()
	return 0, nil
}
