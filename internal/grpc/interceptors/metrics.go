package interceptors

import (
	"context"
	"sync"
	"time"

	"google.golang.org/grpc"

	"wikijobs/internal/logging"
)

// MethodStats counts calls to one gRPC method
type MethodStats struct {
	Requests int64
	Errors   int64
	Total    time.Duration
}

// Average is the mean call duration
func (m MethodStats) Average() time.Duration {
	if m.Requests == 0 {
		return 0
	}
	return m.Total / time.Duration(m.Requests)
}

// SuccessRate is the percentage of calls that returned no error
func (m MethodStats) SuccessRate() float64 {
	if m.Requests == 0 {
		return 0
	}
	return float64(m.Requests-m.Errors) / float64(m.Requests) * 100
}

// MetricsCollector aggregates per-method call stats
type MetricsCollector struct {
	mu      sync.Mutex
	methods map[string]MethodStats
}

var (
	globalMetricsCollector *MetricsCollector
	metricsOnce            sync.Once
)

// GetMetricsCollector returns the process-wide collector
func GetMetricsCollector() *MetricsCollector {
	metricsOnce.Do(func() {
		globalMetricsCollector = &MetricsCollector{methods: make(map[string]MethodStats)}
	})
	return globalMetricsCollector
}

// Record adds one call to method's stats
func (c *MetricsCollector) Record(method string, duration time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.methods[method]
	m.Requests++
	m.Total += duration
	if err != nil {
		m.Errors++
	}
	c.methods[method] = m
}

// Method returns the stats for method
func (c *MetricsCollector) Method(method string) (MethodStats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.methods[method]
	return m, ok
}

// Snapshot copies the stats of every method seen so far
func (c *MetricsCollector) Snapshot() map[string]MethodStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]MethodStats, len(c.methods))
	for k, v := range c.methods {
		out[k] = v
	}
	return out
}

// Reset clears all stats
func (c *MetricsCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.methods = make(map[string]MethodStats)
}

// MetricsInterceptor records the duration and outcome of unary calls
func MetricsInterceptor() grpc.UnaryServerInterceptor {
	collector := GetMetricsCollector()
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		collector.Record(info.FullMethod, time.Since(start), err)
		return resp, err
	}
}

// StreamMetricsInterceptor records the duration and outcome of streams
func StreamMetricsInterceptor() grpc.StreamServerInterceptor {
	collector := GetMetricsCollector()
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		collector.Record(info.FullMethod, time.Since(start), err)
		return err
	}
}

// LogMetricsSummary logs one line per method and returns how many were reported
func LogMetricsSummary(ctx context.Context) (int, error) {
	logger := logging.ForComponent("grpc")
	snapshot := GetMetricsCollector().Snapshot()

	for method, m := range snapshot {
		logger.Info("gRPC method metrics summary", map[string]interface{}{
			"method":           method,
			"request_count":    m.Requests,
			"error_count":      m.Errors,
			"success_rate":     m.SuccessRate(),
			"average_duration": m.Average().String(),
		})
	}
	return len(snapshot), nil
}
