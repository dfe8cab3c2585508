// Package scheduler runs periodic maintenance: expiring idle sessions and
// old background task results.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"wikijobs/internal/logging"
	"wikijobs/internal/logging/types"
)

// SweepFunc removes expired entries and returns how many it removed
type SweepFunc func(ctx context.Context) (int, error)

type job struct {
	name  string
	sweep SweepFunc
}

// Scheduler wraps robfig/cron and runs every registered sweep on one spec
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	logger types.Logger

	mu   sync.Mutex
	jobs []job
}

// New creates a Scheduler firing on spec, e.g. "@every 10m"
func New(spec string) *Scheduler {
	logger := logging.ForComponent("scheduler")
	cl := cronLogger{logger: logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		spec:   spec,
		logger: logger,
	}
}

// Register adds a named sweep. Call before Start.
func (s *Scheduler) Register(name string, sweep SweepFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job{name: name, sweep: sweep})
}

// Start registers the sweep cycle and starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunNow(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started", map[string]interface{}{
		"spec": s.spec,
		"jobs": len(s.jobs),
	})
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// RunNow runs every registered sweep once, concurrently, and returns the
// removed counts of the sweeps that succeeded
func (s *Scheduler) RunNow(ctx context.Context) map[string]int {
	s.mu.Lock()
	jobs := append([]job(nil), s.jobs...)
	s.mu.Unlock()

	var (
		g       errgroup.Group
		mu      sync.Mutex
		removed = make(map[string]int, len(jobs))
	)
	for _, j := range jobs {
		g.Go(func() error {
			n, err := j.sweep(ctx)
			if err != nil {
				s.logger.Error("Sweep failed", map[string]interface{}{
					"job":            j.name,
					types.FieldError: err.Error(),
				})
				return nil
			}
			mu.Lock()
			removed[j.name] = n
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Debug("Sweep cycle complete", map[string]interface{}{
		"removed": removed,
	})
	return removed
}

// cronLogger adapts the application logger to cron.Logger
type cronLogger struct {
	logger types.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := kvFields(keysAndValues)
	fields[types.FieldError] = err.Error()
	l.logger.Error("cron: "+msg, fields)
}

func kvFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2+1)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key := strings.TrimSpace(fmt.Sprint(keysAndValues[i]))
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
