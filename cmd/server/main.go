package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"wikijobs/internal/api/routes"
	"wikijobs/internal/background"
	"wikijobs/internal/config"
	"wikijobs/internal/exporter"
	"wikijobs/internal/grpc/interceptors"
	"wikijobs/internal/grpc/server"
	"wikijobs/internal/jobsearch"
	"wikijobs/internal/llm"
	"wikijobs/internal/logging"
	"wikijobs/internal/logging/types"
	"wikijobs/internal/matching"
	"wikijobs/internal/mux"
	"wikijobs/internal/scheduler"
	"wikijobs/internal/session"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logging
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting WikiJobs service")

	ctx := context.Background()
	fatal := func(msg string, err error) {
		logger.Fatal(msg, map[string]interface{}{types.FieldError: err.Error()})
	}

	// Session store
	store, err := session.NewStore(ctx, cfg)
	if err != nil {
		fatal("Failed to open session store", err)
	}
	logger.Info("Session store ready", map[string]interface{}{"store": cfg.Sessions.Store})

	// Initialize LLM manager
	llmManager := llm.NewManager(cfg)
	if err := llmManager.Start(ctx); err != nil {
		fatal("Failed to start LLM manager", err)
	}

	// Initialize background task manager
	taskManager := background.NewTaskManager(cfg)
	if err := taskManager.Start(ctx); err != nil {
		fatal("Failed to start task manager", err)
	}

	svc := session.NewService(cfg, store, jobsearch.NewClient(cfg), llmManager, taskManager, matching.NewScorer())

	deps := routes.Dependencies{
		Sessions: svc,
		Tasks:    taskManager,
		LLM:      llmManager,
	}
	if spaces, err := exporter.NewSpacesClient(cfg); err == nil {
		deps.Storage = spaces
	} else {
		logger.Warn("Export sharing disabled", map[string]interface{}{types.FieldError: err.Error()})
	}

	grpcServer := server.NewServer(cfg, llmManager, taskManager)

	// Periodic sweeps
	sched := scheduler.New(cfg.Sessions.SweepSpec)
	sched.Register("sessions", svc.Sweep)
	sched.Register("tasks", taskManager.Cleanup)
	sched.Register("llm-health", func(ctx context.Context) (int, error) {
		if llmManager.GetProviderName() == "none" {
			return 0, nil
		}
		return 0, llmManager.CheckHealth(ctx)
	})
	sched.Register("grpc-health", grpcServer.RefreshHealthSweep)
	sched.Register("grpc-metrics", interceptors.LogMetricsSummary)
	if err := sched.Start(ctx); err != nil {
		fatal("Failed to start scheduler", err)
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	routes.SetupRoutes(e, cfg, deps)

	m := mux.NewMultiplexer(cfg, grpcServer, e)
	if err := m.Start(cfg.Address()); err != nil {
		fatal("Server failed to start", err)
	}
	logger.Info("Server started", map[string]interface{}{"address": m.GetAddress()})

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting requests before draining background work
	if err := m.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping servers", map[string]interface{}{types.FieldError: err.Error()})
	}

	sched.Stop()

	if err := taskManager.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping task manager", map[string]interface{}{types.FieldError: err.Error()})
	}

	if err := llmManager.Stop(); err != nil {
		logger.Error("Error stopping LLM manager", map[string]interface{}{types.FieldError: err.Error()})
	}

	if err := store.Close(); err != nil {
		logger.Error("Error closing session store", map[string]interface{}{types.FieldError: err.Error()})
	}

	logger.Info("Server shutdown complete")
}
