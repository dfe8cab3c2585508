package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wikijobs/internal/config"
	"wikijobs/internal/logging"
	"wikijobs/internal/logging/types"
)

// Task manager configuration constants
const (
	// Default configuration values
	DefaultMaxWorkers   = 10
	DefaultMaxQueueSize = 100

	// Queue capacity per worker
	QueueSizePerWorker = 5

	// Maximum configuration values for safety
	MaxWorkers   = 1000
	MaxQueueSize = 10000
)

// TaskManager defines the interface for managing background tasks
type TaskManager interface {
	// Start starts the task manager
	Start(ctx context.Context) error

	// Stop stops the task manager gracefully
	Stop(ctx context.Context) error

	// Submit queues fn under processID. It fails fast when the queue is full.
	Submit(ctx context.Context, processID string, taskType TaskType, metadata map[string]interface{}, fn TaskFunc) error

	// GetTaskResult retrieves the result of a task by process ID
	GetTaskResult(ctx context.Context, processID string) (*TaskResult, error)

	// GetTaskStatus retrieves the status of a task by process ID
	GetTaskStatus(ctx context.Context, processID string) (TaskStatus, error)

	// ListTasks lists all active tasks (for monitoring)
	ListTasks(ctx context.Context) ([]*TaskResult, error)

	// Cleanup removes results older than the configured maximum age
	Cleanup(ctx context.Context) (int, error)

	// IsHealthy checks if the task manager is healthy
	IsHealthy() bool
}

// TaskManagerImpl implements the TaskManager interface
type TaskManagerImpl struct {
	config       *config.Config
	store        TaskStore
	logger       *TaskCompletionLogger
	appLogger    types.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.RWMutex
	running      bool
	taskChan     chan *TaskExecution
	maxWorkers   int
	maxQueueSize int
	taskTimeout  time.Duration
	maxTaskAge   time.Duration
}

// TaskExecution represents a task execution context
type TaskExecution struct {
	ProcessID   string
	Type        TaskType
	ExecuteFunc TaskFunc
}

// validateTaskManagerConfig validates and returns safe configuration values
func validateTaskManagerConfig(cfg *config.Config) (maxWorkers, maxQueueSize int, err error) {
	maxWorkers = cfg.BackgroundTasks.MaxConcurrentTasks
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	} else if maxWorkers > MaxWorkers {
		return 0, 0, fmt.Errorf("max concurrent tasks (%d) exceeds maximum (%d)", maxWorkers, MaxWorkers)
	}

	maxQueueSize = maxWorkers * QueueSizePerWorker
	if maxQueueSize > MaxQueueSize {
		maxQueueSize = MaxQueueSize
	}

	return maxWorkers, maxQueueSize, nil
}

// NewTaskManager creates a new task manager backed by an in-memory store
func NewTaskManager(cfg *config.Config) *TaskManagerImpl {
	return NewTaskManagerWithStore(cfg, NewInMemoryTaskStore())
}

// NewTaskManagerWithStore creates a new task manager using store for results
func NewTaskManagerWithStore(cfg *config.Config, store TaskStore) *TaskManagerImpl {
	logger := logging.ForComponent("background")

	maxWorkers, maxQueueSize, err := validateTaskManagerConfig(cfg)
	if err != nil {
		logger.Warn("Task manager configuration validation failed, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		maxWorkers = DefaultMaxWorkers
		maxQueueSize = DefaultMaxQueueSize
	}

	logger.Info("Task manager configuration initialized", map[string]interface{}{
		"max_workers":    maxWorkers,
		"max_queue_size": maxQueueSize,
		"using_defaults": err != nil,
	})

	return &TaskManagerImpl{
		config:       cfg,
		store:        store,
		logger:       NewTaskCompletionLogger(logger),
		appLogger:    logger,
		maxWorkers:   maxWorkers,
		maxQueueSize: maxQueueSize,
		taskChan:     make(chan *TaskExecution, maxQueueSize),
		taskTimeout:  cfg.BackgroundTasks.TaskTimeout,
		maxTaskAge:   cfg.BackgroundTasks.MaxTaskAge,
	}
}

// Start starts the task manager
func (tm *TaskManagerImpl) Start(ctx context.Context) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.running {
		return fmt.Errorf("task manager already running")
	}

	tm.ctx, tm.cancel = context.WithCancel(ctx)
	tm.running = true

	for i := 0; i < tm.maxWorkers; i++ {
		tm.wg.Add(1)
		go tm.worker(i)
	}

	tm.appLogger.Info("Task manager started", map[string]interface{}{
		"max_workers": tm.maxWorkers,
	})
	return nil
}

// Stop stops the task manager gracefully. Queued tasks that have not started are dropped.
func (tm *TaskManagerImpl) Stop(ctx context.Context) error {
	tm.mu.Lock()
	if !tm.running {
		tm.mu.Unlock()
		return nil
	}

	tm.appLogger.Info("Stopping task manager...")

	tm.running = false
	tm.cancel()
	close(tm.taskChan)
	tm.mu.Unlock()

	done := make(chan struct{})
	go func() {
		tm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		tm.appLogger.Info("Task manager stopped gracefully")
	case <-ctx.Done():
		tm.appLogger.Warn("Task manager shutdown timed out")
	}

	return nil
}

// Submit queues a task for background processing
func (tm *TaskManagerImpl) Submit(ctx context.Context, processID string, taskType TaskType, metadata map[string]interface{}, fn TaskFunc) error {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	if !tm.running {
		return ErrManagerStopped
	}

	result := &TaskResult{
		ProcessID: processID,
		Type:      taskType,
		Status:    TaskStatusAccepted,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	if err := tm.store.Store(ctx, result); err != nil {
		return fmt.Errorf("failed to store task result: %w", err)
	}

	execution := &TaskExecution{
		ProcessID:   processID,
		Type:        taskType,
		ExecuteFunc: fn,
	}

	select {
	case tm.taskChan <- execution:
		tm.logger.LogTaskAccepted(processID, taskType)
		return nil
	default:
		_ = tm.store.Delete(ctx, processID)
		return ErrQueueFull
	}
}

// GetTaskResult retrieves the result of a task by process ID
func (tm *TaskManagerImpl) GetTaskResult(ctx context.Context, processID string) (*TaskResult, error) {
	return tm.store.Get(ctx, processID)
}

// GetTaskStatus retrieves the status of a task by process ID
func (tm *TaskManagerImpl) GetTaskStatus(ctx context.Context, processID string) (TaskStatus, error) {
	result, err := tm.store.Get(ctx, processID)
	if err != nil {
		return "", err
	}
	return result.Status, nil
}

// ListTasks lists all active tasks (for monitoring)
func (tm *TaskManagerImpl) ListTasks(ctx context.Context) ([]*TaskResult, error) {
	return tm.store.List(ctx)
}

// Cleanup removes results older than background_tasks.max_task_age
func (tm *TaskManagerImpl) Cleanup(ctx context.Context) (int, error) {
	removed, err := tm.store.Cleanup(ctx, tm.maxTaskAge)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old task results: %w", err)
	}
	if removed > 0 {
		tm.appLogger.Debug("Removed old task results", map[string]interface{}{
			"removed": removed,
		})
	}
	return removed, nil
}

// IsHealthy checks if the task manager is healthy
func (tm *TaskManagerImpl) IsHealthy() bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.running && tm.ctx.Err() == nil
}

// worker processes tasks from the task channel
func (tm *TaskManagerImpl) worker(workerID int) {
	defer tm.wg.Done()

	for {
		select {
		case <-tm.ctx.Done():
			return
		case task, ok := <-tm.taskChan:
			if !ok {
				return
			}
			tm.processTask(workerID, task)
		}
	}
}

// processTask runs a single task and records its outcome
func (tm *TaskManagerImpl) processTask(workerID int, task *TaskExecution) {
	startTime := time.Now()

	if err := tm.updateTaskStatus(task.ProcessID, TaskStatusProcessing); err != nil {
		tm.appLogger.Error("Failed to update task status to processing", map[string]interface{}{
			"process_id": task.ProcessID,
			"error":      err.Error(),
		})
	}

	tm.logger.LogTaskStart(task.ProcessID, task.Type)

	ctx, cancel := tm.taskContext()
	data, err := tm.execute(ctx, task)
	cancel()
	processingTime := time.Since(startTime)

	result, getErr := tm.store.Get(context.Background(), task.ProcessID)
	if getErr != nil {
		result = &TaskResult{
			ProcessID: task.ProcessID,
			Type:      task.Type,
			CreatedAt: startTime,
		}
	}

	completedAt := time.Now()
	result.CompletedAt = &completedAt
	result.ProcessingTime = &processingTime

	if err != nil {
		result.Status = TaskStatusFailure
		result.Error = err.Error()
		tm.logger.LogTaskError(task.ProcessID, task.Type, err)
	} else {
		result.Status = TaskStatusSuccess
		result.Data = data
		tm.logger.LogTaskSuccess(task.ProcessID, task.Type, processingTime)
	}

	if getErr != nil {
		err = tm.store.Store(context.Background(), result)
	} else {
		err = tm.store.Update(context.Background(), result)
	}
	if err != nil {
		tm.appLogger.Error("Failed to store task result", map[string]interface{}{
			"process_id": task.ProcessID,
			"worker_id":  workerID,
			"error":      err.Error(),
		})
	}

	tm.logger.LogTaskCompletion(result)
}

// execute runs the task function, turning a panic into an error
func (tm *TaskManagerImpl) execute(ctx context.Context, task *TaskExecution) (data interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task.ExecuteFunc(ctx)
}

// taskContext derives the context a task runs under
func (tm *TaskManagerImpl) taskContext() (context.Context, context.CancelFunc) {
	if tm.taskTimeout > 0 {
		return context.WithTimeout(tm.ctx, tm.taskTimeout)
	}
	return context.WithCancel(tm.ctx)
}

// updateTaskStatus updates the status of a task
func (tm *TaskManagerImpl) updateTaskStatus(processID string, status TaskStatus) error {
	result, err := tm.store.Get(context.Background(), processID)
	if err != nil {
		return err
	}

	result.Status = status
	return tm.store.Update(context.Background(), result)
}
