package background

import (
	"time"

	"wikijobs/internal/logging/types"
)

// TaskCompletionLogger handles structured logging for the task lifecycle
type TaskCompletionLogger struct {
	logger types.Logger
}

// NewTaskCompletionLogger creates a new task completion logger
func NewTaskCompletionLogger(logger types.Logger) *TaskCompletionLogger {
	return &TaskCompletionLogger{
		logger: logger,
	}
}

// TaskCompletionLog represents the structured log entry for task completion
type TaskCompletionLog struct {
	ProcessID      string                 `json:"processId"`
	Status         string                 `json:"status"`
	Error          string                 `json:"error,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
	Operation      string                 `json:"operation"`
	ProcessingTime string                 `json:"processing_time"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// CreateTaskCompletionLog creates a TaskCompletionLog from a TaskResult
func CreateTaskCompletionLog(result *TaskResult) *TaskCompletionLog {
	processingTime := "0s"
	if result.ProcessingTime != nil {
		processingTime = result.ProcessingTime.String()
	}

	return &TaskCompletionLog{
		ProcessID:      result.ProcessID,
		Status:         string(result.Status),
		Error:          result.Error,
		Timestamp:      time.Now(),
		Operation:      string(result.Type),
		ProcessingTime: processingTime,
		Metadata:       result.Metadata,
	}
}

// LogTaskCompletion writes one structured entry for a finished task
func (l *TaskCompletionLogger) LogTaskCompletion(result *TaskResult) {
	entry := CreateTaskCompletionLog(result)

	fields := map[string]interface{}{
		types.FieldProcessID: entry.ProcessID,
		"status":             entry.Status,
		"operation":          entry.Operation,
		"processing_time":    entry.ProcessingTime,
	}
	if entry.Error != "" {
		fields[types.FieldError] = entry.Error
	}
	for k, v := range entry.Metadata {
		if _, taken := fields[k]; !taken {
			fields[k] = v
		}
	}

	l.logger.Info("Background task completed", fields)
}

// LogTaskStart logs when a task starts processing
func (l *TaskCompletionLogger) LogTaskStart(processID string, taskType TaskType) {
	l.logger.Debug("Background task started", map[string]interface{}{
		types.FieldProcessID: processID,
		"operation":          taskType,
		"status":             TaskStatusProcessing,
	})
}

// LogTaskAccepted logs when a task is accepted for processing
func (l *TaskCompletionLogger) LogTaskAccepted(processID string, taskType TaskType) {
	l.logger.Debug("Background task accepted", map[string]interface{}{
		types.FieldProcessID: processID,
		"operation":          taskType,
		"status":             TaskStatusAccepted,
	})
}

// LogTaskError logs task errors during processing
func (l *TaskCompletionLogger) LogTaskError(processID string, taskType TaskType, err error) {
	l.logger.Error("Background task failed", map[string]interface{}{
		types.FieldProcessID: processID,
		"operation":          taskType,
		"status":             TaskStatusFailure,
		types.FieldError:     err.Error(),
	})
}

// LogTaskSuccess logs successful task completion
func (l *TaskCompletionLogger) LogTaskSuccess(processID string, taskType TaskType, processingTime time.Duration) {
	l.logger.Debug("Background task succeeded", map[string]interface{}{
		types.FieldProcessID: processID,
		"operation":          taskType,
		"status":             TaskStatusSuccess,
		"processing_time":    processingTime.String(),
	})
}
