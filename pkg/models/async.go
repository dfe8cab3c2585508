package models

import (
	"time"
)

// AsyncStatus represents the status of an async operation
type AsyncStatus string

const (
	AsyncStatusAccepted   AsyncStatus = "ACCEPTED"
	AsyncStatusProcessing AsyncStatus = "PROCESSING"
	AsyncStatusSuccess    AsyncStatus = "SUCCESS"
	AsyncStatusFailure    AsyncStatus = "FAILURE"
)

// AsyncPlanResponse is the immediate response when a plan task is accepted
type AsyncPlanResponse struct {
	ProcessID string      `json:"processId"`
	SessionID string      `json:"sessionId"`
	Status    AsyncStatus `json:"status"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}

// AsyncTaskStatusResponse represents the response for task status queries
type AsyncTaskStatusResponse struct {
	ProcessID      string                 `json:"processId"`
	Status         AsyncStatus            `json:"status"`
	Data           interface{}            `json:"data,omitempty"`
	Error          string                 `json:"error,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
	CompletedAt    *time.Time             `json:"completedAt,omitempty"`
	ProcessingTime *time.Duration         `json:"processingTime,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// AsyncPlanCompletionData is the result stored for a finished plan task
type AsyncPlanCompletionData struct {
	SessionID string        `json:"sessionId"`
	Plan      *SkillGapPlan `json:"plan,omitempty"`
	Source    PlanSource    `json:"source"`
	Stale     bool          `json:"stale"`
}

// AsyncTaskListResponse represents the response for listing tasks
type AsyncTaskListResponse struct {
	Success bool                      `json:"success"`
	Tasks   []AsyncTaskStatusResponse `json:"tasks"`
	Count   int                       `json:"count"`
}

// CreateAsyncPlanResponse creates a successful async plan response
func CreateAsyncPlanResponse(processID, sessionID string) *AsyncPlanResponse {
	return &AsyncPlanResponse{
		ProcessID: processID,
		SessionID: sessionID,
		Status:    AsyncStatusAccepted,
		Message:   "Plan generation accepted for background processing",
		Timestamp: time.Now(),
	}
}
