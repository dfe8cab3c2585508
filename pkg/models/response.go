package models

import "time"

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// CreateSessionResponse is returned once the job search for a new session has run
type CreateSessionResponse struct {
	SessionID string     `json:"session_id"`
	Jobs      []JobMatch `json:"jobs"`
	Warning   string     `json:"warning,omitempty"`
	RequestID string     `json:"request_id"`
}

// JobListResponse is the filtered and sorted view of a session's jobs
type JobListResponse struct {
	Jobs              []JobMatch `json:"jobs"`
	Total             int        `json:"total"`
	Available         int        `json:"available"`
	Categories        []string   `json:"categories"`
	SalaryBounds      *Bounds    `json:"salary_bounds,omitempty"`
	ActiveFilterCount int        `json:"active_filter_count"`
	Filters           JobFilters `json:"filters"`
	Sort              SortConfig `json:"sort"`
	Warning           string     `json:"warning,omitempty"`
}

// Bounds is an inclusive integer range
type Bounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// PlanResponse returns the skill-gap plan for the selected job
type PlanResponse struct {
	SessionID string        `json:"session_id"`
	Job       *JobMatch     `json:"job,omitempty"`
	Plan      *SkillGapPlan `json:"plan,omitempty"`
	Source    PlanSource    `json:"source,omitempty"`
	Pending   bool          `json:"pending"`
	ProcessID string        `json:"process_id,omitempty"`
	Warning   string        `json:"warning,omitempty"`
}

// MatchExplanation breaks a match score into its weighted components
type MatchExplanation struct {
	RoleMatch     float64 `json:"role_match"`
	LocationMatch float64 `json:"location_match"`
	SkillsMatch   float64 `json:"skills_match"`
	BenefitsMatch float64 `json:"benefits_match"`
	Score         int     `json:"score"`
	Random        bool    `json:"random"`
}
