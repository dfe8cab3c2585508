package session

import (
	"errors"
	"time"

	"wikijobs/pkg/models"
)

// Common errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPresetNotFound  = errors.New("filter preset not found")
	ErrInvalidIndex    = errors.New("job index out of range")
	ErrNoSelection     = errors.New("no job selected")
)

// Session is the state of one browser session between wizard submission and plan display
type Session struct {
	ID           string             `json:"id"`
	Profile      models.UserProfile `json:"profile"`
	Jobs         []models.JobMatch  `json:"jobs"`
	Filters      models.JobFilters  `json:"filters"`
	Sort         models.SortConfig  `json:"sort"`
	UserLocation string             `json:"user_location"`
	Warning      string             `json:"warning,omitempty"`

	SelectedJob    *models.JobMatch     `json:"selected_job,omitempty"`
	Plan           *models.SkillGapPlan `json:"plan,omitempty"`
	PlanSource     models.PlanSource    `json:"plan_source,omitempty"`
	PlanWarning    string               `json:"plan_warning,omitempty"`
	PlanRequestTag string               `json:"plan_request_tag,omitempty"`
	PlanProcessID  string               `json:"plan_process_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlanPending reports whether a job is selected and its plan has not arrived yet
func (s *Session) PlanPending() bool {
	return s.SelectedJob != nil && s.Plan == nil
}

// Clone copies the session. Job records and plans are read-only once built,
// so only the containers holding them are copied.
func (s *Session) Clone() *Session {
	c := *s
	c.Jobs = append([]models.JobMatch(nil), s.Jobs...)
	c.Filters.WorkTypes = append([]string(nil), s.Filters.WorkTypes...)
	c.Filters.Categories = append([]string(nil), s.Filters.Categories...)
	if s.Filters.SalaryRange.Min != nil {
		v := *s.Filters.SalaryRange.Min
		c.Filters.SalaryRange.Min = &v
	}
	if s.Filters.SalaryRange.Max != nil {
		v := *s.Filters.SalaryRange.Max
		c.Filters.SalaryRange.Max = &v
	}
	if s.SelectedJob != nil {
		job := *s.SelectedJob
		c.SelectedJob = &job
	}
	return &c
}

// PlanResult is what a finished plan task writes back to its session
type PlanResult struct {
	Plan    models.SkillGapPlan
	Source  models.PlanSource
	Warning string
}
