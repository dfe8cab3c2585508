package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"wikijobs/internal/background"
	"wikijobs/internal/config"
	"wikijobs/internal/filters"
	"wikijobs/internal/jobsearch"
	"wikijobs/internal/logging"
	"wikijobs/internal/logging/types"
	"wikijobs/internal/matching"
	"wikijobs/internal/plan"
	"wikijobs/pkg/models"
	"wikijobs/pkg/utils"
)

// Banner texts shown when a step fell back to built-in data
const (
	WarningSearchNotConfigured = "Live job search is not configured. Showing sample jobs instead."
	WarningSearchFailed        = "We couldn't reach the job search service. Showing sample jobs instead."
	WarningPlanFailed          = "We couldn't generate a personalised plan. Showing a general plan instead."
)

const planWriteTries = 3

var planWriteInterval = 100 * time.Millisecond

// JobSearcher runs a job search
type JobSearcher interface {
	Search(ctx context.Context, q jobsearch.Query) ([]jobsearch.Result, error)
}

// TextGenerator turns a prompt into free text
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// View overrides a session's stored view state for one read. Nil fields use
// the stored value.
type View struct {
	Filters      *models.JobFilters
	Sort         *models.SortConfig
	UserLocation *string
}

// Service runs the session workflow: search, refine, select, plan
type Service struct {
	config    *config.Config
	store     Store
	searcher  JobSearcher
	generator TextGenerator
	tasks     background.TaskManager
	scorer    *matching.Scorer
	logger    types.Logger
}

// NewService wires the workflow dependencies
func NewService(cfg *config.Config, store Store, searcher JobSearcher, generator TextGenerator, tasks background.TaskManager, scorer *matching.Scorer) *Service {
	return &Service{
		config:    cfg,
		store:     store,
		searcher:  searcher,
		generator: generator,
		tasks:     tasks,
		scorer:    scorer,
		logger:    logging.ForComponent("session"),
	}
}

// CreateSession runs the job search for profile and stores a new session.
// A failed search falls back to the sample jobs with a warning, unless
// sample fallback is disabled.
func (s *Service) CreateSession(ctx context.Context, profile models.UserProfile) (*Session, error) {
	id := utils.GenerateSessionID()
	logger := s.logger.WithField(types.FieldSessionID, id)

	jobs, warning, err := s.search(ctx, profile)
	if err != nil {
		return nil, err
	}
	if limit := s.config.Sessions.MaxJobs; limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}

	now := time.Now()
	sess := &Session{
		ID:           id,
		Profile:      profile,
		Jobs:         jobs,
		Filters:      models.JobFilters{WorkTypes: []string{}, Categories: []string{}},
		Sort:         models.DefaultSortConfig(),
		UserLocation: profile.Preferences.Location,
		Warning:      warning,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	logger.Info("Session created", map[string]interface{}{
		"jobs":     len(jobs),
		"fallback": warning != "",
	})
	return sess, nil
}

func (s *Service) search(ctx context.Context, profile models.UserProfile) ([]models.JobMatch, string, error) {
	results, err := s.searcher.Search(ctx, jobsearch.Query{
		Role:     profile.Preferences.DesiredRole,
		Location: profile.Preferences.Location,
		Country:  strings.ToLower(profile.Preferences.Country),
	})
	if err == nil {
		return jobsearch.NormalizeBatch(results, &profile, s.scorer), "", nil
	}

	if !s.config.Sessions.UseSamples {
		return nil, "", err
	}

	warning := WarningSearchFailed
	if utils.IsConfigurationError(err) {
		warning = WarningSearchNotConfigured
	}
	s.logger.Warn("Job search failed, using sample jobs", map[string]interface{}{
		types.FieldError: err.Error(),
	})
	return jobsearch.SampleJobs(), warning, nil
}

// GetSession returns the stored session
func (s *Service) GetSession(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

// ListJobs filters and sorts the session's jobs using the stored view state
// with any overrides from v applied.
func (s *Service) ListJobs(ctx context.Context, id string, v View) (*models.JobListResponse, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	f, sortCfg, location := sess.Filters, sess.Sort, sess.UserLocation
	if v.Filters != nil {
		f = *v.Filters
	}
	if v.Sort != nil {
		sortCfg = *v.Sort
	}
	if v.UserLocation != nil {
		location = *v.UserLocation
	}

	jobs := filters.Sort(filters.Filter(sess.Jobs, f, location), sortCfg, location)

	resp := &models.JobListResponse{
		Jobs:              jobs,
		Total:             len(jobs),
		Available:         len(sess.Jobs),
		Categories:        filters.UniqueCategories(sess.Jobs),
		ActiveFilterCount: filters.ActiveFilterCount(f),
		Filters:           f,
		Sort:              sortCfg,
		Warning:           sess.Warning,
	}
	if bounds, ok := filters.SalaryBounds(sess.Jobs); ok {
		resp.SalaryBounds = &bounds
	}
	return resp, nil
}

// UpdateFilters replaces the session's filters
func (s *Service) UpdateFilters(ctx context.Context, id string, f models.JobFilters) (*Session, error) {
	return s.store.Update(ctx, id, func(sess *Session) error {
		sess.Filters = f
		return nil
	})
}

// UpdateSort replaces the session's sort configuration and, when location is
// non-empty, the location used for proximity sorting.
func (s *Service) UpdateSort(ctx context.Context, id string, cfg models.SortConfig, location string) (*Session, error) {
	return s.store.Update(ctx, id, func(sess *Session) error {
		sess.Sort = cfg
		if location != "" {
			sess.UserLocation = location
		}
		return nil
	})
}

// ApplyPreset replaces the session's filters with a preset
func (s *Service) ApplyPreset(ctx context.Context, id, presetID string) (*Session, error) {
	preset, ok := filters.PresetByID(presetID)
	if !ok {
		return nil, ErrPresetNotFound
	}
	return s.store.Update(ctx, id, func(sess *Session) error {
		sess.Filters = filters.ApplyPreset(preset, filters.UniqueCategories(sess.Jobs))
		return nil
	})
}

// SelectJob selects the job at index in the session's current filtered and
// sorted list and starts plan generation in the background. A newer
// selection supersedes any plan still being generated.
func (s *Service) SelectJob(ctx context.Context, id string, index int) (*Session, error) {
	processID := utils.GeneratePlanProcessID()
	tag := uuid.NewString()

	sess, err := s.store.Update(ctx, id, func(sess *Session) error {
		view := filters.Sort(filters.Filter(sess.Jobs, sess.Filters, sess.UserLocation), sess.Sort, sess.UserLocation)
		if index < 0 || index >= len(view) {
			return ErrInvalidIndex
		}
		job := view[index]
		sess.SelectedJob = &job
		sess.Plan = nil
		sess.PlanSource = ""
		sess.PlanWarning = ""
		sess.PlanRequestTag = tag
		sess.PlanProcessID = processID
		return nil
	})
	if err != nil {
		return nil, err
	}

	job, profile := *sess.SelectedJob, sess.Profile
	metadata := map[string]interface{}{
		types.FieldSessionID: id,
		"job_title":          job.Title,
		"company":            job.Company,
	}

	err = s.tasks.Submit(ctx, processID, background.TaskTypePlan, metadata, func(taskCtx context.Context) (interface{}, error) {
		return s.generatePlan(taskCtx, id, tag, job, profile)
	})
	if err != nil {
		// No worker will answer this tag, so settle the plan here.
		s.logger.Warn("Plan task rejected, using fallback plan", map[string]interface{}{
			types.FieldSessionID: id,
			types.FieldError:     err.Error(),
		})
		settle := applyPlan(tag, fallbackResult(job, profile))
		settled, err := s.store.Update(ctx, id, func(sess *Session) error {
			if err := settle(sess); err != nil {
				return err
			}
			sess.PlanProcessID = ""
			return nil
		})
		if errors.Is(err, errStaleTag) {
			return s.store.Get(ctx, id)
		}
		return settled, err
	}

	s.logger.Info("Job selected", map[string]interface{}{
		types.FieldSessionID: id,
		types.FieldProcessID: processID,
		"job_title":          job.Title,
	})
	return sess, nil
}

// generatePlan asks the generator for a plan and writes it back if the
// request is still the latest one for the session. A panicking generator
// settles the fallback plan like a failed one.
func (s *Service) generatePlan(ctx context.Context, id, tag string, job models.JobMatch, profile models.UserProfile) (data *models.AsyncPlanCompletionData, err error) {
	logger := s.logger.WithField(types.FieldSessionID, id)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Plan generation panicked, using fallback plan", map[string]interface{}{
				"panic": fmt.Sprint(r),
			})
			data, err = s.storePlan(ctx, logger, id, tag, job, fallbackResult(job, profile))
		}
	}()

	result := PlanResult{Source: models.PlanSourceGenerated}
	text, err := s.generate(ctx, job, profile)
	if err != nil {
		logger.Warn("Plan generation failed, using fallback plan", map[string]interface{}{
			types.FieldError: err.Error(),
		})
		result = fallbackResult(job, profile)
	} else {
		result.Plan = plan.Parse(text)
	}

	return s.storePlan(ctx, logger, id, tag, job, result)
}

func (s *Service) generate(ctx context.Context, job models.JobMatch, profile models.UserProfile) (string, error) {
	prompt, err := plan.BuildPrompt(job, profile)
	if err != nil {
		return "", err
	}
	return s.generator.GenerateText(ctx, prompt)
}

// storePlan writes result under tag, retrying transient store failures
func (s *Service) storePlan(ctx context.Context, logger types.Logger, id, tag string, job models.JobMatch, result PlanResult) (*models.AsyncPlanCompletionData, error) {
	// The task deadline may have passed during generation; the write must still land.
	writeCtx := context.WithoutCancel(ctx)

	written, err := backoff.Retry(writeCtx, func() (bool, error) {
		ok, err := s.store.CompareAndSetPlan(writeCtx, id, tag, result)
		if errors.Is(err, ErrSessionNotFound) {
			return false, backoff.Permanent(err)
		}
		return ok, err
	},
		backoff.WithBackOff(newPlanWriteBackOff()),
		backoff.WithMaxTries(planWriteTries),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store plan: %w", err)
	}
	if !written {
		logger.Info("Discarding stale plan result", map[string]interface{}{
			"job_title": job.Title,
		})
	}

	return &models.AsyncPlanCompletionData{
		SessionID: id,
		Plan:      &result.Plan,
		Source:    result.Source,
		Stale:     !written,
	}, nil
}

func fallbackResult(job models.JobMatch, profile models.UserProfile) PlanResult {
	return PlanResult{
		Plan:    plan.BuildFallback(job, profile),
		Source:  models.PlanSourceFallback,
		Warning: WarningPlanFailed,
	}
}

func newPlanWriteBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = planWriteInterval
	return bo
}

// GetPlan returns the plan for the selected job, or a pending response while
// it is being generated. When the plan task has failed or is gone without
// writing a plan, the fallback plan is settled and returned instead.
func (s *Service) GetPlan(ctx context.Context, id string) (*models.PlanResponse, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.SelectedJob == nil {
		return nil, ErrNoSelection
	}

	if sess.PlanPending() && s.planTaskLost(ctx, sess) {
		sess = s.settleFallback(ctx, sess)
	}

	return &models.PlanResponse{
		SessionID: sess.ID,
		Job:       sess.SelectedJob,
		Plan:      sess.Plan,
		Source:    sess.PlanSource,
		Pending:   sess.PlanPending(),
		ProcessID: sess.PlanProcessID,
		Warning:   sess.PlanWarning,
	}, nil
}

// planTaskLost reports whether the session's plan task ended without a
// usable result. A missing task only counts once the task timeout has passed
// since the selection, since SelectJob records the process ID before submitting.
func (s *Service) planTaskLost(ctx context.Context, sess *Session) bool {
	if sess.PlanProcessID == "" {
		return false
	}
	status, err := s.tasks.GetTaskStatus(ctx, sess.PlanProcessID)
	if errors.Is(err, background.ErrTaskNotFound) {
		return time.Since(sess.UpdatedAt) > s.config.BackgroundTasks.TaskTimeout
	}
	return err == nil && status == background.TaskStatusFailure
}

// settleFallback stores the fallback plan for the session's current request.
// If the store refuses the write the fallback is still returned to the caller.
func (s *Service) settleFallback(ctx context.Context, sess *Session) *Session {
	result := fallbackResult(*sess.SelectedJob, sess.Profile)
	logger := s.logger.WithField(types.FieldSessionID, sess.ID)

	written, err := s.store.CompareAndSetPlan(ctx, sess.ID, sess.PlanRequestTag, result)
	if err == nil && !written {
		// A newer selection moved on; report its state.
		if latest, err := s.store.Get(ctx, sess.ID); err == nil {
			return latest
		}
	}
	if err != nil {
		logger.Error("Failed to store fallback plan", map[string]interface{}{
			types.FieldError:     err.Error(),
			types.FieldProcessID: sess.PlanProcessID,
		})
	} else {
		logger.Warn("Plan task ended without a plan, using fallback plan", map[string]interface{}{
			types.FieldProcessID: sess.PlanProcessID,
		})
	}

	settled := sess.Clone()
	if err := applyPlan(sess.PlanRequestTag, result)(settled); err != nil {
		return sess
	}
	return settled
}

// ExplainMatch scores a single posting and returns the sub-scores
func (s *Service) ExplainMatch(job models.ExplainJob, profile *models.UserProfile) models.MatchExplanation {
	b := s.scorer.Breakdown(matching.Posting{
		Title:        job.Title,
		Location:     job.Location,
		Description:  jobsearch.StripHTML(job.Description),
		Category:     job.Category,
		ContractTime: job.ContractTime,
		ContractType: job.ContractType,
	}, profile)

	return models.MatchExplanation{
		RoleMatch:     b.Role,
		LocationMatch: b.Location,
		SkillsMatch:   b.Skills,
		BenefitsMatch: b.Benefits,
		Score:         b.Score,
		Random:        b.Random,
	}
}

// DeleteSession removes a session
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Sweep removes sessions idle for longer than sessions.ttl
func (s *Service) Sweep(ctx context.Context) (int, error) {
	removed, err := s.store.Cleanup(ctx, s.config.Sessions.TTL)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("Expired sessions removed", map[string]interface{}{
			"removed": removed,
		})
	}
	return removed, nil
}

// Count returns the number of live sessions
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}
