package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikijobs/internal/background"
	"wikijobs/internal/config"
	"wikijobs/internal/filters"
	"wikijobs/internal/jobsearch"
	"wikijobs/internal/matching"
	"wikijobs/pkg/models"
	"wikijobs/pkg/utils"
)

type fakeSearcher struct {
	results []jobsearch.Result
	err     error
	queries []jobsearch.Query
}

func (f *fakeSearcher) Search(ctx context.Context, q jobsearch.Query) ([]jobsearch.Result, error) {
	f.queries = append(f.queries, q)
	return f.results, f.err
}

type fakeGenerator struct {
	fn func(ctx context.Context, prompt string) (string, error)
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f.fn(ctx, prompt)
}

func testProfile() models.UserProfile {
	return models.UserProfile{
		Personal: models.PersonalInfo{
			Name:           "Sam",
			Location:       "London",
			YearsOutOfWork: "3",
		},
		Experience: models.ExperienceInfo{
			LastRole:  "Project Manager",
			Industry:  "Technology",
			KeySkills: "planning, stakeholder management",
		},
		Preferences: models.Preferences{
			DesiredRole: "Project Manager",
			WorkType:    models.WorkTypeHybrid,
			Location:    "London",
			Country:     "GB",
		},
	}
}

func testResults() []jobsearch.Result {
	salary := func(v float64) *float64 { return &v }
	return []jobsearch.Result{
		{
			Title:        "Data Analyst",
			Company:      jobsearch.Named{DisplayName: "Numbers Ltd"},
			Location:     jobsearch.Location{DisplayName: "London"},
			SalaryMin:    salary(30000),
			SalaryMax:    salary(40000),
			ContractTime: "part_time",
			Category:     jobsearch.Category{Label: "IT Jobs"},
			Description:  "Reporting and dashboards",
			Created:      "2024-05-01T10:00:00Z",
		},
		{
			Title:        "Project Manager",
			Company:      jobsearch.Named{DisplayName: "Build Co"},
			Location:     jobsearch.Location{DisplayName: "London"},
			SalaryMin:    salary(50000),
			SalaryMax:    salary(60000),
			ContractTime: "full_time",
			ContractType: "permanent",
			Category:     jobsearch.Category{Label: "Project Management Jobs"},
			Description:  "Planning and stakeholder management",
			Created:      "2024-05-02T10:00:00Z",
		},
	}
}

type fixture struct {
	svc       *Service
	store     *InMemoryStore
	searcher  *fakeSearcher
	generator *fakeGenerator
	tasks     *background.TaskManagerImpl
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.BackgroundTasks.MaxConcurrentTasks = 2

	tasks := background.NewTaskManager(cfg)
	require.NoError(t, tasks.Start(context.Background()))
	t.Cleanup(func() { _ = tasks.Stop(context.Background()) })

	f := &fixture{
		store:    NewInMemoryStore(),
		searcher: &fakeSearcher{results: testResults()},
		generator: &fakeGenerator{fn: func(ctx context.Context, prompt string) (string, error) {
			return "SKILLS GAP:\nGenerated analysis.\n\nTIME TO READY: 4 months", nil
		}},
		tasks: tasks,
	}
	f.svc = NewService(cfg, f.store, f.searcher, f.generator, tasks, matching.NewScorer())
	return f
}

func waitForPlan(t *testing.T, svc *Service, id string) *models.PlanResponse {
	t.Helper()
	var resp *models.PlanResponse
	require.Eventually(t, func() bool {
		r, err := svc.GetPlan(context.Background(), id)
		if err != nil {
			return false
		}
		resp = r
		return !r.Pending
	}, 2*time.Second, 10*time.Millisecond)
	return resp
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t)

	sess, err := f.svc.CreateSession(context.Background(), testProfile())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sess.ID, "ses_"))
	assert.Empty(t, sess.Warning)
	require.Len(t, sess.Jobs, 2)
	assert.Equal(t, "Project Manager", sess.Jobs[0].Title)
	assert.GreaterOrEqual(t, sess.Jobs[0].MatchScore, sess.Jobs[1].MatchScore)
	assert.Equal(t, models.DefaultSortConfig(), sess.Sort)
	assert.Equal(t, "London", sess.UserLocation)

	require.Len(t, f.searcher.queries, 1)
	assert.Equal(t, "gb", f.searcher.queries[0].Country)
	assert.Equal(t, "Project Manager", f.searcher.queries[0].Role)
}

func TestCreateSession_SearchFallback(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		warning string
	}{
		{
			name:    "not configured",
			err:     utils.NewConfigurationError("ADZUNA_APP_ID", "job search credentials not configured"),
			warning: WarningSearchNotConfigured,
		},
		{
			name:    "upstream failure",
			err:     jobsearch.NewJobSearchError("job search failed", 500, nil),
			warning: WarningSearchFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.searcher.err = tt.err

			sess, err := f.svc.CreateSession(context.Background(), testProfile())
			require.NoError(t, err)
			assert.Equal(t, tt.warning, sess.Warning)
			assert.Equal(t, jobsearch.SampleJobs()[0].Title, sess.Jobs[0].Title)
		})
	}
}

func TestCreateSession_SamplesDisabled(t *testing.T) {
	f := newFixture(t)
	f.svc.config.Sessions.UseSamples = false
	f.searcher.err = jobsearch.NewJobSearchError("job search failed", 502, nil)

	_, err := f.svc.CreateSession(context.Background(), testProfile())
	assert.True(t, jobsearch.IsJobSearchError(err))
}

func TestListJobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.CreateSession(ctx, testProfile())
	require.NoError(t, err)

	all, err := f.svc.ListJobs(ctx, sess.ID, View{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)
	assert.Equal(t, 0, all.ActiveFilterCount)
	assert.Equal(t, []string{"Project Management Jobs", "IT Jobs"}, all.Categories)
	require.NotNil(t, all.SalaryBounds)
	assert.Equal(t, models.Bounds{Min: 30000, Max: 50000}, *all.SalaryBounds)

	_, err = f.svc.UpdateFilters(ctx, sess.ID, models.JobFilters{Mentorship: true})
	require.NoError(t, err)

	filtered, err := f.svc.ListJobs(ctx, sess.ID, View{})
	require.NoError(t, err)
	require.Equal(t, 1, filtered.Total)
	assert.Equal(t, "Project Manager", filtered.Jobs[0].Title)
	assert.Equal(t, 2, filtered.Available)
	assert.Equal(t, 1, filtered.ActiveFilterCount)

	salarySort := models.SortConfig{Field: models.SortBySalary, Direction: models.SortAsc}
	override, err := f.svc.ListJobs(ctx, sess.ID, View{Filters: &models.JobFilters{}, Sort: &salarySort})
	require.NoError(t, err)
	require.Equal(t, 2, override.Total)
	assert.Equal(t, "Data Analyst", override.Jobs[0].Title)

	_, err = f.svc.ListJobs(ctx, "ses_missing", View{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestApplyPreset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.CreateSession(ctx, testProfile())
	require.NoError(t, err)

	updated, err := f.svc.ApplyPreset(ctx, sess.ID, filters.PresetReturnProgram)
	require.NoError(t, err)
	assert.True(t, updated.Filters.ReturnToWork)
	assert.True(t, updated.Filters.Mentorship)

	_, err = f.svc.ApplyPreset(ctx, sess.ID, "nope")
	assert.ErrorIs(t, err, ErrPresetNotFound)
}

func TestSelectJob_GeneratesPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.CreateSession(ctx, testProfile())
	require.NoError(t, err)

	_, err = f.svc.GetPlan(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNoSelection)

	selected, err := f.svc.SelectJob(ctx, sess.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Project Manager", selected.SelectedJob.Title)
	assert.True(t, strings.HasPrefix(selected.PlanProcessID, "pln_"))

	resp := waitForPlan(t, f.svc, sess.ID)
	require.NotNil(t, resp.Plan)
	assert.Equal(t, models.PlanSourceGenerated, resp.Source)
	assert.Equal(t, "Generated analysis.", resp.Plan.GapAnalysis)
	assert.Equal(t, 4, resp.Plan.EstimatedTimeframe)
	assert.Empty(t, resp.Warning)
}

func TestSelectJob_InvalidIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.CreateSession(ctx, testProfile())
	require.NoError(t, err)

	_, err = f.svc.SelectJob(ctx, sess.ID, 2)
	assert.ErrorIs(t, err, ErrInvalidIndex)
	_, err = f.svc.SelectJob(ctx, sess.ID, -1)
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestSelectJob_GeneratorFailureUsesFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.generator.fn = func(ctx context.Context, prompt string) (string, error) {
		return "", utils.NewUpstreamError(utils.KindPlanGenerationFailed, "claude", "Claude request failed", 529, errors.New("overloaded"))
	}

	sess, err := f.svc.CreateSession(ctx, testProfile())
	require.NoError(t, err)
	_, err = f.svc.SelectJob(ctx, sess.ID, 1)
	require.NoError(t, err)

	resp := waitForPlan(t, f.svc, sess.ID)
	require.NotNil(t, resp.Plan)
	assert.Equal(t, models.PlanSourceFallback, resp.Source)
	assert.Equal(t, WarningPlanFailed, resp.Warning)
	assert.Equal(t, "Data Analyst", resp.Job.Title)
	assert.LessOrEqual(t, resp.Plan.EstimatedTimeframe, 6)
}

func TestSelectJob_PanickingGeneratorUsesFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.generator.fn = func(ctx context.Context, prompt string) (string, error) {
		panic("provider blew up")
	}

	sess, err := f.svc.CreateSession(ctx, testProfile())
	require.NoError(t, err)
	selected, err := f.svc.SelectJob(ctx, sess.ID, 0)
	require.NoError(t, err)

	resp := waitForPlan(t, f.svc, sess.ID)
	require.NotNil(t, resp.Plan)
	assert.Equal(t, models.PlanSourceFallback, resp.Source)
	assert.Equal(t, WarningPlanFailed, resp.Warning)

	status, err := f.tasks.GetTaskStatus(ctx, selected.PlanProcessID)
	require.NoError(t, err)
	assert.Equal(t, background.TaskStatusSuccess, status)
}

// planWriteFailingStore refuses every plan write
type planWriteFailingStore struct {
	*InMemoryStore
	attempts atomic.Int32
}

func (s *planWriteFailingStore) CompareAndSetPlan(ctx context.Context, id, tag string, result PlanResult) (bool, error) {
	s.attempts.Add(1)
	return false, errors.New("store unavailable")
}

func TestGetPlan_FailedTaskSettlesFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := &planWriteFailingStore{InMemoryStore: f.store}
	svc := NewService(config.Default(), store, f.searcher, f.generator, f.tasks, matching.NewScorer())

	sess, err := svc.CreateSession(ctx, testProfile())
	require.NoError(t, err)
	selected, err := svc.SelectJob(ctx, sess.ID, 0)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		status, err := f.tasks.GetTaskStatus(ctx, selected.PlanProcessID)
		return err == nil && status == background.TaskStatusFailure
	}, 3*time.Second, 10*time.Millisecond)
	assert.EqualValues(t, planWriteTries, store.attempts.Load())

	resp, err := svc.GetPlan(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, resp.Pending)
	require.NotNil(t, resp.Plan)
	assert.Equal(t, models.PlanSourceFallback, resp.Source)
	assert.Equal(t, WarningPlanFailed, resp.Warning)
	assert.Equal(t, "Project Manager", resp.Job.Title)
}

func TestSelectJob_StalePlanDiscarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gate := make(chan struct{})
	var once sync.Once
	release := func() { once.Do(func() { close(gate) }) }
	t.Cleanup(release)

	f.generator.fn = func(ctx context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "Role: Project Manager") {
			<-gate
			return "SKILLS GAP:\nFirst selection.", nil
		}
		return "SKILLS GAP:\nSecond selection.", nil
	}

	sess, err := f.svc.CreateSession(ctx, testProfile())
	require.NoError(t, err)

	first, err := f.svc.SelectJob(ctx, sess.ID, 0)
	require.NoError(t, err)
	second, err := f.svc.SelectJob(ctx, sess.ID, 1)
	require.NoError(t, err)

	resp := waitForPlan(t, f.svc, sess.ID)
	assert.Equal(t, "Second selection.", resp.Plan.GapAnalysis)

	release()

	require.Eventually(t, func() bool {
		status, err := f.tasks.GetTaskStatus(ctx, first.PlanProcessID)
		return err == nil && status == background.TaskStatusSuccess
	}, 2*time.Second, 10*time.Millisecond)

	result, err := f.tasks.GetTaskResult(ctx, first.PlanProcessID)
	require.NoError(t, err)
	data, ok := result.Data.(*models.AsyncPlanCompletionData)
	require.True(t, ok)
	assert.True(t, data.Stale)

	after, err := f.svc.GetPlan(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Second selection.", after.Plan.GapAnalysis)
	assert.Equal(t, second.PlanProcessID, after.ProcessID)
	assert.Equal(t, "Data Analyst", after.Job.Title)
}

func TestSweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.CreateSession(ctx, testProfile())
	require.NoError(t, err)

	removed, err := f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)

	f.svc.config.Sessions.TTL = -time.Second
	removed, err = f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = f.svc.GetSession(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestExplainMatch(t *testing.T) {
	f := newFixture(t)
	profile := testProfile()

	exp := f.svc.ExplainMatch(models.ExplainJob{
		Title:        "Project Manager",
		Location:     "London",
		Description:  "<p>Planning</p>",
		ContractTime: "full_time",
		ContractType: "permanent",
	}, &profile)

	assert.Equal(t, 1.0, exp.RoleMatch)
	assert.Equal(t, 1.0, exp.BenefitsMatch)
	assert.False(t, exp.Random)
	assert.True(t, exp.Score >= 0 && exp.Score <= 100)

	random := f.svc.ExplainMatch(models.ExplainJob{Title: "Anything"}, nil)
	assert.True(t, random.Random)
	assert.True(t, random.Score >= matching.RandomScoreMin && random.Score <= matching.RandomScoreMax)
}
