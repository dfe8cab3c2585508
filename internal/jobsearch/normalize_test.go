package jobsearch

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikijobs/internal/matching"
	"wikijobs/pkg/models"
)

func ptr(f float64) *float64 { return &f }

func TestFormatSalary(t *testing.T) {
	tests := []struct {
		name      string
		min, max  *float64
		predicted bool
		want      string
	}{
		{name: "range", min: ptr(45000), max: ptr(65000), want: "£45,000 - £65,000"},
		{name: "rounded", min: ptr(31234.6), max: ptr(39999.4), want: "£31,235 - £39,999"},
		{name: "missing max", min: ptr(28000), want: "£28,000 - £0"},
		{name: "predicted only", predicted: true, want: "Estimated: £0"},
		{name: "zero min predicted", min: ptr(0), max: ptr(50000), predicted: true, want: "Estimated: £0"},
		{name: "nothing", want: SalaryNotSpecified},
		{name: "millions", min: ptr(1250000), max: ptr(1500000), want: "£1,250,000 - £1,500,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSalary(tt.min, tt.max, tt.predicted))
		})
	}
}

func TestFormatPostedDate(t *testing.T) {
	assert.Equal(t, "15/01/2024", FormatPostedDate("2024-01-15T10:30:00Z"))
	assert.Equal(t, "03/02/2024", FormatPostedDate("2024-02-03"))
	assert.Equal(t, "yesterday", FormatPostedDate("yesterday"))

	parsed, ok := ParsePostedDate("15/01/2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), parsed)

	_, ok = ParsePostedDate("not a date")
	assert.False(t, ok)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Lead a team of five. Agile preferred.", StripHTML("<p>Lead a team of <b>five</b>.</p>\n<p>Agile preferred.</p>"))
	assert.Equal(t, "plain text stays", StripHTML("  plain   text\nstays "))
	assert.Equal(t, "Fish & Chips", StripHTML("Fish &amp; Chips"))
}

func TestFlexBool(t *testing.T) {
	tests := map[string]bool{
		`true`: true, `false`: false, `"1"`: true, `"0"`: false, `1`: true, `0`: false, `null`: false, `"yes"`: false,
	}
	for raw, want := range tests {
		var v struct {
			B FlexBool `json:"b"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"b":`+raw+`}`), &v), raw)
		assert.Equal(t, want, bool(v.B), raw)
	}
}

func TestNormalize(t *testing.T) {
	r := Result{
		Title:        "Project Manager",
		Company:      Named{DisplayName: "Acme"},
		Location:     Location{DisplayName: "London"},
		SalaryMin:    ptr(45000),
		SalaryMax:    ptr(65000),
		ContractTime: "full_time",
		ContractType: "contract",
		Category:     Category{Label: "IT Jobs"},
		Description:  "<strong>Great</strong> role",
		RedirectURL:  "https://example.com/job/1",
		Created:      "2024-03-01T09:00:00Z",
	}

	job := Normalize(r, 77)

	assert.Equal(t, models.JobMatch{
		Title:      "Project Manager",
		Company:    "Acme",
		Location:   "London",
		Salary:     "£45,000 - £65,000",
		MatchScore: 77,
		ReturnFriendly: models.ReturnFriendly{
			Mentorship:    true,
			FlexibleHours: false,
			ReturnProgram: true,
		},
		Requirements: []string{"IT Jobs"},
		Description:  "Great role",
		ApplyURL:     "https://example.com/job/1",
		PostedDate:   "01/03/2024",
		JobType:      "full_time",
		Category:     "IT Jobs",
	}, job)
}

func TestNormalizeMissingContractTime(t *testing.T) {
	job := Normalize(Result{Title: "x"}, 10)
	assert.Equal(t, JobTypeNotSpecified, job.JobType)
	assert.Equal(t, SalaryNotSpecified, job.Salary)
	assert.True(t, job.ReturnFriendly.ReturnProgram)
}

func TestNormalizeBatchOrdersByScore(t *testing.T) {
	profile := &models.UserProfile{
		Experience:  models.ExperienceInfo{KeySkills: "agile"},
		Preferences: models.Preferences{DesiredRole: "Project Manager", Location: "London"},
	}
	results := []Result{
		{Title: "Warehouse Operative", Location: Location{DisplayName: "Leeds"}},
		{Title: "Project Manager", Location: Location{DisplayName: "London"}, Description: "agile", ContractTime: "full_time", ContractType: "permanent"},
		{Title: "Warehouse Operative", Location: Location{DisplayName: "Leeds"}, RedirectURL: "second"},
	}

	jobs := NormalizeBatch(results, profile, matching.NewScorer())

	require.Len(t, jobs, 3)
	assert.Equal(t, "Project Manager", jobs[0].Title)
	assert.Equal(t, 100, jobs[0].MatchScore)
	for i := 1; i < len(jobs); i++ {
		assert.GreaterOrEqual(t, jobs[i-1].MatchScore, jobs[i].MatchScore)
	}
	// equal scores keep input order
	assert.Equal(t, "", jobs[1].ApplyURL)
	assert.Equal(t, "second", jobs[2].ApplyURL)
}

func TestNormalizeBatchMatchesNormalize(t *testing.T) {
	profile := &models.UserProfile{
		Experience:  models.ExperienceInfo{KeySkills: "agile, reporting"},
		Preferences: models.Preferences{DesiredRole: "Analyst", Location: "Leeds"},
	}
	r := Result{
		Title:        "Data Analyst",
		Location:     Location{DisplayName: "Leeds"},
		Description:  "<p>Agile <b>reporting</b> team</p>",
		Category:     Category{Label: "IT Jobs"},
		ContractTime: "part_time",
		Created:      "2024-05-01T10:00:00Z",
	}
	scorer := matching.NewScorer()

	jobs := NormalizeBatch([]Result{r}, profile, scorer)

	require.Len(t, jobs, 1)
	assert.Equal(t, Normalize(r, scorer.Score(r.Posting(), profile)), jobs[0])
	assert.Equal(t, "Agile reporting team", jobs[0].Description)
}

func TestSampleJobs(t *testing.T) {
	jobs := SampleJobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "Return to Work Program - Project Manager", jobs[0].Title)
	assert.Equal(t, 85, jobs[0].MatchScore)
	_, ok := ParsePostedDate(jobs[0].PostedDate)
	assert.True(t, ok)
}
