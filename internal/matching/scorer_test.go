package matching

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikijobs/pkg/models"
)

func testProfile(role, location, skills string) *models.UserProfile {
	return &models.UserProfile{
		Personal:   models.PersonalInfo{YearsOutOfWork: "3"},
		Experience: models.ExperienceInfo{LastRole: "Team Lead", Industry: "Tech", KeySkills: skills},
		Preferences: models.Preferences{
			DesiredRole: role,
			WorkType:    models.WorkTypeHybrid,
			Location:    location,
			Country:     "gb",
		},
	}
}

func TestSkillsMatch(t *testing.T) {
	tests := []struct {
		name        string
		description string
		category    string
		skills      string
		want        float64
	}{
		{
			name:        "one of two skills in description",
			description: "We work in an Agile environment",
			category:    "IT Jobs",
			skills:      "Project Management, Agile",
			want:        0.5,
		},
		{
			name:        "match in category",
			description: "Nothing relevant",
			category:    "Accounting & Finance Jobs",
			skills:      "finance",
			want:        1,
		},
		{
			name:   "no skills",
			skills: "",
			want:   0,
		},
		{
			name:   "only separators",
			skills: " , ,",
			want:   0,
		},
		{
			name:        "substring is not a word match",
			description: "Excellent communications team",
			skills:      "communication",
			want:        0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SkillsMatch(tt.description, tt.category, tt.skills), 1e-9)
		})
	}
}

func TestScorerBreakdown(t *testing.T) {
	s := NewScorer()
	p := Posting{
		Title:        "Project Manager",
		Location:     "London",
		Description:  "Lead delivery of client projects",
		Category:     "IT Jobs",
		ContractTime: "full_time",
		ContractType: "permanent",
	}

	b := s.Breakdown(p, testProfile("Project Manager", "London", "python"))

	assert.False(t, b.Random)
	assert.Equal(t, 1.0, b.Role)
	assert.Equal(t, 1.0, b.Location)
	assert.Equal(t, 0.0, b.Skills)
	assert.InDelta(t, 1.0, b.Benefits, 1e-9)
	assert.Equal(t, 75, b.Score)
}

func TestScorerEmptyPreferredLocationCountsAsMatch(t *testing.T) {
	s := NewScorer()
	b := s.Breakdown(Posting{Title: "Nurse", Location: "Leeds"}, testProfile("Nurse", "", ""))
	assert.Equal(t, 1.0, b.Location)
}

func TestScorerBenefitsFromContractData(t *testing.T) {
	s := NewScorer()
	b := s.Breakdown(Posting{Title: "x", ContractTime: "part_time", ContractType: "contract"}, testProfile("y", "", ""))
	assert.InDelta(t, 1.0/3.0, b.Benefits, 1e-9)
}

func TestScoreIsBoundedAndDeterministic(t *testing.T) {
	s := NewScorer()
	postings := []Posting{
		{},
		{Title: "Project Manager", Location: "London, UK", Description: "agile scrum", Category: "IT Jobs", ContractTime: "full_time", ContractType: "permanent"},
		{Title: "Warehouse Operative", Location: "Glasgow", ContractTime: "part_time"},
	}
	profiles := []*models.UserProfile{
		testProfile("Project Manager", "London", "Agile, Scrum"),
		testProfile("", "", ""),
		testProfile("Operative", "Glasgow", "forklift"),
	}

	for _, p := range postings {
		for _, profile := range profiles {
			first := s.Score(p, profile)
			assert.GreaterOrEqual(t, first, 0)
			assert.LessOrEqual(t, first, 100)
			assert.Equal(t, first, s.Score(p, profile))
		}
	}
}

func TestScorerWithoutProfileIsRandomInRange(t *testing.T) {
	s := NewScorer(WithRandSource(rand.NewPCG(1, 2)))

	seen := make(map[int]bool)
	for i := 0; i < 500; i++ {
		b := s.Breakdown(Posting{Title: "anything"}, nil)
		require.True(t, b.Random)
		require.GreaterOrEqual(t, b.Score, RandomScoreMin)
		require.LessOrEqual(t, b.Score, RandomScoreMax)
		seen[b.Score] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestScorerCustomWeights(t *testing.T) {
	s := NewScorer(WithWeights(Weights{Role: 1}))
	assert.Equal(t, 100, s.Score(Posting{Title: "Chef"}, testProfile("chef", "Paris", "")))
	assert.Equal(t, 0, s.Score(Posting{Title: "Chef"}, testProfile("pilot", "Paris", "")))
}
