package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wikijobs/pkg/models"
)

func TestSortByMatchScore(t *testing.T) {
	jobs := fixtureJobs()

	desc := Sort(jobs, models.SortConfig{Field: models.SortByMatchScore, Direction: models.SortDesc}, "")
	for i := 1; i < len(desc); i++ {
		assert.GreaterOrEqual(t, desc[i-1].MatchScore, desc[i].MatchScore)
	}
	assert.Equal(t, []string{"Nurse", "Project Manager", "Designer", "Analyst"}, titles(desc))

	asc := Sort(jobs, models.SortConfig{Field: models.SortByMatchScore, Direction: models.SortAsc}, "")
	reversed := make([]models.JobMatch, len(asc))
	for i := range asc {
		reversed[len(asc)-1-i] = asc[i]
	}
	assert.Equal(t, desc, reversed)

	assert.Equal(t, fixtureJobs(), jobs, "input must not be mutated")
}

func TestSortDefaultPutsHigherScoreFirst(t *testing.T) {
	jobs := []models.JobMatch{{Title: "low", MatchScore: 70}, {Title: "high", MatchScore: 90}}
	assert.Equal(t, []string{"high", "low"}, titles(Sort(jobs, models.DefaultSortConfig(), "")))
}

func TestSortByPostedDate(t *testing.T) {
	asc := Sort(fixtureJobs(), models.SortConfig{Field: models.SortByPostedDate, Direction: models.SortAsc}, "")
	// unparsable dates sort as the earliest
	assert.Equal(t, []string{"Designer", "Nurse", "Project Manager", "Analyst"}, titles(asc))
}

func TestSortByLocationProximity(t *testing.T) {
	asc := Sort(fixtureJobs(), models.SortConfig{Field: models.SortByLocationProximity, Direction: models.SortAsc}, "LONDON, UK")
	assert.Equal(t, []string{"Project Manager", "Nurse", "Analyst", "Designer"}, titles(asc))

	desc := Sort(fixtureJobs(), models.SortConfig{Field: models.SortByLocationProximity, Direction: models.SortDesc}, "London, UK")
	assert.Equal(t, []string{"Analyst", "Designer", "Project Manager", "Nurse"}, titles(desc))
}

func TestSortBySalary(t *testing.T) {
	desc := Sort(fixtureJobs(), models.SortConfig{Field: models.SortBySalary, Direction: models.SortDesc}, "")
	assert.Equal(t, []string{"Designer", "Project Manager", "Analyst", "Nurse"}, titles(desc))
}

func TestSortIsStableForTies(t *testing.T) {
	jobs := []models.JobMatch{
		{Title: "a", MatchScore: 50},
		{Title: "b", MatchScore: 80},
		{Title: "c", MatchScore: 50},
		{Title: "d", MatchScore: 80},
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, titles(Sort(jobs, models.SortConfig{Field: models.SortByMatchScore, Direction: models.SortDesc}, "")))
	assert.Equal(t, []string{"a", "c", "b", "d"}, titles(Sort(jobs, models.SortConfig{Field: models.SortByMatchScore, Direction: models.SortAsc}, "")))
}

func TestSortUnknownFieldKeepsOrder(t *testing.T) {
	jobs := fixtureJobs()
	got := Sort(jobs, models.SortConfig{Field: "title", Direction: models.SortDesc}, "")
	assert.Equal(t, jobs, got)
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 0, Distance("London", "london"))
	assert.Equal(t, 1, Distance("London", "Londonderry"))
}
