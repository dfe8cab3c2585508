package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"wikijobs/pkg/models"
)

func testJobs() []models.JobMatch {
	return []models.JobMatch{
		{
			Title:          "Project Manager",
			Company:        "Build Co",
			Location:       "London",
			Salary:         "£50,000 - £60,000",
			MatchScore:     88,
			ReturnFriendly: models.ReturnFriendly{Mentorship: true, ReturnProgram: true},
			JobType:        "Full-time",
			Category:       "Project Management Jobs",
			PostedDate:     "02/05/2024",
			ApplyURL:       "https://example.com/pm",
		},
		{
			Title:      "Data Analyst",
			Company:    "Numbers Ltd",
			MatchScore: 41,
		},
	}
}

func TestWriteXLSX_Matches(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Export{SessionID: "ses_1", Jobs: testJobs()}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{MatchesSheet}, f.GetSheetList())

	rows, err := f.GetRows(MatchesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Title", rows[0][0])
	assert.Equal(t, "Apply URL", rows[0][len(matchColumns)-1])
	assert.Equal(t, "Project Manager", rows[1][0])
	assert.Equal(t, "88", rows[1][4])
	assert.Equal(t, "Yes", rows[1][5])
	assert.Equal(t, "No", rows[1][6])
	assert.Equal(t, "Data Analyst", rows[2][0])
}

func TestWriteXLSX_PlanSheet(t *testing.T) {
	jobs := testJobs()
	plan := &models.SkillGapPlan{
		GapAnalysis:        "Refresh agile practice.",
		RequiredSkills:     []string{"Scrum", "Jira", "Budgeting"},
		EstimatedTimeframe: 4,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Export{SessionID: "ses_1", Jobs: jobs, SelectedJob: &jobs[0], Plan: plan}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{MatchesSheet, PlanSheet}, f.GetSheetList())

	job, err := f.GetCellValue(PlanSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Project Manager at Build Co", job)

	skills, err := f.GetCellValue(PlanSheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Scrum\nJira\nBudgeting", skills)

	timeframe, err := f.GetCellValue(PlanSheet, "B9")
	require.NoError(t, err)
	assert.Equal(t, "4 months", timeframe)
}

func TestExportFileName(t *testing.T) {
	name := Export{SessionID: "ses_abc"}.FileName()
	assert.True(t, strings.HasPrefix(name, "wikijobs-ses_abc-"))
	assert.True(t, strings.HasSuffix(name, ".xlsx"))
}
