package plan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"wikijobs/pkg/models"
)

const wellFormed = `SKILLS GAP:
You have strong delivery experience but limited exposure to modern agile tooling. Stakeholder reporting has moved to live dashboards.

REQUIRED SKILLS:
- Agile delivery
- Jira
- Risk management
- Stakeholder communication
- Budget tracking

QUICK WINS (Next 2 weeks):
- Refresh CV
- Complete a Jira tutorial
- Message three former colleagues

3-MONTH PLAN:
- Earn PRINCE2 Foundation
- Lead a volunteer project
- Apply to 10 roles

RESOURCES:
- Course 1: Agile Project Management (Coursera)
- Course 2: Jira Fundamentals (Atlassian University)
- Certification: PRINCE2 Foundation
- Network: Join the APM local branch

TIME TO READY: 4 months`

func TestParseWellFormed(t *testing.T) {
	got := Parse(wellFormed)

	assert.Equal(t, models.SkillGapPlan{
		GapAnalysis:    "You have strong delivery experience but limited exposure to modern agile tooling. Stakeholder reporting has moved to live dashboards.",
		RequiredSkills: []string{"Agile delivery", "Jira", "Risk management", "Stakeholder communication", "Budget tracking"},
		ActionPlan: models.ActionPlan{
			Immediate: []string{"Refresh CV", "Complete a Jira tutorial", "Message three former colleagues"},
			ShortTerm: []string{"Earn PRINCE2 Foundation", "Lead a volunteer project", "Apply to 10 roles"},
		},
		Resources: models.PlanResources{
			Courses:       []string{"Agile Project Management (Coursera)", "Jira Fundamentals (Atlassian University)"},
			Certification: "PRINCE2 Foundation",
			Networking:    "Join the APM local branch",
		},
		EstimatedTimeframe: 4,
	}, got)
}

func TestParseEmptyInputGivesDefaults(t *testing.T) {
	for _, raw := range []string{"", "   ", "no structure at all", "SKILLS GAP:"} {
		got := Parse(raw)
		assert.Equal(t, DefaultGapAnalysis, got.GapAnalysis, raw)
		assert.Equal(t, DefaultRequiredSkills, got.RequiredSkills, raw)
		assert.Equal(t, DefaultImmediate, got.ActionPlan.Immediate, raw)
		assert.Equal(t, DefaultShortTerm, got.ActionPlan.ShortTerm, raw)
		assert.Equal(t, DefaultCourses, got.Resources.Courses, raw)
		assert.Equal(t, DefaultCertification, got.Resources.Certification, raw)
		assert.Equal(t, DefaultNetworking, got.Resources.Networking, raw)
		assert.Equal(t, DefaultTimeframeMonths, got.EstimatedTimeframe, raw)
	}
}

func TestParseMissingTimeToReady(t *testing.T) {
	raw := wellFormed[:strings.Index(wellFormed, "TIME TO READY")]
	assert.Equal(t, 3, Parse(raw).EstimatedTimeframe)
}

func TestParseSingleRequiredSkillFallsBack(t *testing.T) {
	raw := "SKILLS GAP:\nSome gap.\n\nREQUIRED SKILLS:\n- Excel\n\nQUICK WINS:\n- a\n- b\n"
	got := Parse(raw)
	assert.Equal(t, []string{"No skills provided"}, got.RequiredSkills)
	assert.Equal(t, []string{"a", "b"}, got.ActionPlan.Immediate)
	assert.Equal(t, "Some gap.", got.GapAnalysis)
}

func TestParseFloors(t *testing.T) {
	raw := `QUICK WINS (Next 2 weeks):
- only one
3-MONTH PLAN:
- first
-
- second
RESOURCES:
- Course 1: Only course
- Certification:
TIME TO READY: 0 months`

	got := Parse(raw)
	assert.Equal(t, DefaultImmediate, got.ActionPlan.Immediate)
	assert.Equal(t, []string{"first", "second"}, got.ActionPlan.ShortTerm)
	assert.Equal(t, DefaultCourses, got.Resources.Courses)
	assert.Equal(t, DefaultCertification, got.Resources.Certification)
	assert.Equal(t, DefaultTimeframeMonths, got.EstimatedTimeframe)
}

func TestSectionStopsAtMultiWordLabels(t *testing.T) {
	assert.Equal(t, "Gap text.", Section("SKILLS GAP: Gap text.\nREQUIRED SKILLS:\n- x", LabelSkillsGap))
	assert.Equal(t, "- a", Section("QUICK WINS (Next 2 weeks):\n- a\n3-MONTH PLAN:\n- b", LabelQuickWins))
	assert.Equal(t, "- b", Section("QUICK WINS (Next 2 weeks):\n- a\n3-MONTH PLAN:\n- b", LabelThreeMonthPlan))
}

func TestSectionLabelIsCaseInsensitiveAndTolerant(t *testing.T) {
	raw := "## Skills Gap:\nLower-case heading.\n\n**REQUIRED SKILLS:**\n- a\n- b\n- c"
	assert.Equal(t, "Lower-case heading.", Section(raw, LabelSkillsGap))
	assert.Equal(t, []string{"a", "b", "c"}, Bullets(Section(raw, LabelRequiredSkills)))
	assert.Equal(t, "", Section(raw, LabelResources))
}

func TestParseNumberedLabels(t *testing.T) {
	raw := "1. SKILLS GAP: Needs current tooling.\n\n2. REQUIRED SKILLS:\n- Jira\n- Agile\n- Budgeting\n\n6. TIME TO READY: 5 months"

	got := Parse(raw)
	assert.Equal(t, "Needs current tooling.", got.GapAnalysis)
	assert.Equal(t, []string{"Jira", "Agile", "Budgeting"}, got.RequiredSkills)
	assert.Equal(t, 5, got.EstimatedTimeframe)
}

func TestParseInlineLabels(t *testing.T) {
	raw := "Here is the plan. SKILLS GAP: Needs current tooling. REQUIRED SKILLS:\n- Jira\n- Agile\n- Budgeting\nTIME TO READY: 2 months"

	got := Parse(raw)
	assert.Equal(t, "Needs current tooling.", got.GapAnalysis)
	assert.Equal(t, []string{"Jira", "Agile", "Budgeting"}, got.RequiredSkills)
	assert.Equal(t, 2, got.EstimatedTimeframe)
}

func TestSectionIgnoresLowercaseLabelWordsInsideBody(t *testing.T) {
	raw := "QUICK WINS:\n- Review resources: the job centre list\n- Call a mentor\n3-MONTH PLAN:\n- x"
	assert.Equal(t, []string{"Review resources: the job centre list", "Call a mentor"}, Bullets(Section(raw, LabelQuickWins)))

	raw += "\nRESOURCES:\n- Course 1: A\n- Course 2: B"
	assert.Equal(t, "- Course 1: A\n- Course 2: B", Section(raw, LabelResources))
}

func TestSectionDoesNotStopAtResourceLines(t *testing.T) {
	raw := "RESOURCES:\n- Course 1: A\n- Course 2: B\n- Certification: C\n- Network: D\nTIME TO READY: 2 months"
	courses, cert, network := resources(Section(raw, LabelResources))
	assert.Equal(t, []string{"A", "B"}, courses)
	assert.Equal(t, "C", cert)
	assert.Equal(t, "D", network)
}

func TestBullets(t *testing.T) {
	text := "intro line\n  - padded item  \n-tight\n- \n* star item\n-   spaced"
	assert.Equal(t, []string{"padded item", "tight", "spaced"}, Bullets(text))
	assert.Nil(t, Bullets(""))
}

func TestTimeframe(t *testing.T) {
	tests := map[string]int{
		"4 months":   4,
		"[4] months": 4,
		"2-3 months": 2,
		"about 6":    6,
		"":           3,
		"soon":       3,
		"-2 months":  3,
		"0":          3,
	}
	for in, want := range tests {
		assert.Equal(t, want, Timeframe(in), in)
	}
}

func TestParseNeverPanics(t *testing.T) {
	inputs := []string{
		"RESOURCES:",
		"TIME TO READY:",
		":::\n- -\n--",
		"SKILLS GAP:\r\nwindows line endings\r\nREQUIRED SKILLS:\r\n- a\r\n- b\r\n- c\r\n",
		strings.Repeat("QUICK WINS:\n- x\n", 50),
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { Parse(in) }, in)
	}
	got := Parse(inputs[3])
	assert.Equal(t, "windows line endings", got.GapAnalysis)
	assert.Equal(t, []string{"a", "b", "c"}, got.RequiredSkills)
}
