package plan

import (
	"fmt"
	"strings"
	"text/template"

	"wikijobs/pkg/models"
)

var promptTemplate = template.Must(template.New("plan").Parse(`As a career advisor, create a return-to-work plan using EXACTLY this format:

SKILLS GAP:
[Write exactly 2 sentences about key skill gaps]

REQUIRED SKILLS:
- [Most important skill]
- [Second most important skill]
- [Third most important skill]
- [Fourth most important skill]
- [Fifth most important skill]

QUICK WINS (Next 2 weeks):
- [Specific action 1]
- [Specific action 2]
- [Specific action 3]

3-MONTH PLAN:
- [Measurable goal 1]
- [Measurable goal 2]
- [Measurable goal 3]

RESOURCES:
- Course 1: [Specific course name and platform]
- Course 2: [Specific course name and platform]
- Certification: [Specific certification name]
- Network: [Specific networking action]

TIME TO READY: [X] months

Context:
Role: {{.Title}}
Company: {{.Company}}
Requirements: {{.Requirements}}
Background: {{.LastRole}}
Skills: {{.Skills}}
Gap: {{.Years}} years

Keep responses concise and specific. No additional text or explanations.
`))

// BuildPrompt renders the generation prompt for one job and profile
func BuildPrompt(job models.JobMatch, profile models.UserProfile) (string, error) {
	var b strings.Builder
	err := promptTemplate.Execute(&b, struct {
		Title, Company, Requirements, LastRole, Skills, Years string
	}{
		Title:        job.Title,
		Company:      job.Company,
		Requirements: strings.Join(job.Requirements, ", "),
		LastRole:     profile.Experience.LastRole,
		Skills:       profile.Experience.KeySkills,
		Years:        profile.Personal.YearsOutOfWork,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render plan prompt: %w", err)
	}
	return b.String(), nil
}
