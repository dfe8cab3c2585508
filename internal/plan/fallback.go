package plan

import (
	"fmt"
	"strings"

	"wikijobs/pkg/models"
	"wikijobs/pkg/utils"
)

// MaxFallbackTimeframe caps the fallback estimate in months
const MaxFallbackTimeframe = 6

// MissingSkills returns the job requirements that none of the profile's
// comma separated skills names, compared case-insensitively
func MissingSkills(job models.JobMatch, profile models.UserProfile) []string {
	have := make(map[string]bool)
	for _, s := range utils.SplitCSV(profile.Experience.KeySkills) {
		have[strings.ToLower(s)] = true
	}

	var missing []string
	for _, req := range job.Requirements {
		req = strings.TrimSpace(req)
		if req != "" && !have[strings.ToLower(req)] {
			missing = append(missing, req)
		}
	}
	return missing
}

// FallbackTimeframe is clamp(years out of work, 2, 4) plus one month per two
// missing skills, capped at MaxFallbackTimeframe
func FallbackTimeframe(yearsOutOfWork string, missing int) int {
	years, _ := utils.LeadingInt(yearsOutOfWork)
	base := min(max(years, 2), 4)
	return min(MaxFallbackTimeframe, base+(missing+1)/2)
}

// BuildFallback derives a plan without any generator call. The result
// depends only on its inputs.
func BuildFallback(job models.JobMatch, profile models.UserProfile) models.SkillGapPlan {
	missing := MissingSkills(job, profile)
	category := utils.GetStringOrDefault(job.Category, "this field")
	lastRole := utils.GetStringOrDefault(profile.Experience.LastRole, "your previous role")
	years := utils.GetStringOrDefault(profile.Personal.YearsOutOfWork, "some")

	gap := fmt.Sprintf("Moving from %s into %s after %s years away means refreshing current %s practice.", lastRole, job.Title, years, category)
	if len(missing) > 0 {
		gap += fmt.Sprintf(" The main gaps against this posting are %s.", strings.Join(missing, ", "))
	} else {
		gap += " Your listed skills already cover the stated requirements, so focus on recent tools and ways of working."
	}

	required := append([]string{}, missing...)
	for _, extra := range []string{category + " fundamentals", "Up-to-date industry tools", "Communication and stakeholder management"} {
		if len(required) >= minRequiredSkills {
			break
		}
		required = append(required, extra)
	}

	company := utils.GetStringOrDefault(job.Company, "the employer")
	immediate := []string{
		fmt.Sprintf("Update your CV to connect your %s experience to the %s role", lastRole, job.Title),
		fmt.Sprintf("Research %s and its recent work", company),
		"Reconnect with former colleagues and ask about return-to-work openings",
	}

	var shortTerm []string
	for _, skill := range missing {
		if len(shortTerm) == 2 {
			break
		}
		shortTerm = append(shortTerm, fmt.Sprintf("Build demonstrable experience in %s", skill))
	}
	shortTerm = append(shortTerm,
		fmt.Sprintf("Complete a %s refresher course", category),
		fmt.Sprintf("Apply to at least five %s roles", job.Title),
	)

	return models.SkillGapPlan{
		GapAnalysis:    gap,
		RequiredSkills: required,
		ActionPlan: models.ActionPlan{
			Immediate: immediate,
			ShortTerm: shortTerm,
		},
		Resources: models.PlanResources{
			Courses: []string{
				fmt.Sprintf("%s refresher course", category),
				fmt.Sprintf("%s essentials", job.Title),
			},
			Certification: fmt.Sprintf("An industry-recognised %s certification", category),
			Networking:    fmt.Sprintf("Join return-to-work communities and %s meetups", category),
		},
		EstimatedTimeframe: FallbackTimeframe(profile.Personal.YearsOutOfWork, len(missing)),
	}
}
