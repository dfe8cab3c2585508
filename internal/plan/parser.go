// Package plan turns generated text, or the absence of it, into a SkillGapPlan.
package plan

import (
	"regexp"
	"strings"

	"wikijobs/pkg/models"
	"wikijobs/pkg/utils"
)

// Section labels requested from the generator
const (
	LabelSkillsGap      = "SKILLS GAP"
	LabelRequiredSkills = "REQUIRED SKILLS"
	LabelQuickWins      = "QUICK WINS"
	LabelThreeMonthPlan = "3-MONTH PLAN"
	LabelResources      = "RESOURCES"
	LabelTimeToReady    = "TIME TO READY"
)

// Placeholders substituted when a field cannot be extracted
const (
	DefaultGapAnalysis       = "Analysis not available"
	DefaultCertification     = "Certification not specified"
	DefaultNetworking        = "Networking suggestion not specified"
	DefaultTimeframeMonths   = 3
	minRequiredSkills        = 3
	minActionItems           = 2
	minCourses               = 2
	defaultRequiredSkillText = "No skills provided"
)

var (
	DefaultRequiredSkills = []string{defaultRequiredSkillText}
	DefaultImmediate      = []string{"Update resume", "Research company", "Network"}
	DefaultShortTerm      = []string{"Complete relevant certification", "Build portfolio", "Apply to positions"}
	DefaultCourses        = []string{"Recommended course not specified"}
)

var labels = []string{LabelSkillsGap, LabelRequiredSkills, LabelQuickWins, LabelThreeMonthPlan, LabelResources, LabelTimeToReady}

var (
	// A following section opens a line with an all-caps label, optionally
	// numbered and with a parenthesised note, e.g. "2. QUICK WINS (Next 2 weeks):"
	nextLabel = regexp.MustCompile(`\n[ \t]*(?:\d+[.)][ \t]*)?(?:#+[ \t]*|\*\*)?[A-Z0-9][A-Z0-9 -]*(?:\([^)]*\))?:`)

	bulletPrefix   = regexp.MustCompile(`^-\s*`)
	coursePrefix   = regexp.MustCompile(`^-?\s*Course\s*\d*:\s*`)
	certPrefix     = regexp.MustCompile(`^-?\s*Certification:\s*`)
	networkPrefix  = regexp.MustCompile(`^-?\s*Network:\s*`)
	notTimeframeRe = regexp.MustCompile(`[^0-9-]+`)

	// exactLabels match the upper-case labels as written in the prompt;
	// labelPatterns match them in any case.
	exactLabels   = map[string]*regexp.Regexp{}
	labelPatterns = map[string]*regexp.Regexp{}
)

func init() {
	for _, label := range labels {
		exactLabels[label] = regexp.MustCompile(`\b` + regexp.QuoteMeta(label) + `\b[^\n:]*:`)
		labelPatterns[label] = labelPattern(label)
	}
}

func labelPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i:\b` + regexp.QuoteMeta(label) + `\b)[^\n:]*:`)
}

// findLabel prefers the upper-case label and falls back to any case
func findLabel(raw, label string) []int {
	if re, ok := exactLabels[label]; ok {
		if loc := re.FindStringIndex(raw); loc != nil {
			return loc
		}
	}
	re, ok := labelPatterns[label]
	if !ok {
		re = labelPattern(label)
	}
	return re.FindStringIndex(raw)
}

// Parse extracts a plan from semi-structured generated text. It never fails:
// every field that cannot be extracted, or falls below its minimum size, is
// replaced with its default.
func Parse(raw string) models.SkillGapPlan {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	gap := Section(raw, LabelSkillsGap)
	required := Bullets(Section(raw, LabelRequiredSkills))
	immediate := Bullets(Section(raw, LabelQuickWins))
	shortTerm := Bullets(Section(raw, LabelThreeMonthPlan))
	courses, certification, networking := resources(Section(raw, LabelResources))

	return models.SkillGapPlan{
		GapAnalysis:    utils.GetStringOrDefault(gap, DefaultGapAnalysis),
		RequiredSkills: atLeast(required, minRequiredSkills, DefaultRequiredSkills),
		ActionPlan: models.ActionPlan{
			Immediate: atLeast(immediate, minActionItems, DefaultImmediate),
			ShortTerm: atLeast(shortTerm, minActionItems, DefaultShortTerm),
		},
		Resources: models.PlanResources{
			Courses:       atLeast(courses, minCourses, DefaultCourses),
			Certification: utils.GetStringOrDefault(certification, DefaultCertification),
			Networking:    utils.GetStringOrDefault(networking, DefaultNetworking),
		},
		EstimatedTimeframe: Timeframe(firstLine(Section(raw, LabelTimeToReady))),
	}
}

// Section returns the trimmed text after "LABEL:" up to the next all-caps
// label line, the next upper-case known label, or the end of raw. The label
// is found anywhere in raw, so numbered ("1. SKILLS GAP:") and inline
// headings work; an upper-case occurrence wins over other casings. A missing
// label gives "".
func Section(raw, label string) string {
	loc := findLabel(raw, label)
	if loc == nil {
		return ""
	}

	body := raw[loc[1]:]
	end := len(body)
	if m := nextLabel.FindStringIndex(body); m != nil {
		end = m[0]
	}
	for _, known := range exactLabels {
		if m := known.FindStringIndex(body[:end]); m != nil {
			end = m[0]
		}
	}
	return strings.Trim(body[:end], " \t\n*#")
}

// Bullets keeps the lines of text that start with a hyphen, without it
func Bullets(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		if item := strings.TrimSpace(bulletPrefix.ReplaceAllString(line, "")); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Timeframe reads the leading month count from the TIME TO READY text.
// "2-3 months" gives 2. Missing, unparsable or non-positive values give
// DefaultTimeframeMonths.
func Timeframe(text string) int {
	digits := notTimeframeRe.ReplaceAllString(text, "")
	n, ok := utils.LeadingInt(digits)
	if !ok || n <= 0 {
		return DefaultTimeframeMonths
	}
	return n
}

func resources(text string) (courses []string, certification, networking string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.Contains(line, "Certification:"):
			if certification == "" {
				certification = strings.TrimSpace(certPrefix.ReplaceAllString(line, ""))
			}
		case strings.Contains(line, "Network:"):
			if networking == "" {
				networking = strings.TrimSpace(networkPrefix.ReplaceAllString(line, ""))
			}
		case strings.Contains(line, "Course"):
			if course := strings.TrimSpace(coursePrefix.ReplaceAllString(line, "")); course != "" {
				courses = append(courses, course)
			}
		}
	}
	return courses, certification, networking
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return line
}

func atLeast(items []string, min int, fallback []string) []string {
	if len(items) >= min {
		return items
	}
	return append([]string(nil), fallback...)
}
