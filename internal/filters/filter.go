// Package filters narrows and orders a session's job matches. Every function
// here is pure: inputs are never mutated and results are freshly allocated.
package filters

import (
	"regexp"
	"strconv"
	"strings"

	"wikijobs/pkg/models"
)

var salaryDigits = regexp.MustCompile(`\d[\d,]*`)

// ExtractSalaryValue returns the first number in a salary display string,
// thousands separators included, so "£45,000 - £65,000" gives 45000.
// Strings without digits give 0.
func ExtractSalaryValue(salary string) int {
	match := salaryDigits.FindString(salary)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// Filter returns the jobs satisfying every active clause, in input order.
// userLocation is accepted for parity with Sort but no clause reads it yet.
func Filter(jobs []models.JobMatch, f models.JobFilters, userLocation string) []models.JobMatch {
	workTypes := make([]string, 0, len(f.WorkTypes))
	for _, wt := range f.WorkTypes {
		workTypes = append(workTypes, strings.ToLower(wt))
	}

	out := make([]models.JobMatch, 0, len(jobs))
	for _, job := range jobs {
		if Matches(job, f, workTypes) {
			out = append(out, job)
		}
	}
	return out
}

// Matches reports whether one job passes all active clauses. workTypes must
// be the lower-cased f.WorkTypes.
func Matches(job models.JobMatch, f models.JobFilters, workTypes []string) bool {
	if f.ReturnToWork && !job.ReturnFriendly.ReturnProgram {
		return false
	}
	if f.FlexibleHours && !job.ReturnFriendly.FlexibleHours {
		return false
	}
	if f.Mentorship && !job.ReturnFriendly.Mentorship {
		return false
	}

	if f.SalaryRange.IsSet() {
		salary := ExtractSalaryValue(job.Salary)
		if f.SalaryRange.Min != nil && salary < *f.SalaryRange.Min {
			return false
		}
		if f.SalaryRange.Max != nil && salary > *f.SalaryRange.Max {
			return false
		}
	}

	if len(workTypes) > 0 {
		jobType := strings.ToLower(job.JobType)
		found := false
		for _, wt := range workTypes {
			if strings.Contains(jobType, wt) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(f.Categories) > 0 {
		found := false
		for _, c := range f.Categories {
			if job.Category == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// ActiveFilterCount counts enabled flags, a set salary range as one, and each
// selected work type and category
func ActiveFilterCount(f models.JobFilters) int {
	count := 0
	for _, on := range []bool{f.ReturnToWork, f.FlexibleHours, f.Mentorship, f.SalaryRange.IsSet()} {
		if on {
			count++
		}
	}
	return count + len(f.WorkTypes) + len(f.Categories)
}

// UniqueCategories lists the distinct categories in first-seen order
func UniqueCategories(jobs []models.JobMatch) []string {
	seen := make(map[string]bool, len(jobs))
	categories := make([]string, 0)
	for _, job := range jobs {
		if !seen[job.Category] {
			seen[job.Category] = true
			categories = append(categories, job.Category)
		}
	}
	return categories
}

// SalaryBounds returns the smallest and largest positive salary values.
// ok is false when no job carries a parsable salary.
func SalaryBounds(jobs []models.JobMatch) (bounds models.Bounds, ok bool) {
	for _, job := range jobs {
		v := ExtractSalaryValue(job.Salary)
		if v <= 0 {
			continue
		}
		if !ok {
			bounds = models.Bounds{Min: v, Max: v}
			ok = true
			continue
		}
		if v < bounds.Min {
			bounds.Min = v
		}
		if v > bounds.Max {
			bounds.Max = v
		}
	}
	return bounds, ok
}
