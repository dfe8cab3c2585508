package filters

import (
	"sort"
	"strings"
	"time"

	"wikijobs/internal/jobsearch"
	"wikijobs/pkg/models"
)

// Sort returns a copy of jobs ordered by cfg. The sort is stable, so jobs
// with equal keys keep their relative order; desc only flips the comparison.
func Sort(jobs []models.JobMatch, cfg models.SortConfig, userLocation string) []models.JobMatch {
	out := make([]models.JobMatch, len(jobs))
	copy(out, jobs)

	cmp := comparator(cfg.Field, userLocation)
	sign := 1
	if cfg.Direction == models.SortDesc {
		sign = -1
	}

	sort.SliceStable(out, func(i, j int) bool {
		return sign*cmp(out[i], out[j]) < 0
	})
	return out
}

// comparator returns a three-way comparison for field; unknown fields compare equal
func comparator(field models.SortField, userLocation string) func(a, b models.JobMatch) int {
	switch field {
	case models.SortByMatchScore:
		return func(a, b models.JobMatch) int {
			return compareInts(a.MatchScore, b.MatchScore)
		}
	case models.SortByPostedDate:
		return func(a, b models.JobMatch) int {
			return postedAt(a).Compare(postedAt(b))
		}
	case models.SortByLocationProximity:
		return func(a, b models.JobMatch) int {
			return compareInts(Distance(a.Location, userLocation), Distance(b.Location, userLocation))
		}
	case models.SortBySalary:
		return func(a, b models.JobMatch) int {
			return compareInts(ExtractSalaryValue(a.Salary), ExtractSalaryValue(b.Salary))
		}
	default:
		return func(a, b models.JobMatch) int { return 0 }
	}
}

// Distance is a coarse proximity stand-in: 0 when the locations are equal
// ignoring case, 1 otherwise. There is no geocoding behind it.
func Distance(jobLocation, userLocation string) int {
	if strings.EqualFold(jobLocation, userLocation) {
		return 0
	}
	return 1
}

// postedAt parses the display date; unparsable dates sort as the zero time
func postedAt(job models.JobMatch) time.Time {
	t, _ := jobsearch.ParsePostedDate(job.PostedDate)
	return t
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
