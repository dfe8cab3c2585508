package jobsearch

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"wikijobs/internal/matching"
	"wikijobs/pkg/models"
)

const (
	// PostedDateLayout is the en-GB short date used for display and sorting
	PostedDateLayout = "02/01/2006"

	SalaryNotSpecified  = "Salary not specified"
	JobTypeNotSpecified = "Not specified"
)

var gbPrinter = message.NewPrinter(language.BritishEnglish)

// Posting extracts the fields the scorer reads. The description is stripped
// of markup first.
func (r Result) Posting() matching.Posting {
	return matching.Posting{
		Title:        r.Title,
		Location:     r.Location.DisplayName,
		Description:  StripHTML(r.Description),
		Category:     r.Category.Label,
		ContractTime: r.ContractTime,
		ContractType: r.ContractType,
	}
}

// Normalize maps one raw result onto a JobMatch with the given score
func Normalize(r Result, score int) models.JobMatch {
	return normalizePosting(r, r.Posting(), score)
}

// normalizePosting builds the JobMatch from r and its already extracted posting
func normalizePosting(r Result, posting matching.Posting, score int) models.JobMatch {
	jobType := r.ContractTime
	if jobType == "" {
		jobType = JobTypeNotSpecified
	}

	return models.JobMatch{
		Title:          r.Title,
		Company:        r.Company.DisplayName,
		Location:       r.Location.DisplayName,
		Salary:         FormatSalary(r.SalaryMin, r.SalaryMax, bool(r.SalaryIsPredicted)),
		MatchScore:     score,
		ReturnFriendly: posting.ReturnFriendly(),
		Requirements:   []string{r.Category.Label},
		Description:    posting.Description,
		ApplyURL:       r.RedirectURL,
		PostedDate:     FormatPostedDate(r.Created),
		JobType:        jobType,
		Category:       r.Category.Label,
	}
}

// NormalizeBatch scores and normalizes every result, then orders the batch
// by descending match score. Equal scores keep API order.
func NormalizeBatch(results []Result, profile *models.UserProfile, scorer *matching.Scorer) []models.JobMatch {
	jobs := make([]models.JobMatch, 0, len(results))
	for _, r := range results {
		posting := r.Posting()
		jobs = append(jobs, normalizePosting(r, posting, scorer.Score(posting, profile)))
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].MatchScore > jobs[j].MatchScore
	})
	return jobs
}

// FormatSalary renders the salary display string. A present minimum gives
// "£min - £max" (a missing maximum renders as £0); otherwise a predicted
// salary gives "Estimated: £min"; otherwise SalaryNotSpecified.
func FormatSalary(min, max *float64, predicted bool) string {
	if min != nil && *min != 0 {
		return "£" + formatAmount(min) + " - £" + formatAmount(max)
	}
	if predicted {
		return "Estimated: £" + formatAmount(min)
	}
	return SalaryNotSpecified
}

func formatAmount(v *float64) string {
	if v == nil {
		return "0"
	}
	return gbPrinter.Sprintf("%d", int64(math.Round(*v)))
}

// FormatPostedDate converts an RFC 3339 creation timestamp into
// PostedDateLayout. Unparsable input is returned unchanged.
func FormatPostedDate(created string) string {
	created = strings.TrimSpace(created)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, created); err == nil {
			return t.Format(PostedDateLayout)
		}
	}
	return created
}

// ParsePostedDate parses a display date; ok is false for anything else
func ParsePostedDate(s string) (time.Time, bool) {
	t, err := time.Parse(PostedDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// StripHTML returns the text content of an HTML fragment with whitespace
// collapsed. Plain text passes through unchanged apart from whitespace.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapseSpaces(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseSpaces(s)
	}
	return collapseSpaces(doc.Text())
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
