package jobsearch

import (
	"time"

	"wikijobs/pkg/models"
)

// SampleJobs is the built-in list shown when the live search is unavailable.
// Postings are dated today.
func SampleJobs() []models.JobMatch {
	today := time.Now().Format(PostedDateLayout)

	return []models.JobMatch{
		{
			Title:      "Return to Work Program - Project Manager",
			Company:    "Tech Company",
			Location:   "London, UK",
			Salary:     "£45,000 - £65,000",
			MatchScore: 85,
			ReturnFriendly: models.ReturnFriendly{
				Mentorship:    true,
				FlexibleHours: true,
				ReturnProgram: true,
			},
			Requirements: []string{
				"Previous project management experience",
				"Strong communication skills",
				"Team leadership experience",
			},
			Description: "Join our inclusive return-to-work program designed for experienced professionals...",
			ApplyURL:    "https://example.com/apply",
			PostedDate:  today,
			JobType:     "Full-time",
			Category:    "Project Management",
		},
	}
}
