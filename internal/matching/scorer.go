package matching

import (
	"math"
	"math/rand/v2"
	"strings"
	"sync"

	"wikijobs/pkg/models"
)

// Weights of the four sub-scores. They sum to 1.
type Weights struct {
	Role     float64
	Location float64
	Skills   float64
	Benefits float64
}

// DefaultWeights favours role fit, then skills and return-to-work benefits
var DefaultWeights = Weights{
	Role:     0.35,
	Location: 0.15,
	Skills:   0.25,
	Benefits: 0.25,
}

// Bounds of the random score handed out when no profile is available
const (
	RandomScoreMin = 70
	RandomScoreMax = 99
)

// Posting is the subset of a raw search result the scorer reads
type Posting struct {
	Title        string
	Location     string
	Description  string
	Category     string
	ContractTime string
	ContractType string
}

// ReturnFriendly derives the return-to-work flags from contract data.
// ReturnProgram is always set: the search source carries no such field.
func (p Posting) ReturnFriendly() models.ReturnFriendly {
	return models.ReturnFriendly{
		Mentorship:    p.ContractTime == "full_time",
		FlexibleHours: p.ContractType == "permanent",
		ReturnProgram: true,
	}
}

// Breakdown holds the sub-scores behind a match score
type Breakdown struct {
	Role     float64
	Location float64
	Skills   float64
	Benefits float64
	Score    int
	Random   bool
}

// Scorer computes match scores. The zero value is not usable; use NewScorer.
type Scorer struct {
	weights Weights

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures a Scorer
type Option func(*Scorer)

// WithWeights overrides DefaultWeights
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

// WithRandSource makes the no-profile fallback reproducible
func WithRandSource(src rand.Source) Option {
	return func(s *Scorer) {
		s.rnd = rand.New(src)
	}
}

// NewScorer creates a scorer with the default weights
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		weights: DefaultWeights,
		rnd:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the match score of posting p for profile in [0,100].
// Without a profile the score is a uniformly random demo value in
// [RandomScoreMin, RandomScoreMax].
func (s *Scorer) Score(p Posting, profile *models.UserProfile) int {
	return s.Breakdown(p, profile).Score
}

// Breakdown computes the score together with its sub-scores
func (s *Scorer) Breakdown(p Posting, profile *models.UserProfile) Breakdown {
	if profile == nil {
		return Breakdown{Score: s.randomScore(), Random: true}
	}

	b := Breakdown{
		Role:     Similarity(p.Title, profile.Preferences.DesiredRole),
		Location: locationMatch(p.Location, profile.Preferences.Location),
		Skills:   SkillsMatch(p.Description, p.Category, profile.Experience.KeySkills),
		Benefits: benefitsMatch(p.ReturnFriendly()),
	}

	total := b.Role*s.weights.Role +
		b.Location*s.weights.Location +
		b.Skills*s.weights.Skills +
		b.Benefits*s.weights.Benefits

	b.Score = clamp(int(math.Round(total*100)), 0, 100)
	return b
}

func (s *Scorer) randomScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RandomScoreMin + s.rnd.IntN(RandomScoreMax-RandomScoreMin+1)
}

func locationMatch(jobLocation, preferred string) float64 {
	if preferred == "" {
		return 1
	}
	return Similarity(jobLocation, preferred)
}

// SkillsMatch returns the share of the comma separated skills that appear as
// whole words in the description or category. No listed skills scores 0.
func SkillsMatch(description, category, skills string) float64 {
	var userSkills []string
	for _, skill := range strings.Split(strings.ToLower(skills), ",") {
		if skill = strings.TrimSpace(skill); skill != "" {
			userSkills = append(userSkills, skill)
		}
	}
	if len(userSkills) == 0 {
		return 0
	}

	descWords := WordSet(strings.ToLower(description))
	categoryWords := WordSet(strings.ToLower(category))

	matched := 0
	for _, skill := range userSkills {
		_, inDesc := descWords[skill]
		_, inCategory := categoryWords[skill]
		if inDesc || inCategory {
			matched++
		}
	}
	return float64(matched) / float64(len(userSkills))
}

func benefitsMatch(rf models.ReturnFriendly) float64 {
	count := 0
	for _, flag := range []bool{rf.Mentorship, rf.FlexibleHours, rf.ReturnProgram} {
		if flag {
			count++
		}
	}
	return float64(count) / 3
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
