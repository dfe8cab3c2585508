package models

// JobMatch is one normalized job posting ranked against a user profile
type JobMatch struct {
	Title          string         `json:"title"`
	Company        string         `json:"company"`
	Location       string         `json:"location"`
	Salary         string         `json:"salary"`
	MatchScore     int            `json:"matchScore"`
	ReturnFriendly ReturnFriendly `json:"returnFriendly"`
	Requirements   []string       `json:"requirements"`
	Description    string         `json:"description"`
	ApplyURL       string         `json:"applyUrl"`
	PostedDate     string         `json:"postedDate"`
	JobType        string         `json:"jobType"`
	Category       string         `json:"category"`
}

// ReturnFriendly holds the return-to-work friendliness flags of a posting.
// The flags are heuristics derived from contract data, not ground truth.
type ReturnFriendly struct {
	Mentorship    bool `json:"mentorship"`
	FlexibleHours bool `json:"flexibleHours"`
	ReturnProgram bool `json:"returnProgram"`
}

// SalaryRange bounds the representative salary; nil means unbounded
type SalaryRange struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

// IsSet reports whether either bound is present
func (r SalaryRange) IsSet() bool {
	return r.Min != nil || r.Max != nil
}

// JobFilters is the set of user-selected filter clauses
type JobFilters struct {
	ReturnToWork  bool        `json:"returnToWork"`
	FlexibleHours bool        `json:"flexibleHours"`
	Mentorship    bool        `json:"mentorship"`
	SalaryRange   SalaryRange `json:"salaryRange"`
	WorkTypes     []string    `json:"workTypes" validate:"dive,work_type"`
	Categories    []string    `json:"categories"`
}

// SortField selects the key used to order job matches
type SortField string

const (
	SortByMatchScore        SortField = "matchScore"
	SortByPostedDate        SortField = "postedDate"
	SortByLocationProximity SortField = "locationProximity"
	SortBySalary            SortField = "salary"
)

// SortDirection is asc or desc
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortConfig selects the sort key and direction
type SortConfig struct {
	Field     SortField     `json:"field" validate:"required,sort_field"`
	Direction SortDirection `json:"direction" validate:"required,oneof=asc desc"`
}

// DefaultSortConfig is the ordering used before the user picks one
func DefaultSortConfig() SortConfig {
	return SortConfig{Field: SortByMatchScore, Direction: SortDesc}
}

// FilterPreset is a named, predefined filter combination
type FilterPreset struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Filters     JobFilters `json:"filters"`
}
