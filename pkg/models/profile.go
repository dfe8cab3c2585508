package models

// WorkType is the user's preferred working arrangement
type WorkType string

const (
	WorkTypeRemote WorkType = "remote"
	WorkTypeHybrid WorkType = "hybrid"
	WorkTypeOnsite WorkType = "onsite"
)

// UserProfile is the wizard submission for one search session.
// It is treated as immutable once the search has run.
type UserProfile struct {
	Personal    PersonalInfo   `json:"personal" validate:"required"`
	Experience  ExperienceInfo `json:"experience" validate:"required"`
	Preferences Preferences    `json:"preferences" validate:"required"`
}

// PersonalInfo holds contact and return-to-work details
type PersonalInfo struct {
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	Phone          string `json:"phone,omitempty"`
	Location       string `json:"location,omitempty"`
	YearsOutOfWork string `json:"yearsOutOfWork" validate:"required"`
}

// ExperienceInfo describes the user's last role before the break
type ExperienceInfo struct {
	LastRole       string `json:"lastRole" validate:"required"`
	Industry       string `json:"industry" validate:"required"`
	KeySkills      string `json:"keySkills" validate:"required"` // comma separated
	ReasonForBreak string `json:"reasonForBreak,omitempty"`
}

// Preferences describes the job the user is looking for
type Preferences struct {
	DesiredRole string   `json:"desiredRole" validate:"required"`
	WorkType    WorkType `json:"workType" validate:"required,work_type"`
	Salary      string   `json:"salary,omitempty"`
	Location    string   `json:"location" validate:"required"`
	Country     string   `json:"country" validate:"required,country_code"`
}
