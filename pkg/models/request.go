package models

// SelectJobRequest selects a job from the session's current view by index
type SelectJobRequest struct {
	Index int `json:"index" validate:"min=0"`
}

// ParsePlanRequest carries raw generated text to run through the plan parser
type ParsePlanRequest struct {
	Text string `json:"text" validate:"required"`
}

// ExplainMatchRequest asks for the sub-scores of one posting against a profile
type ExplainMatchRequest struct {
	Job     ExplainJob   `json:"job" validate:"required"`
	Profile *UserProfile `json:"profile,omitempty"`
}

// ExplainJob is the subset of a raw posting the scorer reads
type ExplainJob struct {
	Title        string `json:"title" validate:"required"`
	Location     string `json:"location"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	ContractTime string `json:"contract_time"`
	ContractType string `json:"contract_type"`
}
