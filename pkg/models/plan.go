package models

// SkillGapPlan is the upskilling recommendation for one selected job
type SkillGapPlan struct {
	GapAnalysis        string        `json:"gapAnalysis"`
	RequiredSkills     []string      `json:"requiredSkills"`
	ActionPlan         ActionPlan    `json:"actionPlan"`
	Resources          PlanResources `json:"resources"`
	EstimatedTimeframe int           `json:"estimatedTimeframe"` // months
}

// ActionPlan splits actions into the next two weeks and the next three months
type ActionPlan struct {
	Immediate []string `json:"immediate"`
	ShortTerm []string `json:"shortTerm"`
}

// PlanResources lists learning and networking suggestions
type PlanResources struct {
	Courses       []string `json:"courses"`
	Certification string   `json:"certification"`
	Networking    string   `json:"networking"`
}

// PlanSource records how a plan was produced
type PlanSource string

const (
	PlanSourceGenerated PlanSource = "generated"
	PlanSourceFallback  PlanSource = "fallback"
)
