package jobsearch

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// SearchResponse is the body returned by the Adzuna search endpoint
type SearchResponse struct {
	Count   int      `json:"count"`
	Results []Result `json:"results"`
}

// Result is one raw posting. Optional fields are pointers or zero values and
// are never assumed present.
type Result struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Company           Named    `json:"company"`
	Location          Location `json:"location"`
	SalaryMin         *float64 `json:"salary_min,omitempty"`
	SalaryMax         *float64 `json:"salary_max,omitempty"`
	SalaryIsPredicted FlexBool `json:"salary_is_predicted"`
	ContractTime      string   `json:"contract_time,omitempty"`
	ContractType      string   `json:"contract_type,omitempty"`
	Category          Category `json:"category"`
	Description       string   `json:"description"`
	RedirectURL       string   `json:"redirect_url"`
	Created           string   `json:"created"`
}

// Named is an object carrying a display name
type Named struct {
	DisplayName string `json:"display_name"`
}

// Location of a posting
type Location struct {
	DisplayName string   `json:"display_name"`
	Area        []string `json:"area,omitempty"`
}

// Category of a posting
type Category struct {
	Label string `json:"label"`
	Tag   string `json:"tag,omitempty"`
}

// FlexBool decodes booleans sent as true/false, "0"/"1" or 0/1
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}

	s = strings.TrimSpace(strings.ToLower(s))
	if v, err := strconv.ParseBool(s); err == nil {
		*b = FlexBool(v)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*b = f != 0
		return nil
	}
	*b = false
	return nil
}
