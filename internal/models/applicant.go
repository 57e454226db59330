package models

import "strings"

// Profile is the denormalized snapshot of one applicant's related records.
// Serialized into the Compressed JSON field and expanded back out by the
// decompressor, so the field names here are the blob's wire format.
type Profile struct {
	Personal   Personal     `json:"personal"`
	Experience []Experience `json:"experience"`
	Salary     Salary       `json:"salary"`
}

type Personal struct {
	Name     string `json:"name,omitempty"`
	Location string `json:"location,omitempty"`
}

type Experience struct {
	Company string `json:"company,omitempty"`
	Title   string `json:"title,omitempty"`
}

type Salary struct {
	Rate         *float64 `json:"rate,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	Availability *float64 `json:"availability,omitempty"`
}

// IsEmpty reports whether the personal section holds no data.
func (p Personal) IsEmpty() bool {
	return strings.TrimSpace(p.Name) == "" && strings.TrimSpace(p.Location) == ""
}

// IsEmpty reports whether the salary section holds no data.
func (s Salary) IsEmpty() bool {
	return s.Rate == nil && s.Availability == nil && strings.TrimSpace(s.Currency) == ""
}

// Evaluation is the LLM-derived result for one applicant. Written atomically
// to the applicant row, all four fields together.
type Evaluation struct {
	Summary   string   `json:"summary"`
	Score     int      `json:"score"`
	Issues    []string `json:"issues"`
	FollowUps []string `json:"follow_ups"`
}
