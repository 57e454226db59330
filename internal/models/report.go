package models

// Failure records one applicant that could not be processed during a batch.
type Failure struct {
	ApplicantID string `json:"applicantId"`
	Err         string `json:"error"`
}

// BatchReport aggregates the outcome of a backfill run.
// Processed + Skipped + len(Failed) equals the number of applicants listed.
type BatchReport struct {
	RunID     string    `json:"runId"`
	Processed int       `json:"processed"`
	Skipped   int       `json:"skipped"`
	Failed    []Failure `json:"failed,omitempty"`
}

// Total returns the number of applicants the run touched.
func (r *BatchReport) Total() int {
	return r.Processed + r.Skipped + len(r.Failed)
}
