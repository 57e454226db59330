package pipeline

import (
	"applicant-pipeline/internal/common/config"
	"applicant-pipeline/internal/models"
)

// ShouldEvaluate is the single skip decision for the whole pipeline: an
// applicant already holding evaluation output is left alone unless the
// run-always flag forces a recompute.
func ShouldEvaluate(applicant models.Record, fields config.FieldsConfig, runAlways bool) bool {
	if runAlways {
		return true
	}
	return !(applicant.Has(fields.Summary) && applicant.Has(fields.Score))
}
