package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applicant-pipeline/internal/common/logger"
	"applicant-pipeline/internal/models"
)

func newTestRunner(f *fakeTables, eval *countingEvaluator, decompress bool) *Runner {
	cfg := testConfig()
	cfg.Backfill.Decompress = decompress

	compressor := NewCompressor(f, eval, cfg, logger.Nop())
	compressor.now = func() time.Time { return fixedNow }
	decompressor := NewDecompressor(f, cfg, logger.Nop())

	r := NewRunner(f, compressor, decompressor, cfg, logger.Nop())
	r.sleep = func(time.Duration) {}
	return r
}

func TestRunProcessesAllApplicants(t *testing.T) {
	f := newFakeTables()
	f.add("Applicants", map[string]interface{}{
		"Applicant ID": "APP-A",
		"LLM Summary":  "done",
		"LLM Score":    7.0,
	})
	seedApplicant(f, "APP-B")
	broken := f.add("Applicants", map[string]interface{}{"Applicant ID": "APP-C"})
	f.add("Personal Details", map[string]interface{}{
		"Applicant": []string{broken.ID},
		"Full Name": "Broken Bot",
	})

	eval := &countingEvaluator{
		result:   models.Evaluation{Summary: "ok", Score: 6},
		failWhen: "Broken Bot",
	}
	runner := newTestRunner(f, eval, false)

	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "APP-C", report.Failed[0].ApplicantID)
	assert.Equal(t, 3, report.Total())

	// one failure never blocks the rest of the run
	assert.Equal(t, 2, eval.calls)
}

func TestRunDecompressesAfterProcessing(t *testing.T) {
	f := newFakeTables()
	seedApplicant(f, "APP-D")

	eval := &countingEvaluator{result: models.Evaluation{Summary: "ok", Score: 6}}
	runner := newTestRunner(f, eval, true)

	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Empty(t, report.Failed)

	// the expansion patched the existing rows rather than duplicating them
	assert.Equal(t, 1, f.count("Personal Details"))
	assert.Equal(t, 1, f.count("Work Experience"))
	assert.Equal(t, 1, f.count("Salary Preferences"))
}

func TestRunSkipsDecompressForSkippedApplicants(t *testing.T) {
	f := newFakeTables()
	f.add("Applicants", map[string]interface{}{
		"Applicant ID": "APP-E",
		"LLM Summary":  "done",
		"LLM Score":    5.0,
	})

	eval := &countingEvaluator{result: models.Evaluation{Summary: "ok", Score: 6}}
	runner := newTestRunner(f, eval, true)

	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, report.Failed)
	assert.Equal(t, 0, f.creates)
}

func TestRunSucceedsWhenEveryApplicantFails(t *testing.T) {
	f := newFakeTables()
	broken := f.add("Applicants", map[string]interface{}{"Applicant ID": "APP-X"})
	f.add("Personal Details", map[string]interface{}{
		"Applicant": []string{broken.ID},
		"Full Name": "Broken Bot",
	})

	eval := &countingEvaluator{
		result:   models.Evaluation{Summary: "ok", Score: 6},
		failWhen: "Broken Bot",
	}
	runner := newTestRunner(f, eval, false)

	// failures belong in the report, not the error return
	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Processed)
	require.Len(t, report.Failed, 1)
}

func TestRunSkipsApplicantsWithoutBusinessID(t *testing.T) {
	f := newFakeTables()
	orphan := f.add("Applicants", map[string]interface{}{})
	f.add("Personal Details", map[string]interface{}{
		"Applicant": []string{orphan.ID},
		"Full Name": "No Business ID",
	})

	eval := &countingEvaluator{result: models.Evaluation{Summary: "ok", Score: 6}}
	runner := newTestRunner(f, eval, false)

	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	// the row is never evaluated: a record id can't resolve linked children
	// through ARRAYJOIN, so processing it would write an empty profile
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Processed)
	assert.Empty(t, report.Failed)
	assert.Equal(t, 0, eval.calls)
	assert.Equal(t, 0, f.updates)

	children, err := f.ListRecords(context.Background(), "Personal Details",
		linkFormula("Applicant", orphan.ID))
	require.NoError(t, err)
	assert.Empty(t, children, "record ids must not match through the link formula")
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	f := newFakeTables()
	seedApplicant(f, "APP-F")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eval := &countingEvaluator{result: models.Evaluation{Summary: "ok", Score: 6}}
	runner := newTestRunner(f, eval, false)

	_, err := runner.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, eval.calls)
}
