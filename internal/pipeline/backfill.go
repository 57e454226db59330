package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"applicant-pipeline/internal/common/config"
	"applicant-pipeline/internal/common/logger"
	"applicant-pipeline/internal/common/metrics"
	"applicant-pipeline/internal/models"
)

// Runner backfills the compress+evaluate flow across every applicant row.
// Per-applicant failures land in the report; only a failed listing aborts
// the run.
type Runner struct {
	tables       TableAPI
	compressor   *Compressor
	decompressor *Decompressor
	cfg          *config.Config
	logger       logger.Logger
	sleep        func(time.Duration)
}

func NewRunner(tables TableAPI, compressor *Compressor, decompressor *Decompressor, cfg *config.Config, log logger.Logger) *Runner {
	return &Runner{
		tables:       tables,
		compressor:   compressor,
		decompressor: decompressor,
		cfg:          cfg,
		logger:       log.With(map[string]interface{}{"component": "backfill"}),
		sleep:        time.Sleep,
	}
}

// Run processes all applicants sequentially with a fixed pacing delay
// between them to stay under the remote API rate limits.
func (r *Runner) Run(ctx context.Context) (*models.BatchReport, error) {
	report := &models.BatchReport{RunID: uuid.New().String()}
	log := r.logger.With(map[string]interface{}{"runId": report.RunID})

	applicants, err := r.tables.ListRecords(ctx, r.cfg.Tables.Applicants, "")
	if err != nil {
		return nil, err
	}
	log.Info("starting backfill", map[string]interface{}{"applicants": len(applicants)})

	delay := config.GetDuration(r.cfg.Backfill.Delay)

	for i, applicant := range applicants {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if i > 0 && delay > 0 {
			r.sleep(delay)
		}

		id := applicant.String(r.cfg.Fields.ApplicantID)
		if id == "" {
			// related rows are looked up by the business id; without one the
			// profile would come back empty and junk results would be written
			log.Warn("applicant row has no business id, skipping", map[string]interface{}{
				"recordId": applicant.ID,
			})
			metrics.ApplicantsSkipped.Inc()
			report.Skipped++
			continue
		}

		outcome, err := r.compressor.Process(ctx, id)
		if err == nil && outcome.Status == StatusProcessed && r.cfg.Backfill.Decompress && r.decompressor != nil {
			_, err = r.decompressor.Expand(ctx, id)
		}

		if err != nil {
			log.WithError(err).Error("applicant failed", map[string]interface{}{"applicantId": id})
			metrics.ApplicantsFailed.WithLabelValues(FailureReason(err)).Inc()
			report.Failed = append(report.Failed, models.Failure{ApplicantID: id, Err: err.Error()})
			continue
		}

		if outcome.Status == StatusSkipped {
			report.Skipped++
		} else {
			report.Processed++
		}
	}

	log.Info("backfill finished", map[string]interface{}{
		"processed": report.Processed,
		"skipped":   report.Skipped,
		"failed":    len(report.Failed),
	})
	return report, nil
}
