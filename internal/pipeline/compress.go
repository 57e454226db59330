package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"applicant-pipeline/internal/common/config"
	apperrors "applicant-pipeline/internal/common/errors"
	"applicant-pipeline/internal/common/logger"
	"applicant-pipeline/internal/common/metrics"
	"applicant-pipeline/internal/llm"
	"applicant-pipeline/internal/models"
	"applicant-pipeline/internal/prompt"
)

// OutcomeStatus marks how Process ended for one applicant.
type OutcomeStatus string

const (
	StatusProcessed OutcomeStatus = "processed"
	StatusSkipped   OutcomeStatus = "skipped"
)

// Outcome is the result of compressing and evaluating one applicant.
type Outcome struct {
	Status      OutcomeStatus
	Evaluation  *models.Evaluation
	Shortlisted bool
}

// Compressor reads an applicant's rows, builds the compact profile, runs the
// LLM evaluation, and writes the results back to the applicant row.
type Compressor struct {
	tables    TableAPI
	evaluator llm.Evaluator
	cfg       *config.Config
	logger    logger.Logger
	now       func() time.Time
}

func NewCompressor(tables TableAPI, evaluator llm.Evaluator, cfg *config.Config, log logger.Logger) *Compressor {
	return &Compressor{
		tables:    tables,
		evaluator: evaluator,
		cfg:       cfg,
		logger:    log.With(map[string]interface{}{"component": "compressor"}),
		now:       time.Now,
	}
}

// Process runs the compress+evaluate flow for one applicant. When the skip
// policy applies it returns before performing any write. All evaluation
// fields land on the applicant row in a single update.
func (c *Compressor) Process(ctx context.Context, applicantID string) (*Outcome, error) {
	log := c.logger.With(map[string]interface{}{"applicantId": applicantID})

	applicant, err := findApplicant(ctx, c.tables, c.cfg, applicantID)
	if err != nil {
		return nil, err
	}

	if !ShouldEvaluate(*applicant, c.cfg.Fields, c.cfg.LLM.RunAlways) {
		log.Info("evaluation already present, skipping", nil)
		metrics.ApplicantsSkipped.Inc()
		return &Outcome{Status: StatusSkipped}, nil
	}

	applicantKey := applicant.String(c.cfg.Fields.ApplicantID)
	if applicantKey == "" {
		applicantKey = applicantID
	}

	related, err := fetchRelated(ctx, c.tables, c.cfg, applicantKey)
	if err != nil {
		return nil, err
	}

	profile := BuildProfile(related)
	blob, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize profile: %w", err)
	}

	decision := EvaluateShortlist(related, c.now())

	eval, err := c.evaluator.Evaluate(ctx, prompt.Build(profile))
	if err != nil {
		return nil, err
	}

	status := "Rejected"
	if decision.Passed {
		status = "Shortlisted"
	}

	fields := map[string]interface{}{
		c.cfg.Fields.CompressedJSON:  string(blob),
		c.cfg.Fields.ShortlistStatus: status,
		c.cfg.Fields.Summary:         eval.Summary,
		c.cfg.Fields.Score:           eval.Score,
		c.cfg.Fields.Issues:          formatIssues(eval.Issues),
		c.cfg.Fields.FollowUps:       formatFollowUps(eval.FollowUps),
	}
	if _, err := c.tables.UpdateRecord(ctx, c.cfg.Tables.Applicants, applicant.ID, fields); err != nil {
		return nil, err
	}

	if decision.Passed {
		if err := c.ensureShortlistLead(ctx, applicant, applicantKey, string(blob), decision.Reason); err != nil {
			return nil, err
		}
	}

	log.Info("applicant evaluated", map[string]interface{}{
		"score":       eval.Score,
		"shortlisted": decision.Passed,
	})
	metrics.ApplicantsProcessed.Inc()

	return &Outcome{
		Status:      StatusProcessed,
		Evaluation:  eval,
		Shortlisted: decision.Passed,
	}, nil
}

// ensureShortlistLead creates the Shortlisted Leads row once per applicant.
// An existing lead is left untouched.
func (c *Compressor) ensureShortlistLead(ctx context.Context, applicant *models.Record, applicantKey, blob, reason string) error {
	existing, err := c.tables.ListRecords(ctx, c.cfg.Tables.ShortlistedLeads,
		linkFormula(c.cfg.Fields.ApplicantLink, applicantKey))
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	_, err = c.tables.CreateRecord(ctx, c.cfg.Tables.ShortlistedLeads, map[string]interface{}{
		c.cfg.Fields.ApplicantLink:  []string{applicant.ID},
		c.cfg.Fields.CompressedJSON: blob,
		c.cfg.Fields.ScoreReason:    reason,
	})
	return err
}

func formatIssues(issues []string) string {
	if len(issues) == 0 {
		return "None"
	}
	return strings.Join(issues, "; ")
}

func formatFollowUps(followUps []string) string {
	if len(followUps) == 0 {
		return ""
	}
	lines := make([]string, 0, len(followUps))
	for _, q := range followUps {
		lines = append(lines, "- "+q)
	}
	return strings.Join(lines, "\n")
}

// FailureReason maps a processing error to a metrics label.
func FailureReason(err error) string {
	if code := apperrors.CodeOf(err); code != "" {
		return string(code)
	}
	return "unknown"
}
