// Package pipeline orchestrates the applicant workflow: compress related
// rows into a blob, evaluate with the LLM, write results back, expand blobs
// into rows, and backfill across all applicants.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"applicant-pipeline/internal/common/config"
	apperrors "applicant-pipeline/internal/common/errors"
	"applicant-pipeline/internal/models"
)

// TableAPI is the slice of the table service the pipeline depends on.
// Implemented by airtable.Client and by in-memory fakes in tests.
type TableAPI interface {
	ListRecords(ctx context.Context, table, formula string) ([]models.Record, error)
	GetRecord(ctx context.Context, table, id string) (*models.Record, error)
	UpdateRecord(ctx context.Context, table, id string, fields map[string]interface{}) (*models.Record, error)
	CreateRecord(ctx context.Context, table string, fields map[string]interface{}) (*models.Record, error)
}

// linkFormula matches child rows linked to the applicant. ARRAYJOIN flattens
// the link column so FIND works on it.
func linkFormula(linkField, applicantID string) string {
	return fmt.Sprintf("FIND('%s', ARRAYJOIN({%s}))", escapeFormulaValue(applicantID), linkField)
}

func idFormula(idField, applicantID string) string {
	return fmt.Sprintf("{%s}='%s'", idField, escapeFormulaValue(applicantID))
}

func escapeFormulaValue(v string) string {
	return strings.ReplaceAll(v, "'", "\\'")
}

// findApplicant resolves either an Airtable record id or the business
// "Applicant ID" field value to the applicant row.
func findApplicant(ctx context.Context, tables TableAPI, cfg *config.Config, applicantID string) (*models.Record, error) {
	// Airtable record ids are "rec" plus 14 characters.
	if strings.HasPrefix(applicantID, "rec") && len(applicantID) == 17 {
		return tables.GetRecord(ctx, cfg.Tables.Applicants, applicantID)
	}

	matches, err := tables.ListRecords(ctx, cfg.Tables.Applicants, idFormula(cfg.Fields.ApplicantID, applicantID))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, apperrors.NewRecordNotFoundError(cfg.Tables.Applicants, applicantID)
	}
	return &matches[0], nil
}

// relatedRecords fetches the child rows of one applicant across the three
// related tables.
type relatedRecords struct {
	personal []models.Record
	work     []models.Record
	salary   []models.Record
}

func fetchRelated(ctx context.Context, tables TableAPI, cfg *config.Config, applicantKey string) (*relatedRecords, error) {
	formula := linkFormula(cfg.Fields.ApplicantLink, applicantKey)

	personal, err := tables.ListRecords(ctx, cfg.Tables.PersonalDetails, formula)
	if err != nil {
		return nil, fmt.Errorf("fetch personal details: %w", err)
	}
	work, err := tables.ListRecords(ctx, cfg.Tables.WorkExperience, formula)
	if err != nil {
		return nil, fmt.Errorf("fetch work experience: %w", err)
	}
	salary, err := tables.ListRecords(ctx, cfg.Tables.SalaryPreferences, formula)
	if err != nil {
		return nil, fmt.Errorf("fetch salary preferences: %w", err)
	}

	return &relatedRecords{personal: personal, work: work, salary: salary}, nil
}
