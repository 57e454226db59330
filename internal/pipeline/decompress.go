package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"applicant-pipeline/internal/common/config"
	apperrors "applicant-pipeline/internal/common/errors"
	"applicant-pipeline/internal/common/logger"
	"applicant-pipeline/internal/models"
)

// ExpandedRecords reports what Expand wrote.
type ExpandedRecords struct {
	Created int
	Updated int
}

// Decompressor expands a stored compact JSON blob back into rows across the
// related tables. Idempotent: existing linked rows are updated in place, so
// re-running never duplicates them.
type Decompressor struct {
	tables TableAPI
	cfg    *config.Config
	logger logger.Logger
}

func NewDecompressor(tables TableAPI, cfg *config.Config, log logger.Logger) *Decompressor {
	return &Decompressor{
		tables: tables,
		cfg:    cfg,
		logger: log.With(map[string]interface{}{"component": "decompressor"}),
	}
}

func (d *Decompressor) Expand(ctx context.Context, applicantID string) (*ExpandedRecords, error) {
	applicant, err := findApplicant(ctx, d.tables, d.cfg, applicantID)
	if err != nil {
		return nil, err
	}

	blob := applicant.String(d.cfg.Fields.CompressedJSON)
	if strings.TrimSpace(blob) == "" {
		return nil, apperrors.NewMissingBlobError(applicantID)
	}

	var profile models.Profile
	if err := json.Unmarshal([]byte(blob), &profile); err != nil {
		return nil, apperrors.NewInvalidBlobError(applicantID, err)
	}

	applicantKey := applicant.String(d.cfg.Fields.ApplicantID)
	if applicantKey == "" {
		applicantKey = applicantID
	}

	result := &ExpandedRecords{}

	if !profile.Personal.IsEmpty() {
		fields := map[string]interface{}{
			d.cfg.Fields.ApplicantLink: []string{applicant.ID},
		}
		if profile.Personal.Name != "" {
			fields[fieldFullName] = profile.Personal.Name
		}
		if profile.Personal.Location != "" {
			fields[fieldLocation] = profile.Personal.Location
		}
		if err := d.upsertLinked(ctx, d.cfg.Tables.PersonalDetails, applicantKey, fields, result); err != nil {
			return nil, err
		}
	}

	if !profile.Salary.IsEmpty() {
		fields := map[string]interface{}{
			d.cfg.Fields.ApplicantLink: []string{applicant.ID},
		}
		if profile.Salary.Rate != nil {
			fields[fieldPreferred] = *profile.Salary.Rate
		}
		if profile.Salary.Currency != "" {
			fields[fieldCurrency] = profile.Salary.Currency
		}
		if profile.Salary.Availability != nil {
			fields[fieldAvailability] = *profile.Salary.Availability
		}
		if err := d.upsertLinked(ctx, d.cfg.Tables.SalaryPreferences, applicantKey, fields, result); err != nil {
			return nil, err
		}
	}

	if err := d.expandExperience(ctx, applicant, applicantKey, profile.Experience, result); err != nil {
		return nil, err
	}

	d.logger.Info("decompression complete", map[string]interface{}{
		"applicantId": applicantID,
		"created":     result.Created,
		"updated":     result.Updated,
	})
	return result, nil
}

// upsertLinked updates the single linked row of a one-per-applicant table,
// creating it when absent.
func (d *Decompressor) upsertLinked(ctx context.Context, table, applicantKey string, fields map[string]interface{}, result *ExpandedRecords) error {
	existing, err := d.tables.ListRecords(ctx, table, linkFormula(d.cfg.Fields.ApplicantLink, applicantKey))
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		if _, err := d.tables.UpdateRecord(ctx, table, existing[0].ID, fields); err != nil {
			return err
		}
		result.Updated++
		return nil
	}
	if _, err := d.tables.CreateRecord(ctx, table, fields); err != nil {
		return err
	}
	result.Created++
	return nil
}

// expandExperience matches blob entries against existing work rows by
// lowercased (company, title); matched rows are patched, the rest created.
// Dates on existing rows are preserved since they are never part of the blob.
func (d *Decompressor) expandExperience(ctx context.Context, applicant *models.Record, applicantKey string, items []models.Experience, result *ExpandedRecords) error {
	existing, err := d.tables.ListRecords(ctx, d.cfg.Tables.WorkExperience,
		linkFormula(d.cfg.Fields.ApplicantLink, applicantKey))
	if err != nil {
		return err
	}

	type expKey struct{ company, title string }
	index := make(map[expKey][]models.Record)
	for _, row := range existing {
		key := expKey{
			company: strings.ToLower(strings.TrimSpace(row.String(fieldCompany))),
			title:   strings.ToLower(strings.TrimSpace(row.String(fieldTitle))),
		}
		index[key] = append(index[key], row)
	}

	for _, item := range items {
		company := strings.TrimSpace(item.Company)
		title := strings.TrimSpace(item.Title)
		key := expKey{company: strings.ToLower(company), title: strings.ToLower(title)}

		fields := map[string]interface{}{
			d.cfg.Fields.ApplicantLink: []string{applicant.ID},
		}
		if company != "" {
			fields[fieldCompany] = company
		}
		if title != "" {
			fields[fieldTitle] = title
		}

		if rows := index[key]; len(rows) > 0 {
			row := rows[0]
			index[key] = rows[1:]
			if _, err := d.tables.UpdateRecord(ctx, d.cfg.Tables.WorkExperience, row.ID, fields); err != nil {
				return err
			}
			result.Updated++
			continue
		}

		if _, err := d.tables.CreateRecord(ctx, d.cfg.Tables.WorkExperience, fields); err != nil {
			return err
		}
		result.Created++
	}

	return nil
}
