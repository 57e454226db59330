package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"applicant-pipeline/internal/common/config"
	apperrors "applicant-pipeline/internal/common/errors"
	"applicant-pipeline/internal/models"
)

// fakeTables is an in-memory TableAPI. It understands the two formula shapes
// the pipeline generates: {Field}='value' and FIND('value', ARRAYJOIN({Field})).
// Link columns hold record ids; like the real service, the FIND match also
// resolves a linked applicant's business id.
type fakeTables struct {
	mu      sync.Mutex
	records map[string][]*models.Record
	nextID  int
	updates int
	creates int
}

func newFakeTables() *fakeTables {
	return &fakeTables{records: make(map[string][]*models.Record)}
}

func (f *fakeTables) add(table string, fields map[string]interface{}) *models.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(table, fields)
}

func (f *fakeTables) insert(table string, fields map[string]interface{}) *models.Record {
	f.nextID++
	rec := &models.Record{
		ID:     fmt.Sprintf("rec%014d", f.nextID),
		Fields: cloneFields(fields),
	}
	f.records[table] = append(f.records[table], rec)
	return rec
}

func (f *fakeTables) count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records[table])
}

func (f *fakeTables) get(table, id string) *models.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records[table] {
		if rec.ID == id {
			return rec
		}
	}
	return nil
}

func (f *fakeTables) ListRecords(_ context.Context, table, formula string) ([]models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Record
	for _, rec := range f.records[table] {
		if f.matches(rec, formula) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeTables) GetRecord(_ context.Context, table, id string) (*models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records[table] {
		if rec.ID == id {
			copied := *rec
			copied.Fields = cloneFields(rec.Fields)
			return &copied, nil
		}
	}
	return nil, apperrors.NewRecordNotFoundError(table, id)
}

func (f *fakeTables) UpdateRecord(_ context.Context, table, id string, fields map[string]interface{}) (*models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records[table] {
		if rec.ID != id {
			continue
		}
		for k, v := range fields {
			rec.Fields[k] = v
		}
		f.updates++
		copied := *rec
		copied.Fields = cloneFields(rec.Fields)
		return &copied, nil
	}
	return nil, apperrors.NewRecordNotFoundError(table, id)
}

func (f *fakeTables) CreateRecord(_ context.Context, table string, fields map[string]interface{}) (*models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	rec := f.insert(table, fields)
	copied := *rec
	copied.Fields = cloneFields(rec.Fields)
	return &copied, nil
}

func (f *fakeTables) matches(rec *models.Record, formula string) bool {
	if formula == "" {
		return true
	}
	if strings.HasPrefix(formula, "FIND(") {
		needle := between(formula, "'", "'")
		field := between(formula[strings.Index(formula, "ARRAYJOIN"):], "{", "}")
		return f.linkContains(rec.Fields[field], needle)
	}
	// {Field}='value'
	field := between(formula, "{", "}")
	value := between(formula, "'", "'")
	return rec.String(field) == value
}

// linkContains mirrors ARRAYJOIN over a link column: each linked record
// renders as its primary field value, so a stored applicant record id joins
// as that applicant's business id and a raw "rec..." id never matches.
func (f *fakeTables) linkContains(value interface{}, needle string) bool {
	var items []string
	switch v := value.(type) {
	case string:
		items = []string{v}
	case []string:
		items = v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	default:
		return false
	}

	for _, item := range items {
		rendered := item
		for _, rec := range f.records["Applicants"] {
			if rec.ID == item {
				rendered = rec.String("Applicant ID")
				break
			}
		}
		if rendered != "" && strings.Contains(rendered, needle) {
			return true
		}
	}
	return false
}

func between(s, open, close string) string {
	start := strings.Index(s, open)
	if start < 0 {
		return ""
	}
	rest := s[start+len(open):]
	end := strings.Index(rest, close)
	if end < 0 {
		return ""
	}
	return rest[:end]
}

func cloneFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// countingEvaluator wraps an evaluator and records call counts. failWhen
// rejects prompts containing the marker.
type countingEvaluator struct {
	result   models.Evaluation
	calls    int
	failWhen string
}

func (e *countingEvaluator) Evaluate(_ context.Context, prompt string) (*models.Evaluation, error) {
	e.calls++
	if e.failWhen != "" && strings.Contains(prompt, e.failWhen) {
		return nil, apperrors.NewLLMCallFailedError(fmt.Errorf("synthetic failure"))
	}
	out := e.result
	return &out, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Tables: config.TablesConfig{
			Applicants:        "Applicants",
			PersonalDetails:   "Personal Details",
			WorkExperience:    "Work Experience",
			SalaryPreferences: "Salary Preferences",
			ShortlistedLeads:  "Shortlisted Leads",
		},
		Fields: config.FieldsConfig{
			ApplicantID:     "Applicant ID",
			ApplicantLink:   "Applicant",
			CompressedJSON:  "Compressed JSON",
			ShortlistStatus: "Shortlist Status",
			ScoreReason:     "Score Reason",
			Summary:         "LLM Summary",
			Score:           "LLM Score",
			Issues:          "LLM Issues",
			FollowUps:       "LLM Follow-Ups",
		},
	}
}
