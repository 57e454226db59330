package pipeline

import (
	"fmt"
	"strings"
	"time"

	"applicant-pipeline/internal/models"
)

var tier1Companies = map[string]struct{}{
	"google": {}, "alphabet": {}, "meta": {}, "facebook": {}, "openai": {},
	"apple": {}, "amazon": {}, "aws": {}, "microsoft": {}, "netflix": {},
	"stripe": {}, "airbnb": {}, "uber": {}, "lyft": {}, "databricks": {},
	"nvidia": {}, "tesla": {}, "doordash": {}, "snowflake": {},
}

var allowedLocations = []string{
	"us", "usa", "united states", "canada", "ca", "uk", "united kingdom",
	"great britain", "gb", "germany", "de", "india", "in",
}

// ShortlistDecision is the rule-based screen applied before the LLM pass.
type ShortlistDecision struct {
	Passed bool
	Reason string
}

// EvaluateShortlist applies the screening rules: seasoned (>= 4 years total
// or a tier-1 employer), affordable (rate <= 100/hr), available (>= 20
// hrs/wk), and located in a target region.
func EvaluateShortlist(related *relatedRecords, now time.Time) ShortlistDecision {
	var personal, salary models.Record
	if len(related.personal) > 0 {
		personal = related.personal[0]
	}
	if len(related.salary) > 0 {
		salary = related.salary[0]
	}

	years := totalYearsExperience(related.work, now)
	tier1 := workedAtTier1(related.work)

	rate := 999.0
	if r, ok := preferredRate(salary); ok {
		rate = r
	}
	avail := salary.Number(fieldAvailability, 0)

	location := strings.ToLower(personal.String(fieldLocation))
	locationOK := false
	for _, tok := range allowedLocations {
		if strings.Contains(location, tok) {
			locationOK = true
			break
		}
	}

	expOK := years >= 4.0 || tier1
	rateOK := rate <= 100
	availOK := avail >= 20

	tier1Str := "no"
	if tier1 {
		tier1Str = "yes"
	}
	reason := fmt.Sprintf(
		"Experience: %s (%.2f yrs; tier1=%s); Comp: %s (rate=%g/hr; avail=%g hrs/wk); Location: %s (%s)",
		okOr(expOK, "OK", "Insufficient"), years, tier1Str,
		okOr(rateOK, "OK", "Too high"), rate, avail,
		okOr(locationOK, "OK", "Not target"), personal.String(fieldLocation),
	)

	return ShortlistDecision{
		Passed: expOK && rateOK && availOK && locationOK,
		Reason: reason,
	}
}

func okOr(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

// totalYearsExperience sums the day spans of all work rows. Rows with no
// parseable start date are ignored; an open end date counts up to now.
func totalYearsExperience(work []models.Record, now time.Time) float64 {
	totalDays := 0.0
	for _, row := range work {
		start := parseFlexibleDate(row.Fields[fieldStart])
		if start == nil {
			continue
		}
		end := parseFlexibleDate(row.Fields[fieldEnd])
		if end == nil {
			end = &now
		}
		if days := end.Sub(*start).Hours() / 24; days > 0 {
			totalDays += days
		}
	}
	years := totalDays / 365.25
	// round to 2 decimals to keep the reason string stable
	return float64(int(years*100+0.5)) / 100
}

func workedAtTier1(work []models.Record) bool {
	for _, row := range work {
		company := strings.ToLower(strings.TrimSpace(row.String(fieldCompany)))
		if company == "" {
			continue
		}
		for brand := range tier1Companies {
			if strings.Contains(company, brand) {
				return true
			}
		}
	}
	return false
}

// parseFlexibleDate accepts unix timestamps and "2006-01-02", "2006-01",
// "2006" strings, matching what the intake form has produced over time.
func parseFlexibleDate(value interface{}) *time.Time {
	switch v := value.(type) {
	case float64:
		t := time.Unix(int64(v), 0).UTC()
		return &t
	case string:
		s := v
		if len(s) > 10 {
			s = s[:10]
		}
		for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
	}
	return nil
}
