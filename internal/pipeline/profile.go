package pipeline

import (
	"strings"

	"applicant-pipeline/internal/models"
)

// Field names on the related tables. The form defines these, so unlike the
// applicant-row field names they are not configurable.
const (
	fieldFullName     = "Full Name"
	fieldLocation     = "Location"
	fieldCompany      = "Company"
	fieldTitle        = "Title"
	fieldStart        = "Start"
	fieldEnd          = "End"
	fieldPreferred    = "Preferred Rate"
	fieldMinimum      = "Minimum Rate"
	fieldCurrency     = "Currency"
	fieldAvailability = "Availability (hrs/wk)"
)

// BuildProfile compresses an applicant's related rows into the compact
// profile that gets serialized into the Compressed JSON field.
func BuildProfile(related *relatedRecords) models.Profile {
	profile := models.Profile{Experience: []models.Experience{}}

	if len(related.personal) > 0 {
		row := related.personal[0]
		profile.Personal = models.Personal{
			Name:     row.String(fieldFullName),
			Location: row.String(fieldLocation),
		}
	}

	for _, row := range related.work {
		company := strings.TrimSpace(row.String(fieldCompany))
		title := strings.TrimSpace(row.String(fieldTitle))
		if company == "" && title == "" {
			continue
		}
		profile.Experience = append(profile.Experience, models.Experience{
			Company: company,
			Title:   title,
		})
	}

	if len(related.salary) > 0 {
		row := related.salary[0]
		profile.Salary = models.Salary{
			Currency: row.String(fieldCurrency),
		}
		if rate, ok := preferredRate(row); ok {
			profile.Salary.Rate = &rate
		}
		if row.Has(fieldAvailability) {
			avail := row.Number(fieldAvailability, 0)
			profile.Salary.Availability = &avail
		}
	}

	return profile
}

// preferredRate reads Preferred Rate with Minimum Rate as the fallback.
func preferredRate(row models.Record) (float64, bool) {
	if row.Has(fieldPreferred) {
		return row.Number(fieldPreferred, 0), true
	}
	if row.Has(fieldMinimum) {
		return row.Number(fieldMinimum, 0), true
	}
	return 0, false
}
