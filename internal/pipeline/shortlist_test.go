package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"applicant-pipeline/internal/models"
)

func relatedWith(personal, salary map[string]interface{}, work ...map[string]interface{}) *relatedRecords {
	r := &relatedRecords{}
	if personal != nil {
		r.personal = []models.Record{{ID: "recP", Fields: personal}}
	}
	if salary != nil {
		r.salary = []models.Record{{ID: "recS", Fields: salary}}
	}
	for i, fields := range work {
		r.work = append(r.work, models.Record{ID: "recW" + string(rune('A'+i)), Fields: fields})
	}
	return r
}

func TestEvaluateShortlist(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	goodPersonal := map[string]interface{}{"Location": "New York, US"}
	goodSalary := map[string]interface{}{
		"Preferred Rate":        95.0,
		"Availability (hrs/wk)": 30.0,
	}
	longTenure := map[string]interface{}{
		"Company": "Initech",
		"Start":   "2015-01-01",
		"End":     "2021-01-01",
	}

	tests := []struct {
		name    string
		related *relatedRecords
		want    bool
	}{
		{
			name:    "all rules pass",
			related: relatedWith(goodPersonal, goodSalary, longTenure),
			want:    true,
		},
		{
			name: "tier1 employer substitutes for tenure",
			related: relatedWith(goodPersonal, goodSalary, map[string]interface{}{
				"Company": "Google LLC",
				"Start":   "2024-01-01",
			}),
			want: true,
		},
		{
			name: "open-ended role counts to now",
			related: relatedWith(goodPersonal, goodSalary, map[string]interface{}{
				"Company": "Initech",
				"Start":   "2019-01-01",
			}),
			want: true,
		},
		{
			name: "insufficient experience",
			related: relatedWith(goodPersonal, goodSalary, map[string]interface{}{
				"Company": "Initech",
				"Start":   "2024-01-01",
			}),
			want: false,
		},
		{
			name: "rate too high",
			related: relatedWith(goodPersonal, map[string]interface{}{
				"Preferred Rate":        150.0,
				"Availability (hrs/wk)": 30.0,
			}, longTenure),
			want: false,
		},
		{
			name: "minimum rate used as fallback",
			related: relatedWith(goodPersonal, map[string]interface{}{
				"Minimum Rate":          80.0,
				"Availability (hrs/wk)": 30.0,
			}, longTenure),
			want: true,
		},
		{
			name: "availability too low",
			related: relatedWith(goodPersonal, map[string]interface{}{
				"Preferred Rate":        95.0,
				"Availability (hrs/wk)": 10.0,
			}, longTenure),
			want: false,
		},
		{
			name: "location outside target regions",
			related: relatedWith(map[string]interface{}{"Location": "Sydney, Australia"},
				goodSalary, longTenure),
			want: false,
		},
		{
			name:    "no salary row fails on rate default",
			related: relatedWith(goodPersonal, nil, longTenure),
			want:    false,
		},
		{
			name:    "empty profile",
			related: relatedWith(nil, nil),
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := EvaluateShortlist(tt.related, now)
			assert.Equal(t, tt.want, decision.Passed, decision.Reason)
			assert.NotEmpty(t, decision.Reason)
		})
	}
}

func TestEvaluateShortlistReason(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	related := relatedWith(
		map[string]interface{}{"Location": "Toronto, Canada"},
		map[string]interface{}{"Preferred Rate": 90.0, "Availability (hrs/wk)": 25.0},
		map[string]interface{}{"Company": "Stripe", "Start": "2018-01-02", "End": "2023-01-02"},
	)

	decision := EvaluateShortlist(related, now)
	assert.True(t, decision.Passed)
	assert.Equal(t,
		"Experience: OK (5.00 yrs; tier1=yes); Comp: OK (rate=90/hr; avail=25 hrs/wk); Location: OK (Toronto, Canada)",
		decision.Reason)
}

func TestTotalYearsExperience(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		work []models.Record
		want float64
	}{
		{
			name: "closed span",
			work: []models.Record{{Fields: map[string]interface{}{
				"Start": "2020-01-01", "End": "2022-01-01",
			}}},
			want: 2.0,
		},
		{
			name: "year-month dates",
			work: []models.Record{{Fields: map[string]interface{}{
				"Start": "2020-01", "End": "2023-01",
			}}},
			want: 3.0,
		},
		{
			name: "missing start ignored",
			work: []models.Record{{Fields: map[string]interface{}{
				"End": "2022-01-01",
			}}},
			want: 0,
		},
		{
			name: "spans accumulate",
			work: []models.Record{
				{Fields: map[string]interface{}{"Start": "2018-01-01", "End": "2020-01-01"}},
				{Fields: map[string]interface{}{"Start": "2021-01-01", "End": "2023-01-01"}},
			},
			want: 4.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, totalYearsExperience(tt.work, now), 0.01)
		})
	}
}

func TestParseFlexibleDate(t *testing.T) {
	if got := parseFlexibleDate("2023-05-10"); assert.NotNil(t, got) {
		assert.Equal(t, 2023, got.Year())
	}
	if got := parseFlexibleDate("2023-05-10T00:00:00.000Z"); assert.NotNil(t, got) {
		assert.Equal(t, time.Month(5), got.Month())
	}
	if got := parseFlexibleDate(float64(1700000000)); assert.NotNil(t, got) {
		assert.Equal(t, 2023, got.Year())
	}
	assert.Nil(t, parseFlexibleDate("not a date"))
	assert.Nil(t, parseFlexibleDate(nil))
}
