package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ApplicantsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_applicants_processed_total",
			Help: "Total number of applicants evaluated and written back",
		},
	)

	ApplicantsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_applicants_skipped_total",
			Help: "Total number of applicants skipped by the skip policy",
		},
	)

	ApplicantsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_applicants_failed_total",
			Help: "Total number of applicants that failed processing",
		},
		[]string{"reason"},
	)

	TableRequestRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "airtable_request_retries_total",
			Help: "Total number of retried table service requests",
		},
	)

	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of LLM evaluation requests",
		},
		[]string{"mode", "outcome"},
	)

	LLMRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "llm_request_duration_seconds",
			Help: "Duration of LLM evaluation requests in seconds",
		},
	)
)
