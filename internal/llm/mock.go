package llm

import (
	"context"

	"applicant-pipeline/internal/common/metrics"
	"applicant-pipeline/internal/models"
)

// MockClient returns a fixed evaluation without any network I/O. Used for
// offline runs and to avoid repeated paid calls while testing table wiring.
type MockClient struct {
	Result models.Evaluation
}

func NewMockClient() *MockClient {
	return &MockClient{
		Result: models.Evaluation{
			Summary:   "Mock evaluation: profile not reviewed by a model.",
			Score:     5,
			Issues:    []string{},
			FollowUps: []string{},
		},
	}
}

func (m *MockClient) Evaluate(_ context.Context, _ string) (*models.Evaluation, error) {
	metrics.LLMRequests.WithLabelValues("mock", "ok").Inc()

	out := m.Result
	out.Issues = append([]string{}, m.Result.Issues...)
	out.FollowUps = append([]string{}, m.Result.FollowUps...)
	return &out, nil
}
