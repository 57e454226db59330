// Package llm evaluates applicant profiles with a generative-text API. A mock
// implementation stands in for the remote service in tests and offline runs.
package llm

import (
	"context"

	"applicant-pipeline/internal/common/config"
	"applicant-pipeline/internal/common/logger"
	"applicant-pipeline/internal/models"
)

// Evaluator turns a prompt into a structured evaluation result.
type Evaluator interface {
	Evaluate(ctx context.Context, prompt string) (*models.Evaluation, error)
}

// New selects the evaluator implementation from configuration: the
// deterministic mock when cfg.Mock is set, otherwise the live Gemini client.
func New(ctx context.Context, cfg config.LLMConfig, log logger.Logger) (Evaluator, error) {
	if cfg.Mock {
		return NewMockClient(), nil
	}
	return NewGeminiClient(ctx, cfg, log)
}
