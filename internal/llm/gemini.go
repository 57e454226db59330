package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"applicant-pipeline/internal/common/config"
	apperrors "applicant-pipeline/internal/common/errors"
	"applicant-pipeline/internal/common/logger"
	"applicant-pipeline/internal/common/metrics"
	"applicant-pipeline/internal/models"
)

// GeminiClient calls the Gemini API through langchaingo. One prompt in, one
// parsed evaluation out; no state is retained between calls.
type GeminiClient struct {
	model      llms.Model
	timeout    time.Duration
	maxRetries int
	logger     logger.Logger
}

func NewGeminiClient(ctx context.Context, cfg config.LLMConfig, log logger.Logger) (*GeminiClient, error) {
	model, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, apperrors.NewLLMCallFailedError(err)
	}

	return &GeminiClient{
		model:      model,
		timeout:    config.GetDuration(cfg.Timeout),
		maxRetries: cfg.MaxRetries,
		logger:     log.With(map[string]interface{}{"component": "llm", "model": cfg.Model}),
	}, nil
}

func (c *GeminiClient) Evaluate(ctx context.Context, prompt string) (*models.Evaluation, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	text, err := c.generate(ctx, prompt)
	metrics.LLMRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LLMRequests.WithLabelValues("live", "error").Inc()
		return nil, apperrors.NewLLMCallFailedError(err)
	}

	eval, err := ParseResponse(text)
	if err != nil {
		metrics.LLMRequests.WithLabelValues("live", "parse_error").Inc()
		return nil, err
	}

	metrics.LLMRequests.WithLabelValues("live", "ok").Inc()
	c.logger.Info("evaluation completed", map[string]interface{}{
		"score":     eval.Score,
		"followUps": len(eval.FollowUps),
	})
	return eval, nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(500*(1<<(attempt-1))) * time.Millisecond
			c.logger.Warn("retrying LLM request", map[string]interface{}{
				"attempt": attempt,
				"delay":   backoff.String(),
			})
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			continue
		}
		if strings.TrimSpace(text) == "" {
			lastErr = errors.New("empty response text")
			continue
		}
		return text, nil
	}

	return "", lastErr
}
