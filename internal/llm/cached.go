package llm

import (
	"context"

	"applicant-pipeline/internal/common/cache"
	"applicant-pipeline/internal/models"
)

// cachedEvaluator consults the evaluation cache before delegating to the
// wrapped evaluator. Cache errors never surface; they fall through to a live
// call.
type cachedEvaluator struct {
	inner Evaluator
	cache *cache.Client
}

// WithCache wraps an evaluator with the evaluation cache. A nil cache returns
// the evaluator unchanged.
func WithCache(inner Evaluator, c *cache.Client) Evaluator {
	if c == nil {
		return inner
	}
	return &cachedEvaluator{inner: inner, cache: c}
}

func (e *cachedEvaluator) Evaluate(ctx context.Context, prompt string) (*models.Evaluation, error) {
	key := cache.Key(prompt)
	if eval, ok := e.cache.GetEvaluation(ctx, key); ok {
		return eval, nil
	}

	eval, err := e.inner.Evaluate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	e.cache.PutEvaluation(ctx, key, eval)
	return eval, nil
}
