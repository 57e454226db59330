// Command compress runs the compress+evaluate flow for a single applicant.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"applicant-pipeline/internal/airtable"
	"applicant-pipeline/internal/common/cache"
	"applicant-pipeline/internal/common/config"
	"applicant-pipeline/internal/common/logger"
	"applicant-pipeline/internal/llm"
	"applicant-pipeline/internal/pipeline"
)

func main() {
	applicantID := flag.String("applicant-id", "", "applicant record id or Applicant ID field value")
	flag.Parse()

	if *applicantID == "" {
		fmt.Fprintln(os.Stderr, "--applicant-id is required")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx := context.Background()

	evaluator, err := llm.New(ctx, cfg.LLM, log)
	if err != nil {
		zapLog.Fatal("llm client failed", zap.Error(err))
	}

	evalCache := cache.New(cfg.Cache)
	defer evalCache.Close()
	evaluator = llm.WithCache(evaluator, evalCache)

	tables := airtable.NewClient(cfg.Airtable, log)
	compressor := pipeline.NewCompressor(tables, evaluator, cfg, log)

	outcome, err := compressor.Process(ctx, *applicantID)
	if err != nil {
		zapLog.Error("processing failed", zap.String("applicantId", *applicantID), zap.Error(err))
		os.Exit(1)
	}

	switch outcome.Status {
	case pipeline.StatusSkipped:
		fmt.Printf("%s: skipped (evaluation already present)\n", *applicantID)
	default:
		fmt.Printf("%s: evaluated, score %d, shortlisted=%v\n",
			*applicantID, outcome.Evaluation.Score, outcome.Shortlisted)
	}
}
