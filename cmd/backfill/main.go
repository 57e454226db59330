// Command backfill processes every applicant in the base, compressing and
// evaluating each one and optionally re-expanding the blobs afterwards.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"applicant-pipeline/internal/airtable"
	"applicant-pipeline/internal/common/cache"
	"applicant-pipeline/internal/common/config"
	"applicant-pipeline/internal/common/logger"
	"applicant-pipeline/internal/llm"
	"applicant-pipeline/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Address != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
				zapLog.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	evaluator, err := llm.New(ctx, cfg.LLM, log)
	if err != nil {
		zapLog.Fatal("llm client failed", zap.Error(err))
	}

	evalCache := cache.New(cfg.Cache)
	defer evalCache.Close()
	evaluator = llm.WithCache(evaluator, evalCache)

	tables := airtable.NewClient(cfg.Airtable, log)
	compressor := pipeline.NewCompressor(tables, evaluator, cfg, log)
	decompressor := pipeline.NewDecompressor(tables, cfg, log)

	runner := pipeline.NewRunner(tables, compressor, decompressor, cfg, log)

	report, err := runner.Run(ctx)
	if err != nil {
		zapLog.Error("backfill aborted", zap.Error(err))
		os.Exit(1)
	}

	// per-applicant failures live in the report; only setup errors exit non-zero
	fmt.Printf("run %s: %d processed, %d skipped, %d failed of %d\n",
		report.RunID, report.Processed, report.Skipped, len(report.Failed), report.Total())
	for _, f := range report.Failed {
		fmt.Printf("  %s: %v\n", f.ApplicantID, f.Err)
	}
}
