// Command decompress expands an applicant's compressed JSON blob back into
// the linked child tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"applicant-pipeline/internal/airtable"
	"applicant-pipeline/internal/common/config"
	"applicant-pipeline/internal/common/logger"
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

	tables := airtable.NewClient(cfg.Airtable, log)
	decompressor := pipeline.NewDecompressor(tables, cfg, log)

	expanded, err := decompressor.Expand(context.Background(), *applicantID)
	if err != nil {
		zapLog.Error("expand failed", zap.String("applicantId", *applicantID), zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("%s: %d records created, %d updated\n", *applicantID, expanded.Created, expanded.Updated)
}
