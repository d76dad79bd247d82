package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mikey/llm-compliance-filter/internal/core"
	"github.com/mikey/llm-compliance-filter/internal/dataset"
	"github.com/mikey/llm-compliance-filter/internal/di"
	"go.uber.org/zap"
)

var (
	historyFile = flag.String("file", "", "CSV file of labeled history emails (required)")
	rebuild     = flag.Bool("rebuild", false, "Replace the entire index instead of upserting")
)

func main() {
	flag.Parse()

	if *historyFile == "" {
		fmt.Println("Usage: history-ingest -file <history.csv> [-rebuild]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	engine *core.ComplianceEngine,
	index core.VectorIndex,
	embedder core.EmbeddingClient,
) error {
	defer logger.Sync()
	defer func() {
		if err := index.Close(); err != nil {
			logger.Error("Failed to close index", zap.Error(err))
		}
	}()
	defer func() {
		if closer, ok := embedder.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close embedding client", zap.Error(err))
			}
		}
	}()

	file, err := os.Open(*historyFile)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	records, rejected, err := dataset.LoadHistory(file)
	if err != nil {
		return fmt.Errorf("failed to load history file: %w", err)
	}
	for _, r := range rejected {
		logger.Warn("Rejected history row",
			zap.Int("row", r.Row),
			zap.String("reason", r.Reason))
	}
	logger.Info("Loaded history records",
		zap.Int("records", len(records)),
		zap.Int("rejected", len(rejected)))

	ctx := context.Background()

	if *rebuild {
		if err := index.RebuildFrom(ctx, nil); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
		logger.Info("Cleared existing index before ingest")
	}

	summary, err := engine.IngestHistory(ctx, records)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	for _, f := range summary.Failures {
		logger.Warn("Record failed during ingest",
			zap.String("record_id", f.RecordID),
			zap.String("reason", f.Reason))
	}

	fmt.Printf("\n=== Ingest Summary ===\n")
	fmt.Printf("Inserted: %d\n", summary.Inserted)
	fmt.Printf("Replaced: %d\n", summary.Replaced)
	fmt.Printf("Failed: %d\n", summary.Failed)
	fmt.Printf("Index size: %d\n", index.Size())

	return nil
}
