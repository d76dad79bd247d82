package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mikey/llm-compliance-filter/internal/core"
	"github.com/mikey/llm-compliance-filter/internal/dataset"
	"github.com/mikey/llm-compliance-filter/internal/di"
	"github.com/mikey/llm-compliance-filter/internal/report"
	"go.uber.org/zap"
)

var (
	queryFile  = flag.String("file", "", "CSV file of emails to evaluate (required)")
	outputFile = flag.String("out", "", "Output CSV report file (stdout if not specified)")
)

func main() {
	flag.Parse()

	if *queryFile == "" {
		fmt.Println("Usage: compliance-check -file <emails.csv> [-out <report.csv>]")
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
	reasoner core.ReasoningClient,
) error {
	defer logger.Sync()
	defer func() {
		if err := index.Close(); err != nil {
			logger.Error("Failed to close index", zap.Error(err))
		}
	}()
	defer closeClient(logger, "reasoning client", reasoner)
	defer closeClient(logger, "embedding client", embedder)

	file, err := os.Open(*queryFile)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	emails, rejected, err := dataset.LoadQueries(file)
	if err != nil {
		return fmt.Errorf("failed to load input file: %w", err)
	}
	for _, r := range rejected {
		logger.Warn("Rejected input row",
			zap.Int("row", r.Row),
			zap.String("reason", r.Reason))
	}
	logger.Info("Loaded emails for evaluation",
		zap.Int("emails", len(emails)),
		zap.Int("rejected", len(rejected)),
		zap.Int("index_size", index.Size()))

	startTime := time.Now()
	alerts, err := engine.Evaluate(context.Background(), emails)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	duration := time.Since(startTime)

	var out io.Writer = os.Stdout
	if *outputFile != "" {
		f, err := os.Create(*outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := report.WriteCSV(out, alerts); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	var violations, degraded int
	for i := range alerts {
		if alerts[i].Status == core.StatusNeedsReview {
			degraded++
			continue
		}
		if alerts[i].Classification != nil && alerts[i].Classification.Violation {
			violations++
		}
	}

	logger.Info("Evaluation complete",
		zap.Int("alerts", len(alerts)),
		zap.Int("violations", violations),
		zap.Int("needs_review", degraded),
		zap.Duration("duration", duration))

	return nil
}

// closeClient closes a provider client when its implementation holds
// resources (the Gemini clients do)
func closeClient(logger *zap.Logger, name string, client interface{}) {
	if closer, ok := client.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close "+name, zap.Error(err))
		}
	}
}
