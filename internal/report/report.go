package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mikey/llm-compliance-filter/internal/core"
)

// maxFactors limits how many contributing factors are flattened into the
// report column
const maxFactors = 3

// maxReasoningLen keeps the reasoning column readable in tabular viewers
const maxReasoningLen = 200

// Header is the column layout of the alert report
var Header = []string{
	"email_id",
	"status",
	"category",
	"violation",
	"risk_score",
	"tier",
	"top_contributing_factors",
	"retrieved_neighbor_ids",
	"reasoning_summary",
}

// WriteCSV serializes alerts, already ordered by the engine, as a flat
// CSV report
func WriteCSV(w io.Writer, alerts []core.Alert) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for i := range alerts {
		if err := cw.Write(row(&alerts[i])); err != nil {
			return fmt.Errorf("failed to write alert %s: %w", alerts[i].EmailID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}

func row(alert *core.Alert) []string {
	category := ""
	violation := ""
	reasoning := alert.FailureReason
	if alert.Classification != nil {
		category = alert.Classification.Category
		violation = strconv.FormatBool(alert.Classification.Violation)
		reasoning = alert.Classification.Reasoning
	}

	score := ""
	tier := ""
	factors := ""
	if alert.Risk != nil {
		score = strconv.FormatFloat(alert.Risk.Score, 'f', 2, 64)
		tier = string(alert.Risk.Tier)
		factors = formatFactors(alert.Risk.Factors)
	}

	return []string{
		alert.EmailID,
		string(alert.Status),
		category,
		violation,
		score,
		tier,
		factors,
		strings.Join(alert.Neighbors.RecordIDs(), ";"),
		truncate(reasoning, maxReasoningLen),
	}
}

func formatFactors(factors []core.Factor) string {
	parts := make([]string, 0, maxFactors)
	for i, f := range factors {
		if i >= maxFactors {
			break
		}
		parts = append(parts, fmt.Sprintf("%s=%.1f", f.Name, f.Weight))
	}
	return strings.Join(parts, ";")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
