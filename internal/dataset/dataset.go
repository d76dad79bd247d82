package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mikey/llm-compliance-filter/internal/core"
)

// CSV loading for the two external inputs: labeled history records and
// unlabeled emails to evaluate. Malformed rows are rejected individually
// with a per-row reason; the rest of the file is still loaded.

var historyColumns = []string{"date", "from", "to", "subject", "body", "classification", "category"}
var queryColumns = []string{"date", "from", "to", "subject", "body"}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// RowError describes a rejected CSV row
type RowError struct {
	Row    int
	Reason string
}

// LoadHistory parses labeled history records. Rows with an empty body or
// an unrecognized classification are rejected.
func LoadHistory(r io.Reader) ([]core.EmailRecord, []RowError, error) {
	rows, index, err := read(r, historyColumns)
	if err != nil {
		return nil, nil, err
	}

	var records []core.EmailRecord
	var rejected []RowError
	for i, row := range rows {
		record, reason := rowToRecord(row, index)
		if reason == "" {
			raw := field(row, index, "classification")
			label, ok := core.ParseLabel(raw)
			switch {
			case !ok || label == core.LabelUnknown:
				reason = fmt.Sprintf("invalid classification %q", raw)
			default:
				record.Label = label
				record.Category = field(row, index, "category")
				if record.Category == "" {
					record.Category = "compliant"
				}
			}
		}
		if reason != "" {
			rejected = append(rejected, RowError{Row: i + 2, Reason: reason})
			continue
		}
		record.EnsureID()
		records = append(records, record)
	}
	return records, rejected, nil
}

// LoadQueries parses unlabeled emails for evaluation
func LoadQueries(r io.Reader) ([]core.EmailRecord, []RowError, error) {
	rows, index, err := read(r, queryColumns)
	if err != nil {
		return nil, nil, err
	}

	var records []core.EmailRecord
	var rejected []RowError
	for i, row := range rows {
		record, reason := rowToRecord(row, index)
		if reason != "" {
			rejected = append(rejected, RowError{Row: i + 2, Reason: reason})
			continue
		}
		record.Label = core.LabelUnknown
		record.EnsureID()
		records = append(records, record)
	}
	return records, rejected, nil
}

func read(r io.Reader, required []string) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV rows: %w", err)
	}
	return rows, index, nil
}

func field(row []string, index map[string]int, name string) string {
	i := index[name]
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func rowToRecord(row []string, index map[string]int) (core.EmailRecord, string) {
	body := field(row, index, "body")
	if body == "" {
		return core.EmailRecord{}, "empty body"
	}

	record := core.EmailRecord{
		Sender:     field(row, index, "from"),
		Recipients: splitRecipients(field(row, index, "to")),
		Subject:    field(row, index, "subject"),
		Body:       body,
	}

	if raw := field(row, index, "date"); raw != "" {
		ts, err := parseDate(raw)
		if err != nil {
			return core.EmailRecord{}, fmt.Sprintf("invalid date %q", raw)
		}
		record.Timestamp = ts
	}

	return record, ""
}

func splitRecipients(to string) []string {
	fields := strings.FieldsFunc(to, func(r rune) bool {
		return r == ',' || r == ';'
	})
	recipients := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			recipients = append(recipients, f)
		}
	}
	return recipients
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}
