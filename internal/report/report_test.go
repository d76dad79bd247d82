package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/mikey/llm-compliance-filter/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSVClassifiedAlert(t *testing.T) {
	alerts := []core.Alert{
		{
			EmailID: "abc123",
			Status:  core.StatusClassified,
			Classification: &core.Classification{
				Category:  "obstruction",
				Violation: true,
				Reasoning: "asks to destroy records before the audit",
			},
			Risk: &core.RiskAssessment{
				Score: 87,
				Tier:  core.TierCritical,
				Factors: []core.Factor{
					{Name: "category:obstruction", Weight: 70},
					{Name: "participant_count", Weight: 2},
					{Name: "external_participant", Weight: 15},
				},
			},
			Neighbors: core.RetrievalResult{
				{Entry: core.IndexEntry{RecordID: "h1"}},
				{Entry: core.IndexEntry{RecordID: "h2"}},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, alerts))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Header, rows[0])

	row := rows[1]
	assert.Equal(t, "abc123", row[0])
	assert.Equal(t, "classified", row[1])
	assert.Equal(t, "obstruction", row[2])
	assert.Equal(t, "true", row[3])
	assert.Equal(t, "87.00", row[4])
	assert.Equal(t, "critical", row[5])
	assert.Equal(t, "category:obstruction=70.0;participant_count=2.0;external_participant=15.0", row[6])
	assert.Equal(t, "h1;h2", row[7])
	assert.Equal(t, "asks to destroy records before the audit", row[8])
}

func TestWriteCSVDegradedAlert(t *testing.T) {
	alerts := []core.Alert{
		{
			EmailID:       "def456",
			Status:        core.StatusNeedsReview,
			FailureReason: "embedding backend unreachable",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, alerts))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[1]
	assert.Equal(t, "needs_review", row[1])
	assert.Empty(t, row[2])
	assert.Empty(t, row[4])
	assert.Empty(t, row[5])
	assert.Equal(t, "embedding backend unreachable", row[8],
		"the failure reason stands in for reasoning")
}

func TestWriteCSVTruncatesReasoning(t *testing.T) {
	alerts := []core.Alert{
		{
			EmailID: "g",
			Status:  core.StatusClassified,
			Classification: &core.Classification{
				Category:  "secrecy",
				Reasoning: strings.Repeat("x", 500),
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, alerts))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	reasoning := rows[1][8]
	assert.Len(t, reasoning, 203)
	assert.True(t, strings.HasSuffix(reasoning, "..."))
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "an empty batch still gets a header")
}
