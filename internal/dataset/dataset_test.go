package dataset

import (
	"strings"
	"testing"

	"github.com/mikey/llm-compliance-filter/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const historyCSV = `Date,From,To,Subject,Body,Classification,Category
2026-03-01,trader@bank.com,"assistant@bank.com;broker@rival.com",Files,Please shred the files before the audit.,non_compliant,obstruction
2026-03-02,analyst@bank.com,team@bank.com,Lunch,Team lunch at noon.,compliant,
2026-03-03,x@bank.com,y@bank.com,Broken,,non_compliant,secrecy
2026-03-04,x@bank.com,y@bank.com,Bad label,Some body text.,spam,secrecy
`

func TestLoadHistory(t *testing.T) {
	records, rejected, err := LoadHistory(strings.NewReader(historyCSV))
	require.NoError(t, err)

	require.Len(t, records, 2)
	require.Len(t, rejected, 2)

	first := records[0]
	assert.Equal(t, "trader@bank.com", first.Sender)
	assert.Equal(t, []string{"assistant@bank.com", "broker@rival.com"}, first.Recipients)
	assert.Equal(t, core.LabelNonCompliant, first.Label)
	assert.Equal(t, "obstruction", first.Category)
	assert.Equal(t, 2026, first.Timestamp.Year())
	assert.NotEmpty(t, first.ID)

	// A compliant row with no category defaults to "compliant".
	assert.Equal(t, "compliant", records[1].Category)

	assert.Equal(t, 4, rejected[0].Row)
	assert.Contains(t, rejected[0].Reason, "empty body")
	assert.Equal(t, 5, rejected[1].Row)
	assert.Contains(t, rejected[1].Reason, "invalid classification")
}

func TestLoadQueries(t *testing.T) {
	csv := `Date,From,To,Subject,Body
2026-03-05 09:30:00,trader@bank.com,broker@rival.com,Urgent,Delete the deal room tonight.
,hr@bank.com,all@bank.com,Notice,Office closed Monday.
`
	records, rejected, err := LoadQueries(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Empty(t, rejected)

	assert.Equal(t, core.LabelUnknown, records[0].Label)
	assert.False(t, records[0].Timestamp.IsZero())
	assert.True(t, records[1].Timestamp.IsZero(), "a missing date is allowed")
}

func TestLoadRejectsMissingColumns(t *testing.T) {
	csv := `From,Subject,Body
a@bank.com,Hi,Hello there.
`
	_, _, err := LoadQueries(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
	assert.Contains(t, err.Error(), "date")
	assert.Contains(t, err.Error(), "to")
}

func TestLoadRejectsInvalidDate(t *testing.T) {
	csv := `Date,From,To,Subject,Body
03/05/2026,a@bank.com,b@bank.com,Hi,Hello there.
`
	records, rejected, err := LoadQueries(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Empty(t, records)
	require.Len(t, rejected, 1)
	assert.Contains(t, rejected[0].Reason, "invalid date")
}

func TestLoadHeaderIsCaseInsensitive(t *testing.T) {
	csv := `DATE,FROM,TO,SUBJECT,BODY
2026-03-05,a@bank.com,b@bank.com,Hi,Hello there.
`
	records, rejected, err := LoadQueries(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, rejected)
}
