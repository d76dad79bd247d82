package prompt

import (
	"testing"

	"github.com/mikey/llm-compliance-filter/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCategories() *CategorySet {
	return NewCategorySet([]string{"obstruction", "secrecy", "market manipulation"})
}

func TestParseValidResponse(t *testing.T) {
	raw := `{"violation": true, "category": "obstruction", "reasoning": "asks to destroy records", "evidence": ["shred the files"], "confidence": 5}`

	c, err := Parse(raw, testCategories())
	require.NoError(t, err)
	assert.True(t, c.Violation)
	assert.Equal(t, "obstruction", c.Category)
	assert.Equal(t, "asks to destroy records", c.Reasoning)
	assert.Equal(t, []string{"shred the files"}, c.Evidence)
	assert.Equal(t, 5, c.Confidence)
}

func TestParseStripsMarkdownFences(t *testing.T) {
	raw := "Here is my analysis:\n```json\n{\"violation\": false, \"category\": \"compliant\", \"reasoning\": \"routine\", \"confidence\": 4}\n```\n"

	c, err := Parse(raw, testCategories())
	require.NoError(t, err)
	assert.False(t, c.Violation)
	assert.Equal(t, "compliant", c.Category)
}

func TestParseNonViolationWithEmptyCategoryDefaultsToCompliant(t *testing.T) {
	raw := `{"violation": false, "category": "", "reasoning": "no policy concern", "confidence": 3}`

	c, err := Parse(raw, testCategories())
	require.NoError(t, err)
	assert.Equal(t, CompliantCategory, c.Category)
}

func TestParseCategoryIsCaseInsensitive(t *testing.T) {
	raw := `{"violation": true, "category": "Market Manipulation", "reasoning": "coordinated trades", "confidence": 4}`

	c, err := Parse(raw, testCategories())
	require.NoError(t, err)
	assert.Equal(t, "market manipulation", c.Category, "canonical spelling from configuration wins")
}

func TestParseRejectsMalformedResponses(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"prose only", "The email looks fine to me."},
		{"invalid json", `{"violation": true,,}`},
		{"missing violation", `{"category": "obstruction", "reasoning": "x", "confidence": 3}`},
		{"missing reasoning", `{"violation": true, "category": "obstruction", "confidence": 3}`},
		{"blank reasoning", `{"violation": true, "category": "obstruction", "reasoning": "   ", "confidence": 3}`},
		{"category outside set", `{"violation": true, "category": "insider trading", "reasoning": "x", "confidence": 3}`},
		{"violation without category", `{"violation": true, "category": "", "reasoning": "x", "confidence": 3}`},
		{"empty string", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.raw, testCategories())
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrMalformedResponse)
		})
	}
}

func TestParseToleratesMissingConfidence(t *testing.T) {
	raw := `{"violation": true, "category": "secrecy", "reasoning": "hidden channel"}`

	c, err := Parse(raw, testCategories())
	require.NoError(t, err)
	assert.Equal(t, 0, c.Confidence)
}

func TestCategorySetAlwaysIncludesCompliant(t *testing.T) {
	s := NewCategorySet([]string{"obstruction"})

	canonical, ok := s.Canonical("COMPLIANT")
	require.True(t, ok)
	assert.Equal(t, CompliantCategory, canonical)
	assert.Contains(t, s.List(), CompliantCategory)
}

func TestCategorySetRejectsUnknown(t *testing.T) {
	_, ok := testCategories().Canonical("bribery")
	assert.False(t, ok)
}

func TestClassifyPromptContainsEmailAndExamples(t *testing.T) {
	query := &core.EmailRecord{
		Sender:     "trader@bank.com",
		Recipients: []string{"a@bank.com", "b@bank.com", "c@bank.com"},
		Subject:    "Files",
	}
	examples := core.RetrievalResult{
		{Entry: core.IndexEntry{RecordID: "h1", Label: core.LabelNonCompliant, Category: "obstruction", Body: "shred everything"}},
	}

	p := Classify(query, "please handle the files", examples, testCategories())

	assert.Contains(t, p, "trader@bank.com")
	assert.Contains(t, p, "a@bank.com and 2 others")
	assert.Contains(t, p, "please handle the files")
	assert.Contains(t, p, "- obstruction")
	assert.Contains(t, p, "shred everything")
	assert.Contains(t, p, "non_compliant")
}

func TestFormatExamplesEmptyRetrieval(t *testing.T) {
	out := FormatExamples(nil)
	assert.Contains(t, out, "No similar examples found")
}

func TestStrictAppendsReprompt(t *testing.T) {
	base := Classify(&core.EmailRecord{Sender: "x@bank.com"}, "body", nil, testCategories())
	strict := Strict(base)

	assert.Contains(t, strict, base)
	assert.Contains(t, strict, "ONLY the JSON object")
}
