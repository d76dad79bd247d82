package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mikey/llm-compliance-filter/internal/core"
)

// classifyResponse mirrors the JSON contract the model is asked to follow
type classifyResponse struct {
	Violation  *bool       `json:"violation"`
	Category   string      `json:"category"`
	Reasoning  string      `json:"reasoning"`
	Evidence   []string    `json:"evidence"`
	Confidence json.Number `json:"confidence"`
}

// Parse validates a raw model response against the classification schema.
// This is a strict gate, not best-effort parsing: downstream risk scoring
// depends on category being a known value, so anything outside the schema
// is rejected with ErrMalformedResponse.
func Parse(responseText string, categories *CategorySet) (*core.Classification, error) {
	jsonStr, ok := extractJSON(responseText)
	if !ok {
		return nil, fmt.Errorf("no JSON object in response: %w", core.ErrMalformedResponse)
	}

	var resp classifyResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response (%v): %w", err, core.ErrMalformedResponse)
	}

	if resp.Violation == nil {
		return nil, fmt.Errorf("missing violation field: %w", core.ErrMalformedResponse)
	}
	if strings.TrimSpace(resp.Reasoning) == "" {
		return nil, fmt.Errorf("missing reasoning: %w", core.ErrMalformedResponse)
	}

	rawCategory := resp.Category
	if !*resp.Violation && strings.TrimSpace(rawCategory) == "" {
		rawCategory = CompliantCategory
	}
	category, ok := categories.Canonical(rawCategory)
	if !ok {
		return nil, fmt.Errorf("category %q not in the enumerated set: %w", resp.Category, core.ErrMalformedResponse)
	}

	confidence := 0
	if n, err := resp.Confidence.Int64(); err == nil {
		confidence = int(n)
	}

	return &core.Classification{
		Category:   category,
		Violation:  *resp.Violation,
		Reasoning:  strings.TrimSpace(resp.Reasoning),
		Evidence:   resp.Evidence,
		Confidence: confidence,
	}, nil
}

// extractJSON pulls the outermost JSON object out of a response that may
// be wrapped in markdown fences or prose
func extractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}
