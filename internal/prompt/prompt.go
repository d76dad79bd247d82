package prompt

import (
	"fmt"
	"strings"

	"github.com/mikey/llm-compliance-filter/internal/core"
)

// classifyFormat is the prompt sent to the reasoning service. Retrieved
// examples are rendered as text with their label and category; raw
// vectors never reach the model.
const classifyFormat = `You are a bank compliance officer analyzing email communication for potential policy violations.
Analyze the target email and decide whether it violates policy. If it does, assign the single most relevant category from the list below.

Potential categories:
%s

Target email:
From: %s
To: %s
Subject: %s
Body:
%s

Here are previously reviewed emails for context:
%s

Respond with a JSON object containing:
- violation: boolean (true if the email violates policy)
- category: string (one of the categories above; use "compliant" when violation is false)
- reasoning: string (brief explanation of your decision)
- evidence: array of strings (lines quoted from the email supporting the decision)
- confidence: number between 1 and 5 (1 = not sure, 5 = very sure)

Respond only with the JSON object and nothing else.`

// strictSuffix is appended on the bounded retry after a malformed response
const strictSuffix = `

Your previous reply could not be parsed. Return ONLY the JSON object described above, with every field present, no markdown fences and no commentary.`

// Classify renders the classification prompt for a query email. The body
// is expected to be pre-processed (truncated/sanitized) by the caller.
func Classify(query *core.EmailRecord, body string, examples core.RetrievalResult, categories *CategorySet) string {
	return fmt.Sprintf(classifyFormat,
		categories.Bullets(),
		query.Sender,
		summarizeRecipients(query.Recipients),
		query.Subject,
		body,
		FormatExamples(examples))
}

// Strict returns the re-prompt used for the single bounded retry
func Strict(prompt string) string {
	return prompt + strictSuffix
}

// FormatExamples renders retrieved neighbors as labeled examples for the
// prompt. An empty retrieval is valid: the model is told to classify from
// general compliance knowledge instead.
func FormatExamples(examples core.RetrievalResult) string {
	if len(examples) == 0 {
		return "No similar examples found. Classify based on general compliance knowledge."
	}

	var b strings.Builder
	for i, n := range examples {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Example %d:\nLabel: %s\nCategory: %s\nBody: %s\n",
			i+1, n.Entry.Label, n.Entry.Category, strings.TrimSpace(n.Entry.Body))
	}
	return b.String()
}

func summarizeRecipients(recipients []string) string {
	if len(recipients) == 0 {
		return ""
	}
	to := recipients[0]
	if len(recipients) > 1 {
		to += fmt.Sprintf(" and %d others", len(recipients)-1)
	}
	return to
}
