package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikey/llm-compliance-filter/internal/core"
	"go.uber.org/zap"
)

// CompleteFunc performs a single model invocation with the given prompt
// and parses the response through the schema gate
type CompleteFunc func(ctx context.Context, prompt string) (*core.Classification, error)

// ClassifyWithRetry drives the classification contract shared by every
// reasoning adapter: one attempt with the base prompt, then one bounded
// retry with the strict re-prompt when the response is malformed. A
// second malformed response surfaces as ErrClassificationFailed so the
// email is flagged for manual review. Any other error (transport,
// timeout) is returned unchanged and never retried here.
func ClassifyWithRetry(ctx context.Context, emailID, basePrompt string, complete CompleteFunc, logger *zap.Logger) (*core.Classification, error) {
	classification, err := complete(ctx, basePrompt)
	if err == nil {
		return classification, nil
	}
	if !errors.Is(err, core.ErrMalformedResponse) {
		return nil, err
	}

	logger.Warn("Malformed classification response, retrying with strict prompt",
		zap.String("email_id", emailID),
		zap.Error(err))

	classification, err = complete(ctx, Strict(basePrompt))
	if err != nil {
		if errors.Is(err, core.ErrMalformedResponse) {
			return nil, fmt.Errorf("retry also malformed: %v: %w", err, core.ErrClassificationFailed)
		}
		return nil, err
	}
	return classification, nil
}
