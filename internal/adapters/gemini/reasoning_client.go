package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/llm-compliance-filter/internal/core"
	"github.com/mikey/llm-compliance-filter/internal/prompt"
	"github.com/mikey/llm-compliance-filter/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ReasoningClient is an implementation of the ReasoningClient interface
// using Google Gemini
type ReasoningClient struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	timeout       time.Duration
	categories    *prompt.CategorySet
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

// NewReasoningClient creates a new Gemini reasoning client
func NewReasoningClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	timeout time.Duration,
	categories *prompt.CategorySet,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
) (*ReasoningClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.ResponseMIMEType = "application/json"

	return &ReasoningClient{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		timeout:       timeout,
		categories:    categories,
		textProcessor: textProcessor,
		logger:        logger,
	}, nil
}

// Close closes the Gemini client
func (c *ReasoningClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Classify builds the classification prompt, calls the model through the
// shared bounded-retry contract, and stamps the model used
func (c *ReasoningClient) Classify(ctx context.Context, query *core.EmailRecord, examples core.RetrievalResult) (*core.Classification, error) {
	body := c.textProcessor.ProcessText(query.Body, c.maxBodySize)
	basePrompt := prompt.Classify(query, body, examples, c.categories)

	classification, err := prompt.ClassifyWithRetry(ctx, query.ID, basePrompt, c.complete, c.logger)
	if err != nil {
		return nil, err
	}
	classification.ModelUsed = c.modelName
	return classification, nil
}

func (c *ReasoningClient) complete(ctx context.Context, userPrompt string) (*core.Classification, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %v: %w", err, core.ErrUpstreamUnavailable)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from Gemini: %w", core.ErrUpstreamUnavailable)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	return prompt.Parse(b.String(), c.categories)
}
