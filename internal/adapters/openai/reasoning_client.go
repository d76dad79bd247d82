package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/mikey/llm-compliance-filter/internal/core"
	"github.com/mikey/llm-compliance-filter/internal/prompt"
	"github.com/mikey/llm-compliance-filter/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ReasoningClient is an implementation of the ReasoningClient interface
// using OpenAI chat completions
type ReasoningClient struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	timeout       time.Duration
	categories    *prompt.CategorySet
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

// NewReasoningClient creates a new OpenAI reasoning client
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
) *ReasoningClient {
	client := openai.NewClient(apiKey)

	return &ReasoningClient{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		timeout:       timeout,
		categories:    categories,
		textProcessor: textProcessor,
		logger:        logger,
	}
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

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a bank compliance analysis system. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %v: %w", err, core.ErrUpstreamUnavailable)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI: %w", core.ErrUpstreamUnavailable)
	}

	return prompt.Parse(resp.Choices[0].Message.Content, c.categories)
}
