package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-compliance-filter/internal/core"
	"github.com/mikey/llm-compliance-filter/internal/prompt"
	"github.com/mikey/llm-compliance-filter/internal/utils"
	"go.uber.org/zap"
)

// ReasoningClient is an implementation of the ReasoningClient interface
// using Amazon Bedrock
type ReasoningClient struct {
	client        *bedrockruntime.Client
	modelID       string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	timeout       time.Duration
	categories    *prompt.CategorySet
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

// NewReasoningClient creates a new Bedrock reasoning client
func NewReasoningClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	timeout time.Duration,
	categories *prompt.CategorySet,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
) *ReasoningClient {
	return &ReasoningClient{
		client:        client,
		modelID:       modelID,
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

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *ReasoningClient) isAnthropicModel() bool {
	return strings.Contains(c.modelID, "anthropic.")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *ReasoningClient) isAmazonTitanModel() bool {
	return strings.Contains(c.modelID, "amazon.titan")
}

// Classify builds the classification prompt, invokes the model through
// the shared bounded-retry contract, and stamps the model used
func (c *ReasoningClient) Classify(ctx context.Context, query *core.EmailRecord, examples core.RetrievalResult) (*core.Classification, error) {
	body := c.textProcessor.ProcessText(query.Body, c.maxBodySize)
	basePrompt := prompt.Classify(query, body, examples, c.categories)

	classification, err := prompt.ClassifyWithRetry(ctx, query.ID, basePrompt, c.complete, c.logger)
	if err != nil {
		return nil, err
	}
	classification.ModelUsed = c.modelID
	return classification, nil
}

func (c *ReasoningClient) complete(ctx context.Context, userPrompt string) (*core.Classification, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := c.buildPayload(userPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %v: %w", err, core.ErrUpstreamUnavailable)
	}

	responseText, err := c.extractText(resp.Body)
	if err != nil {
		return nil, err
	}

	return prompt.Parse(responseText, c.categories)
}

// buildPayload creates the request body for the configured model family
func (c *ReasoningClient) buildPayload(userPrompt string) ([]byte, error) {
	if c.isAnthropicModel() {
		return json.Marshal(map[string]interface{}{
			"anthropic_version": "bedrock-2023-05-31",
			"max_tokens":        c.maxTokens,
			"temperature":       c.temperature,
			"top_p":             c.topP,
			"messages": []map[string]interface{}{
				{"role": "user", "content": userPrompt},
			},
		})
	}
	if c.isAmazonTitanModel() {
		return json.Marshal(map[string]interface{}{
			"inputText": userPrompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	}
	return json.Marshal(map[string]interface{}{
		"prompt":      userPrompt,
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
		"top_p":       c.topP,
	})
}

// extractText pulls the generated text out of the model-family-specific
// response envelope
func (c *ReasoningClient) extractText(body []byte) (string, error) {
	if c.isAnthropicModel() {
		var claudeResp struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %v: %w", err, core.ErrUpstreamUnavailable)
		}
		if len(claudeResp.Content) == 0 {
			return "", fmt.Errorf("empty response from Claude model: %w", core.ErrUpstreamUnavailable)
		}
		return claudeResp.Content[0].Text, nil
	}

	if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %v: %w", err, core.ErrUpstreamUnavailable)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model: %w", core.ErrUpstreamUnavailable)
		}
		return titanResp.Results[0].OutputText, nil
	}

	var genericResp struct {
		Output   string `json:"output"`
		Text     string `json:"text"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal generic response: %v: %w", err, core.ErrUpstreamUnavailable)
	}
	switch {
	case genericResp.Output != "":
		return genericResp.Output, nil
	case genericResp.Text != "":
		return genericResp.Text, nil
	case genericResp.Response != "":
		return genericResp.Response, nil
	default:
		return string(body), nil
	}
}
