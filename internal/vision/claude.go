package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	ClaudeBaseURL      = "https://api.anthropic.com"
	DefaultClaudeModel = "claude-3-5-sonnet-20241022"
	claudeAPIVersion   = "2023-06-01"
	defaultMaxTokens   = 1024
)

// Claude 3.5 Sonnet pricing (per million tokens)
const (
	claudeInputPricePerMillion  = 3.00
	claudeOutputPricePerMillion = 15.00
)

type ClaudeOpts struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// ClaudeAnalyzer posts screenshots to the Anthropic Messages API.
type ClaudeAnalyzer struct {
	httpClient *resty.Client
	model      string
	maxTokens  int
}

type claudeImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type claudeContentBlock struct {
	Type   string             `json:"type"`
	Text   string             `json:"text,omitempty"`
	Source *claudeImageSource `json:"source,omitempty"`
}

type claudeMessage struct {
	Role    string               `json:"role"`
	Content []claudeContentBlock `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Model   string               `json:"model"`
	Content []claudeContentBlock `json:"content"`
	Usage   struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
}

type claudeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewClaudeAnalyzer(opts ClaudeOpts) *ClaudeAnalyzer {
	a := ClaudeAnalyzer{model: DefaultClaudeModel, maxTokens: defaultMaxTokens}
	if opts.Model != "" {
		a.model = opts.Model
	}
	if opts.MaxTokens > 0 {
		a.maxTokens = opts.MaxTokens
	}
	baseURL := ClaudeBaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}

	a.httpClient = resty.New().
		SetDebug(false).
		SetBaseURL(baseURL).
		SetHeaders(
			map[string]string{
				"x-api-key":         opts.APIKey,
				"anthropic-version": claudeAPIVersion,
				"Content-Type":      "application/json",
			},
		)
	if opts.Timeout > 0 {
		a.httpClient.SetTimeout(opts.Timeout)
	}

	return &a
}

// Analyze implements the Analyzer interface using Claude.
func (a *ClaudeAnalyzer) Analyze(ctx context.Context, imageData []byte, mimeType string) (*Reply, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("no image data provided")
	}

	body := claudeRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages: []claudeMessage{{
			Role: "user",
			Content: []claudeContentBlock{
				{
					Type: "image",
					Source: &claudeImageSource{
						Type:      "base64",
						MediaType: mimeType,
						Data:      base64.StdEncoding.EncodeToString(imageData),
					},
				},
				{Type: "text", Text: Prompt()},
			},
		}},
	}

	result := &claudeResponse{}
	apiErr := &claudeErrorResponse{}
	res, err := a.httpClient.
		NewRequest().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		SetError(apiErr).
		Post("/v1/messages")
	if err := handleError(res, err, apiErr); err != nil {
		return nil, err
	}

	var parts []string
	for _, block := range result.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("no text content in Claude response")
	}

	usage := Usage{
		InputTokens:  result.Usage.InputTokens,
		OutputTokens: result.Usage.OutputTokens,
		TotalTokens:  result.Usage.InputTokens + result.Usage.OutputTokens,
	}
	usage.CostUSD = calculateCost(usage.InputTokens, usage.OutputTokens, claudeInputPricePerMillion, claudeOutputPricePerMillion)

	model := result.Model
	if model == "" {
		model = a.model
	}

	log.Info().
		Str("model", model).
		Int64("inputTokens", usage.InputTokens).
		Int64("outputTokens", usage.OutputTokens).
		Float64("costUSD", usage.CostUSD).
		Msg("vision llm call")

	return &Reply{Text: strings.Join(parts, "\n"), Model: model, Usage: usage}, nil
}

// handleError converts failing responses (>399 status code) into errors.
// Without this, failing responses would have nil error.
func handleError(res *resty.Response, err error, apiErr *claudeErrorResponse) error {
	if err != nil {
		return fmt.Errorf("claude request failed: %w", err)
	}
	if res.IsError() {
		if apiErr != nil && apiErr.Error.Message != "" {
			return fmt.Errorf("claude request failed (status: %d): %s: %s", res.StatusCode(), apiErr.Error.Type, apiErr.Error.Message)
		}
		return fmt.Errorf("request failed: %s %s (status: %d)", res.Request.Method, res.Request.URL, res.StatusCode())
	}
	return nil
}
