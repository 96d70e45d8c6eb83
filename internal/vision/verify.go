package vision

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const GeminiBaseURL = "https://generativelanguage.googleapis.com"

const verifyTimeout = 10 * time.Second

type geminiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// VerifyClaudeKey checks an Anthropic API key against the lightweight models
// endpoint. baseURL may be empty to use the public API.
func VerifyClaudeKey(ctx context.Context, baseURL, key string) error {
	if baseURL == "" {
		baseURL = ClaudeBaseURL
	}
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	apiErr := &claudeErrorResponse{}
	res, err := resty.New().
		SetBaseURL(baseURL).
		R().
		SetContext(ctx).
		SetHeader("x-api-key", key).
		SetHeader("anthropic-version", claudeAPIVersion).
		SetError(apiErr).
		Get("/v1/models")
	if err != nil {
		return verifyConnectionError(ctx)
	}
	if res.IsError() {
		if apiErr.Error.Message != "" {
			return errors.New(apiErr.Error.Message)
		}
		return fmt.Errorf("API key rejected (HTTP %d)", res.StatusCode())
	}
	return nil
}

// VerifyGeminiKey checks a Gemini API key by listing models. baseURL may be
// empty to use the public API.
func VerifyGeminiKey(ctx context.Context, baseURL, key string) error {
	if baseURL == "" {
		baseURL = GeminiBaseURL
	}
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	apiErr := &geminiErrorResponse{}
	res, err := resty.New().
		SetBaseURL(baseURL).
		R().
		SetContext(ctx).
		SetQueryParam("key", key).
		SetError(apiErr).
		Get("/v1beta/models")
	if err != nil {
		return verifyConnectionError(ctx)
	}

	switch res.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		if apiErr.Error.Message != "" {
			return errors.New(apiErr.Error.Message)
		}
		return fmt.Errorf("API key rejected (HTTP %d)", res.StatusCode())
	default:
		return fmt.Errorf("unexpected response (HTTP %d)", res.StatusCode())
	}
}

func verifyConnectionError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.New("connection timed out - check your internet")
	}
	return errors.New("connection failed - check your internet")
}
