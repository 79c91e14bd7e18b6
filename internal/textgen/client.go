package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/adserve-labs/adengine/internal/models"
	"github.com/adserve-labs/adengine/internal/observability"
)

// Generator produces ad copy from a system prompt and a user prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Client talks to a chat-completion endpoint. Failures and deadline
// overruns surface as TextGenUnavailable and never mutate campaign state.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    observability.MetricsRegistry
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewClient creates a text generation client with a hard request timeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger, metrics observability.MetricsRegistry) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// Generate sends one chat completion request and returns the first
// choice's content, trimmed.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	outcome := "success"
	defer func() {
		c.metrics.IncrementTextGenRequests(outcome)
	}()

	reqBody, err := json.Marshal(chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		outcome = "failure"
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		outcome = "failure"
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		outcome = "failure"
		c.logger.Warn("text generation request failed", zap.Error(err))
		return "", models.NewTextGenUnavailable(err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		outcome = "failure"
		body, _ := io.ReadAll(resp.Body)
		return "", models.NewTextGenUnavailable(fmt.Errorf("http %d: %s", resp.StatusCode, string(body)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		outcome = "failure"
		return "", models.NewTextGenUnavailable(fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		outcome = "failure"
		return "", models.NewTextGenUnavailable(fmt.Errorf("empty completion"))
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
