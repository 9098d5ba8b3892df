package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/virtualstage/backlot/pkg/metrics"
)

const (
	// DefaultBaseURL points at the OpenAI REST API.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is the completion model used for script analysis.
	DefaultModel = "gpt-4o"

	defaultRequestTimeout = 120 * time.Second
	maxErrorBodyBytes     = 4096
)

// Config configures the completion client.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client is a minimal chat-completions client. Credential material is sent
// only as an Authorization header and is never echoed in errors or logs.
type Client struct {
	cfg Config
}

// Message is a single chat message in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest describes one chat completion call.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	// JSONResponse requests the json_object response format. Callers should
	// be prepared to retry without it for models that reject the parameter.
	JSONResponse bool
}

// ErrResponseFormat reports that the upstream model rejected the structured
// response_format parameter.
var ErrResponseFormat = errors.New("ai: response_format not supported")

// NewClient builds a completion client. The API key is required; deployments
// without one skip constructing the client and surface a configuration error
// at the call site instead.
func NewClient(cfg Config) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, errors.New("ai: api key is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRequestTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg}, nil
}

// Model returns the configured default model.
func (c *Client) Model() string {
	return c.cfg.Model
}

// CreateCompletion performs a chat completion call and returns the content of
// the first choice.
func (c *Client) CreateCompletion(ctx context.Context, req CompletionRequest) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.cfg.Model
	}
	if len(req.Messages) == 0 {
		return "", errors.New("ai: at least one message is required")
	}

	body := map[string]any{
		"model":       model,
		"messages":    req.Messages,
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}
	if req.JSONResponse {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("ai: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	res, err := c.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		metrics.LLMRequestDuration.WithLabelValues(model, "error").Observe(time.Since(start).Seconds())
		return "", fmt.Errorf("ai: request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		metrics.LLMRequestDuration.WithLabelValues(model, "error").Observe(time.Since(start).Seconds())
		raw, readErr := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
		if readErr != nil {
			return "", fmt.Errorf("ai: read error body: %w", readErr)
		}
		message := strings.TrimSpace(string(raw))
		if req.JSONResponse && isResponseFormatError(message) {
			return "", fmt.Errorf("%w: status %d", ErrResponseFormat, res.StatusCode)
		}
		return "", fmt.Errorf("ai: request status %d: %s", res.StatusCode, message)
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		metrics.LLMRequestDuration.WithLabelValues(model, "error").Observe(time.Since(start).Seconds())
		return "", fmt.Errorf("ai: decode response: %w", err)
	}
	metrics.LLMRequestDuration.WithLabelValues(model, "success").Observe(time.Since(start).Seconds())

	if len(decoded.Choices) == 0 {
		return "", errors.New("ai: response contained no choices")
	}
	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("ai: response contained no content")
	}
	return content, nil
}

func isResponseFormatError(message string) bool {
	lowered := strings.ToLower(message)
	return strings.Contains(lowered, "response_format") || strings.Contains(lowered, "not supported")
}
