package llm

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
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultHTTPTimeout = 60 * time.Second
)

// OpenAIClient wraps the OpenAI chat completions API in JSON mode.
type OpenAIClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option customizes the OpenAI client.
type Option func(*OpenAIClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *OpenAIClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *OpenAIClient) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewOpenAIClient constructs an OpenAI API client.
func NewOpenAIClient(apiKey, model string, opts ...Option) *OpenAIClient {
	client := &OpenAIClient{
		apiKey:     strings.TrimSpace(apiKey),
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// CompleteJSON runs one chat completion with response_format json_object
// and returns the content of the first choice.
func (c *OpenAIClient) CompleteJSON(ctx context.Context, messages []Message) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("openai: api key required")
	}
	if len(messages) == 0 {
		return "", errors.New("openai: messages required")
	}

	request := chatCompletionRequest{
		Model:          c.model,
		Messages:       encodeMessages(messages),
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	encoded, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("openai: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("openai: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("openai: api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openai: empty content")
	}
	return content, nil
}

// encodeMessages converts to the wire shape: single text parts collapse to
// a plain string content, mixed parts become a content array.
func encodeMessages(messages []Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		if len(m.Parts) == 1 && m.Parts[0].ImageBase64 == "" {
			out = append(out, chatMessage{Role: m.Role, Content: m.Parts[0].Text})
			continue
		}
		parts := make([]interface{}, 0, len(m.Parts))
		for _, p := range m.Parts {
			if p.ImageBase64 != "" {
				parts = append(parts, imagePart{
					Type:     "image_url",
					ImageURL: imageURL{URL: "data:image/jpeg;base64," + p.ImageBase64},
				})
			} else {
				parts = append(parts, textPart{Type: "text", Text: p.Text})
			}
		}
		out = append(out, chatMessage{Role: m.Role, Content: parts})
	}
	return out
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type textPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type imagePart struct {
	Type     string   `json:"type"`
	ImageURL imageURL `json:"image_url"`
}

type imageURL struct {
	URL string `json:"url"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}
