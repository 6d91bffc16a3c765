package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	openAIBaseURL   = "https://api.openai.com/v1"
	openAIModel     = "gpt-4o"
	deepSeekBaseURL = "https://api.deepseek.com"
	deepSeekModel   = "deepseek-chat"
)

// OpenAIClient speaks the OpenAI chat-completions wire format. DeepSeek
// exposes the same API, so the deepseek variant is this client pointed
// at a different base URL.
type OpenAIClient struct {
	name    string
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

// OpenAIOption configures the client.
type OpenAIOption func(*OpenAIClient)

// WithOpenAIBaseURL overrides the API base URL.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(c *OpenAIClient) { c.baseURL = url }
}

// WithOpenAIModel overrides the default model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(c *OpenAIClient) { c.model = model }
}

// WithOpenAIHTTPClient overrides the default http.Client.
func WithOpenAIHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *OpenAIClient) { c.http = hc }
}

// NewOpenAI creates a chat-completions client against the OpenAI API.
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAIClient {
	c := &OpenAIClient{
		name:    ProviderOpenAI,
		apiKey:  apiKey,
		baseURL: openAIBaseURL,
		model:   openAIModel,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewDeepSeek creates a chat-completions client against the DeepSeek API.
func NewDeepSeek(apiKey string, opts ...OpenAIOption) *OpenAIClient {
	c := NewOpenAI(apiKey)
	c.name = ProviderDeepSeek
	c.baseURL = deepSeekBaseURL
	c.model = deepSeekModel
	for _, o := range opts {
		o(c)
	}
	return c
}

// Name implements Completer.
func (c *OpenAIClient) Name() string { return c.name }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete implements Completer with a single chat-completions call.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model:          c.model,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		Temperature:    0,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", eris.Wrapf(err, "%s: marshal request", c.name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrapf(err, "%s: create request", c.name)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "%s: send request", c.name)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrapf(err, "%s: read response", c.name)
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("%s: unexpected status %d: %s", c.name, resp.StatusCode, string(respBody))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", eris.Wrapf(err, "%s: unmarshal response", c.name)
	}
	if len(result.Choices) == 0 {
		return "", eris.Errorf("%s: empty choices", c.name)
	}
	return result.Choices[0].Message.Content, nil
}
