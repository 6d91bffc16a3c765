package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	googleBaseURL = "https://generativelanguage.googleapis.com"
	googleModel   = "gemini-2.0-flash"
)

// GoogleClient calls the Gemini generateContent API.
type GoogleClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

// GoogleOption configures the client.
type GoogleOption func(*GoogleClient)

// WithGoogleBaseURL overrides the API base URL.
func WithGoogleBaseURL(url string) GoogleOption {
	return func(c *GoogleClient) { c.baseURL = url }
}

// WithGoogleModel overrides the default model.
func WithGoogleModel(model string) GoogleOption {
	return func(c *GoogleClient) { c.model = model }
}

// WithGoogleHTTPClient overrides the default http.Client.
func WithGoogleHTTPClient(hc *http.Client) GoogleOption {
	return func(c *GoogleClient) { c.http = hc }
}

// NewGoogle creates a Gemini API client.
func NewGoogle(apiKey string, opts ...GoogleOption) *GoogleClient {
	c := &GoogleClient{
		apiKey:  apiKey,
		baseURL: googleBaseURL,
		model:   googleModel,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Name implements Completer.
func (c *GoogleClient) Name() string { return ProviderGoogle }

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Complete implements Completer with a single generateContent call.
func (c *GoogleClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      0,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "google: marshal request")
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "google: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "google: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "google: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("google: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", eris.Wrap(err, "google: unmarshal response")
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", eris.New("google: empty candidates")
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}
