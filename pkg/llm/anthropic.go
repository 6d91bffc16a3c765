package llm

import (
	"context"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

const anthropicModel = "claude-sonnet-4-5-20250929"

// AnthropicClient wraps the official anthropic-sdk-go.
type AnthropicClient struct {
	client sdk.Client
	model  string
}

// AnthropicOption configures the client.
type AnthropicOption func(*anthropicOptions)

type anthropicOptions struct {
	model   string
	reqOpts []option.RequestOption
}

// WithAnthropicModel overrides the default model.
func WithAnthropicModel(model string) AnthropicOption {
	return func(o *anthropicOptions) { o.model = model }
}

// WithAnthropicRequestOptions passes extra SDK request options (tests
// use this to point at a local server).
func WithAnthropicRequestOptions(reqOpts ...option.RequestOption) AnthropicOption {
	return func(o *anthropicOptions) { o.reqOpts = append(o.reqOpts, reqOpts...) }
}

// NewAnthropic creates an Anthropic client backed by the SDK.
func NewAnthropic(apiKey string, opts ...AnthropicOption) *AnthropicClient {
	o := anthropicOptions{model: anthropicModel}
	for _, opt := range opts {
		opt(&o)
	}

	sdkOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, o.reqOpts...)
	return &AnthropicClient{
		client: sdk.NewClient(sdkOpts...),
		model:  o.model,
	}
}

// Name implements Completer.
func (c *AnthropicClient) Name() string { return ProviderAnthropic }

// Complete implements Completer with a single Messages call.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   1024,
		Temperature: sdk.Float(0),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "anthropic: create message")
	}

	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", eris.New("anthropic: no text content in response")
}
