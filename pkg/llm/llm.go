// Package llm implements the fallback geocoding tier: a structured
// prompt sent to a hosted language model, parsed back into the canonical
// location schema. One provider, one request, no retries.
package llm

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geogpt/internal/geo"
)

// Provider identifiers accepted in configuration.
const (
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
	ProviderAnthropic = "anthropic"
	ProviderDeepSeek  = "deepseek"
)

// Completer produces a single completion for a prompt. Each provider
// variant implements this; everything above it is shared.
type Completer interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config selects and configures one provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string // empty means the provider default
	BaseURL  string // override for tests; ignored by the anthropic SDK variant
}

// Resolver turns a partially known location into a complete one via the
// configured provider. It implements geo.Resolver.
type Resolver struct {
	completer Completer
}

// New builds a Resolver for the configured provider. A missing provider
// is a configuration failure; a missing API key is a resolution failure,
// since the provider can never answer without one.
func New(cfg Config) (*Resolver, error) {
	if cfg.Provider == "" {
		return nil, geo.ErrNoProvider
	}
	if cfg.APIKey == "" {
		return nil, eris.Wrapf(geo.ErrLLMResolution, "%s: api key not set", cfg.Provider)
	}

	var completer Completer
	switch cfg.Provider {
	case ProviderOpenAI:
		opts := []OpenAIOption{}
		if cfg.Model != "" {
			opts = append(opts, WithOpenAIModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, WithOpenAIBaseURL(cfg.BaseURL))
		}
		completer = NewOpenAI(cfg.APIKey, opts...)
	case ProviderDeepSeek:
		opts := []OpenAIOption{}
		if cfg.Model != "" {
			opts = append(opts, WithOpenAIModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, WithOpenAIBaseURL(cfg.BaseURL))
		}
		completer = NewDeepSeek(cfg.APIKey, opts...)
	case ProviderGoogle:
		opts := []GoogleOption{}
		if cfg.Model != "" {
			opts = append(opts, WithGoogleModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, WithGoogleBaseURL(cfg.BaseURL))
		}
		completer = NewGoogle(cfg.APIKey, opts...)
	case ProviderAnthropic:
		opts := []AnthropicOption{}
		if cfg.Model != "" {
			opts = append(opts, WithAnthropicModel(cfg.Model))
		}
		completer = NewAnthropic(cfg.APIKey, opts...)
	default:
		return nil, eris.Wrapf(geo.ErrNoProvider, "unsupported provider %q", cfg.Provider)
	}

	return NewResolver(completer), nil
}

// NewResolver wraps a Completer. Split out from New so tests can inject
// a fake provider.
func NewResolver(c Completer) *Resolver {
	return &Resolver{completer: c}
}

// Name implements geo.Resolver.
func (r *Resolver) Name() string { return r.completer.Name() }

// Resolve implements geo.Resolver. The provider is invoked exactly once;
// a response that does not match the location schema is a failure, never
// a guess.
func (r *Resolver) Resolve(ctx context.Context, q geo.Query) (*geo.Location, error) {
	prompt := buildPrompt(q)

	raw, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, eris.Wrapf(geo.ErrLLMResolution, "%s: %v", r.completer.Name(), err)
	}

	loc, err := parseLocation(raw)
	if err != nil {
		zap.L().Warn("llm response did not match schema",
			zap.String("provider", r.completer.Name()),
			zap.Error(err),
		)
		return nil, eris.Wrapf(geo.ErrLLMResolution, "%s: %v", r.completer.Name(), err)
	}

	return loc, nil
}
