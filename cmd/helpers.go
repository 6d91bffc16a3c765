package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geogpt/internal/geo"
	"github.com/sells-group/geogpt/internal/postal"
	"github.com/sells-group/geogpt/pkg/llm"
)

// openDataset opens the offline postal dataset under the configured
// cache directory.
func openDataset() (*postal.Dataset, error) {
	dir, err := cfg.Postal.ResolveCacheDir()
	if err != nil {
		return nil, err
	}
	return postal.Open(dir, postal.WithProgress(true))
}

// buildGeocoder assembles the orchestrator. providerOverride (from a
// --provider flag) takes precedence over the configured provider. A
// configured provider with a missing API key degrades to local-only
// operation with a warning, matching how the fallback is optional.
func buildGeocoder(ds *postal.Dataset, providerOverride string) (*geo.Geocoder, error) {
	opts := []geo.Option{
		geo.WithPolicy(geo.Policy{
			RequireCoordinates: cfg.Geocode.RequireCoordinates,
			RequireCity:        cfg.Geocode.RequireCity,
			RequirePostalCode:  cfg.Geocode.RequirePostalCode,
		}),
	}

	provider := providerOverride
	if provider == "" {
		provider = cfg.LLM.Provider
	}
	if provider != "" {
		pc, ok := cfg.LLM.ForProvider(provider)
		if !ok {
			return nil, eris.Errorf("unsupported llm provider %q", provider)
		}
		resolver, err := llm.New(llm.Config{
			Provider: provider,
			APIKey:   pc.Key,
			Model:    pc.Model,
		})
		if err != nil {
			zap.L().Warn("llm fallback unavailable",
				zap.String("provider", provider),
				zap.Error(err),
			)
		} else {
			opts = append(opts, geo.WithResolver(resolver))
		}
	}

	return geo.NewGeocoder(ds, opts...), nil
}
