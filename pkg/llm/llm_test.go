package llm

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geogpt/internal/geo"
)

type fakeCompleter struct {
	reply string
	err   error

	lastPrompt string
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

func TestNewConfigFailures(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"no provider", Config{APIKey: "k"}, geo.ErrNoProvider},
		{"unknown provider", Config{Provider: "llama", APIKey: "k"}, geo.ErrNoProvider},
		{"missing api key", Config{Provider: ProviderOpenAI}, geo.ErrLLMResolution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.True(t, eris.Is(err, tt.want))
		})
	}
}

func TestNewBuildsEachProvider(t *testing.T) {
	for _, provider := range []string{ProviderOpenAI, ProviderGoogle, ProviderAnthropic, ProviderDeepSeek} {
		t.Run(provider, func(t *testing.T) {
			r, err := New(Config{Provider: provider, APIKey: "test-key"})
			require.NoError(t, err)
			assert.Equal(t, provider, r.Name())
		})
	}
}

func TestResolve(t *testing.T) {
	c := &fakeCompleter{
		reply: `{"country": "USA", "country_full": "United States", "postal_code": "66002", "city": "Atchison", "state_full": "Kansas", "state_code": "KS", "latitude": 39.5631, "longitude": -95.1216, "accuracy": "medium", "formatted_address": "Atchison, KS 66002, USA"}`,
	}
	r := NewResolver(c)

	loc, err := r.Resolve(context.Background(), geo.Query{
		City:    "Atchison",
		State:   "Kansas",
		Country: "US",
	})
	require.NoError(t, err)
	assert.Equal(t, "Atchison", loc.City)
	assert.Equal(t, "66002", loc.PostalCode)
	assert.True(t, loc.HasCoordinates())

	// The prompt carries the query fields and flags the absent ones.
	assert.Contains(t, c.lastPrompt, "Atchison")
	assert.Contains(t, c.lastPrompt, "Kansas")
	assert.Contains(t, c.lastPrompt, "(not provided)")
}

func TestResolveCompleterError(t *testing.T) {
	r := NewResolver(&fakeCompleter{err: eris.New("rate limited")})

	_, err := r.Resolve(context.Background(), geo.Query{City: "Paris"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, geo.ErrLLMResolution))
	assert.Contains(t, err.Error(), "rate limited")
}

func TestResolveSchemaMismatch(t *testing.T) {
	r := NewResolver(&fakeCompleter{reply: "Sorry, I can't help with that."})

	_, err := r.Resolve(context.Background(), geo.Query{City: "Paris"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, geo.ErrLLMResolution))
}
