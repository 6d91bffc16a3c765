package geo

import "github.com/rotisserie/eris"

// Sentinel failures surfaced by the geocoder. Callers discriminate with
// eris.Is; wrapping adds call-site context without changing the kind.
var (
	// ErrInvalidInput means no identifying field was supplied, or an
	// argument was out of range (e.g. a negative search radius).
	ErrInvalidInput = eris.New("geocode: invalid input")

	// ErrNotFound means both the offline dataset and the LLM tier
	// failed to produce coordinates for the query.
	ErrNotFound = eris.New("geocode: location not found")

	// ErrLLMResolution means the fallback tier failed: missing API key,
	// provider error, network failure, or an unparseable response.
	ErrLLMResolution = eris.New("geocode: llm resolution failed")

	// ErrNoProvider means the fallback tier was needed but no LLM
	// provider is configured.
	ErrNoProvider = eris.New("geocode: no llm provider configured")
)
