package geo

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Policy decides when a local-tier result is complete enough to skip the
// LLM fallback. The default requires coordinates, a city and a postal
// code; missing region metadata alone never forces a fallback.
type Policy struct {
	RequireCoordinates bool
	RequireCity        bool
	RequirePostalCode  bool
}

// DefaultPolicy returns the standard completeness rule.
func DefaultPolicy() Policy {
	return Policy{RequireCoordinates: true, RequireCity: true, RequirePostalCode: true}
}

// Complete reports whether loc satisfies the policy.
func (p Policy) Complete(loc *Location) bool {
	if loc == nil {
		return false
	}
	if p.RequireCoordinates && !loc.HasCoordinates() {
		return false
	}
	if p.RequireCity && loc.City == "" {
		return false
	}
	if p.RequirePostalCode && loc.PostalCode == "" {
		return false
	}
	return true
}

// Geocoder is the two-tier orchestrator: offline dataset first, LLM
// fallback when the local result is incomplete or absent.
type Geocoder struct {
	dataset  Dataset
	resolver Resolver // nil when no provider is configured
	policy   Policy
}

// Option configures the Geocoder.
type Option func(*Geocoder)

// WithResolver attaches an LLM fallback resolver.
func WithResolver(r Resolver) Option {
	return func(g *Geocoder) { g.resolver = r }
}

// WithPolicy overrides the default completeness policy.
func WithPolicy(p Policy) Option {
	return func(g *Geocoder) { g.policy = p }
}

// NewGeocoder creates a Geocoder over the given offline dataset.
func NewGeocoder(dataset Dataset, opts ...Option) *Geocoder {
	g := &Geocoder{
		dataset: dataset,
		policy:  DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Geocode resolves a place description to a Location.
//
// The offline dataset is consulted first. If the local result is
// incomplete per the configured policy and q.UseLLM is set, the LLM
// resolver fills in the missing fields; local values always win the
// merge. Failure kinds are the package sentinels.
func (g *Geocoder) Geocode(ctx context.Context, q Query) (*Location, error) {
	if q.Empty() {
		return nil, ErrInvalidInput
	}

	cc, err := NormalizeCountry(q.Country)
	if err != nil {
		return nil, err
	}

	local, err := g.localLookup(ctx, q, cc.Alpha2)
	if err != nil {
		return nil, err
	}

	if g.policy.Complete(local) {
		zap.L().Debug("geocode resolved locally",
			zap.String("postal_code", local.PostalCode),
			zap.String("city", local.City),
		)
		return local, nil
	}

	if !q.UseLLM {
		if local != nil {
			return local, nil
		}
		return nil, ErrNotFound
	}

	if g.resolver == nil {
		// A partial local fix with coordinates is still usable.
		if local.HasCoordinates() {
			return local, nil
		}
		return nil, ErrNoProvider
	}

	zap.L().Debug("geocode falling back to llm",
		zap.String("provider", g.resolver.Name()),
		zap.Bool("has_local", local != nil),
	)
	llmLoc, err := g.resolver.Resolve(ctx, q)
	if err != nil {
		return nil, err
	}

	merged := merge(local, llmLoc)
	if !merged.HasCoordinates() {
		return nil, ErrNotFound
	}
	return merged, nil
}

// localLookup queries the offline dataset using whichever identifying
// fields are available. A missing country code means the dataset cannot
// be keyed at all, which is a miss rather than an error.
func (g *Geocoder) localLookup(ctx context.Context, q Query, alpha2 string) (*Location, error) {
	if alpha2 == "" {
		return nil, nil
	}

	if q.ZipCode != "" {
		rec, err := g.dataset.QueryPostalCode(ctx, alpha2, q.ZipCode)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return locationFromRecord(rec), nil
		}
	}

	if q.City != "" {
		rec, err := g.dataset.QueryCity(ctx, alpha2, q.City, q.State)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return locationFromRecord(rec), nil
		}
	}

	return nil, nil
}

// merge combines the two tiers, preferring every field the local dataset
// supplied. Accuracy follows the tier mix: medium when the dataset
// contributed anything, low when the result is fully LLM-derived.
func merge(local, llm *Location) *Location {
	if llm != nil && llm.Latitude != nil && llm.Longitude != nil &&
		!ValidCoordinates(*llm.Latitude, *llm.Longitude) {
		llm.Latitude, llm.Longitude = nil, nil
	}

	if local == nil {
		out := *llm
		out.Accuracy = AccuracyLow
		out.FormattedAddress = llmTagged(out.FormattedAddress)
		return &out
	}

	out := *local
	if out.Country == "" {
		out.Country = llm.Country
	}
	if out.CountryFull == "" {
		out.CountryFull = llm.CountryFull
	}
	if out.PostalCode == "" {
		out.PostalCode = llm.PostalCode
	}
	if out.City == "" {
		out.City = llm.City
	}
	if out.StateFull == "" {
		out.StateFull = llm.StateFull
	}
	if out.StateCode == "" {
		out.StateCode = llm.StateCode
	}
	if !out.HasCoordinates() {
		out.Latitude = llm.Latitude
		out.Longitude = llm.Longitude
	}
	out.Accuracy = AccuracyMedium
	if out.FormattedAddress == "" {
		out.FormattedAddress = out.FormatAddress()
	}
	out.FormattedAddress = llmTagged(out.FormattedAddress)
	return &out
}

// llmTagged marks an address as having taken the fallback path.
func llmTagged(addr string) string {
	if addr == "" {
		return "[LLM]"
	}
	if strings.HasSuffix(addr, "[LLM]") {
		return addr
	}
	return addr + " [LLM]"
}
