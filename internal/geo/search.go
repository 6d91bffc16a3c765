package geo

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
)

// Endpoint identifies one side of a distance or nearby search: either a
// raw postal code or an already resolved Location.
type Endpoint struct {
	Code     string
	Location *Location
}

// PostalEndpoint builds an Endpoint from a raw postal code.
func PostalEndpoint(code string) Endpoint { return Endpoint{Code: code} }

// LocationEndpoint builds an Endpoint from a resolved Location.
func LocationEndpoint(loc *Location) Endpoint { return Endpoint{Location: loc} }

// NearbyLocation is a search hit annotated with its distance from the
// reference point.
type NearbyLocation struct {
	Location   *Location `json:"location"`
	DistanceKm float64   `json:"distance_km"`
}

// NearbyOptions narrows a Nearby search.
type NearbyOptions struct {
	CountryCode string
	PostalCodes []string // explicit candidate list; empty means dataset radius query
}

// Distance resolves both endpoints and returns the great-circle distance
// between them in kilometers. Endpoint resolution uses the local tier
// only; distance math never burns an LLM call.
func (g *Geocoder) Distance(ctx context.Context, origin, destination Endpoint, countryCode string) (float64, error) {
	if countryCode == "" {
		countryCode = endpointCountry(origin, destination)
	}
	from, err := g.resolveEndpoint(ctx, origin, countryCode)
	if err != nil {
		return 0, eris.Wrap(err, "distance: origin")
	}
	to, err := g.resolveEndpoint(ctx, destination, countryCode)
	if err != nil {
		return 0, eris.Wrap(err, "distance: destination")
	}
	return Haversine(*from.Latitude, *from.Longitude, *to.Latitude, *to.Longitude), nil
}

// Nearby returns all locations within radiusKm of the reference, sorted
// by ascending distance. An empty result is not an error. A zero radius
// keeps only coincident points.
func (g *Geocoder) Nearby(ctx context.Context, ref Endpoint, radiusKm float64, opts NearbyOptions) ([]NearbyLocation, error) {
	if radiusKm < 0 {
		return nil, eris.Wrapf(ErrInvalidInput, "negative radius %v", radiusKm)
	}

	center, err := g.resolveEndpoint(ctx, ref, opts.CountryCode)
	if err != nil {
		return nil, eris.Wrap(err, "nearby: reference")
	}

	alpha2 := opts.CountryCode
	if alpha2 == "" {
		cc, ccErr := NormalizeCountry(center.Country)
		if ccErr != nil {
			return nil, ccErr
		}
		alpha2 = cc.Alpha2
	} else {
		cc, ccErr := NormalizeCountry(alpha2)
		if ccErr != nil {
			return nil, ccErr
		}
		alpha2 = cc.Alpha2
	}
	if alpha2 == "" {
		return nil, eris.Wrap(ErrInvalidInput, "nearby: country required")
	}

	if len(opts.PostalCodes) > 0 {
		return g.nearbyFromCandidates(ctx, center, alpha2, radiusKm, opts.PostalCodes)
	}

	matches, err := g.dataset.QueryRadius(ctx, alpha2, *center.Latitude, *center.Longitude, radiusKm)
	if err != nil {
		return nil, eris.Wrap(err, "nearby: radius query")
	}

	out := make([]NearbyLocation, 0, len(matches))
	for _, m := range matches {
		rec := m.Record
		out = append(out, NearbyLocation{
			Location:   locationFromRecord(&rec),
			DistanceKm: m.DistanceKm,
		})
	}
	return out, nil
}

// nearbyFromCandidates resolves an explicit postal-code list and filters
// it by distance. Codes the dataset does not know are skipped.
func (g *Geocoder) nearbyFromCandidates(ctx context.Context, center *Location, alpha2 string, radiusKm float64, codes []string) ([]NearbyLocation, error) {
	out := make([]NearbyLocation, 0, len(codes))
	for _, code := range codes {
		rec, err := g.dataset.QueryPostalCode(ctx, alpha2, code)
		if err != nil {
			return nil, eris.Wrapf(err, "nearby: candidate %s", code)
		}
		if rec == nil || rec.Latitude == nil || rec.Longitude == nil {
			continue
		}
		d := Haversine(*center.Latitude, *center.Longitude, *rec.Latitude, *rec.Longitude)
		if d > radiusKm {
			continue
		}
		out = append(out, NearbyLocation{
			Location:   locationFromRecord(rec),
			DistanceKm: d,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out, nil
}

// endpointCountry derives a country-code context from whichever endpoint
// arrived pre-resolved.
func endpointCountry(endpoints ...Endpoint) string {
	for _, e := range endpoints {
		if e.Location != nil && e.Location.Country != "" {
			return e.Location.Country
		}
	}
	return ""
}

// resolveEndpoint turns an Endpoint into a Location with coordinates,
// geocoding raw postal codes through the local tier.
func (g *Geocoder) resolveEndpoint(ctx context.Context, e Endpoint, countryCode string) (*Location, error) {
	if e.Location != nil {
		if !e.Location.HasCoordinates() {
			return nil, eris.Wrap(ErrNotFound, "endpoint has no coordinates")
		}
		return e.Location, nil
	}
	if e.Code == "" {
		return nil, eris.Wrap(ErrInvalidInput, "empty endpoint")
	}

	loc, err := g.Geocode(ctx, Query{ZipCode: e.Code, Country: countryCode, UseLLM: false})
	if err != nil {
		return nil, err
	}
	if !loc.HasCoordinates() {
		return nil, eris.Wrapf(ErrNotFound, "no coordinates for %s", e.Code)
	}
	return loc, nil
}
