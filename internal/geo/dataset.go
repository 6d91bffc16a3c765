package geo

import "context"

// Record is a raw row from the offline postal-code dataset.
type Record struct {
	CountryCode string // ISO-2
	PostalCode  string
	PlaceName   string
	StateName   string
	StateCode   string
	CountyName  string
	Latitude    *float64
	Longitude   *float64
}

// RadiusMatch is a dataset row annotated with its distance from a
// reference point.
type RadiusMatch struct {
	Record     Record
	DistanceKm float64
}

// Dataset is the offline postal-code dataset boundary. Implementations
// return (nil, nil) for a clean miss; errors are reserved for dataset
// failures (I/O, download, corrupt rows).
type Dataset interface {
	// QueryPostalCode looks up an exact postal code within a country.
	QueryPostalCode(ctx context.Context, country, code string) (*Record, error)

	// QueryCity looks up a place by name within a country, optionally
	// narrowed by state name or code.
	QueryCity(ctx context.Context, country, city, state string) (*Record, error)

	// QueryRadius returns all rows within radiusKm of the given point,
	// sorted by ascending distance.
	QueryRadius(ctx context.Context, country string, lat, lng, radiusKm float64) ([]RadiusMatch, error)
}

// Resolver fills in a partially known location using an external model.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, q Query) (*Location, error)
}

// locationFromRecord converts a dataset row into a Location, classifying
// accuracy from what the row actually carries.
func locationFromRecord(r *Record) *Location {
	cc, err := NormalizeCountry(r.CountryCode)
	if err != nil {
		// Dataset rows use ISO-2 codes; an unmapped one is kept verbatim.
		cc = CountryCodes{Alpha2: r.CountryCode, Alpha3: r.CountryCode}
	}

	loc := &Location{
		Country:     cc.Alpha3,
		CountryFull: cc.Name,
		PostalCode:  r.PostalCode,
		City:        r.PlaceName,
		StateFull:   r.StateName,
		StateCode:   r.StateCode,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
	}

	switch {
	case loc.HasCoordinates() && loc.PostalCode != "":
		loc.Accuracy = AccuracyHigh
	case loc.HasCoordinates() || loc.PostalCode != "":
		loc.Accuracy = AccuracyMedium
	default:
		loc.Accuracy = AccuracyLow
	}

	loc.FormattedAddress = loc.FormatAddress()
	return loc
}
