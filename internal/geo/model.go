// Package geo holds the canonical location model and the two-tier
// geocoding orchestrator: an offline postal dataset first, an LLM
// resolver to fill in whatever the dataset could not.
package geo

import "strings"

// Accuracy is a coarse confidence label describing which tier produced
// a location.
type Accuracy string

const (
	// AccuracyHigh means an exact offline-dataset match.
	AccuracyHigh Accuracy = "high"
	// AccuracyMedium means a partial dataset match enriched by the LLM.
	AccuracyMedium Accuracy = "medium"
	// AccuracyLow means a fully LLM-derived result.
	AccuracyLow Accuracy = "low"
)

// Location is the canonical geocoding result. It is constructed once per
// Geocode call and never mutated afterwards. Coordinates are pointers so
// that "unresolved" is distinct from (0, 0).
type Location struct {
	Country          string   `json:"country"`                 // ISO-3 code
	CountryFull      string   `json:"country_full"`
	PostalCode       string   `json:"postal_code"`
	City             string   `json:"city"`
	StateFull        string   `json:"state_full,omitempty"`
	StateCode        string   `json:"state_code,omitempty"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	Accuracy         Accuracy `json:"accuracy"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l *Location) HasCoordinates() bool {
	return l != nil && l.Latitude != nil && l.Longitude != nil
}

// FormatAddress builds a display address from the populated name fields.
func (l *Location) FormatAddress() string {
	parts := make([]string, 0, 3)
	if l.City != "" {
		parts = append(parts, l.City)
	}
	if l.StateFull != "" {
		parts = append(parts, l.StateFull)
	} else if l.StateCode != "" {
		parts = append(parts, l.StateCode)
	}
	if l.CountryFull != "" {
		parts = append(parts, l.CountryFull)
	}
	return strings.Join(parts, ", ")
}

// ValidCoordinates reports whether lat/lng fall within the valid
// geographic ranges.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Float returns a pointer to v. Convenience for building Locations.
func Float(v float64) *float64 { return &v }

// Query is the caller-supplied description of a place to geocode.
// At least one identifying field must be non-empty.
type Query struct {
	City         string
	State        string
	ZipCode      string
	BusinessName string
	Country      string
	UseLLM       bool
}

// Empty reports whether the query carries no identifying field at all.
func (q Query) Empty() bool {
	return q.City == "" && q.State == "" && q.ZipCode == "" &&
		q.BusinessName == "" && q.Country == ""
}
