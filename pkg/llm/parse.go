package llm

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geogpt/internal/geo"
)

// locationPayload is the wire schema the prompt requests. Pointers keep
// "absent" distinct from zero values.
type locationPayload struct {
	Country          string   `json:"country"`
	CountryFull      string   `json:"country_full"`
	PostalCode       string   `json:"postal_code"`
	City             string   `json:"city"`
	StateFull        *string  `json:"state_full"`
	StateCode        *string  `json:"state_code"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	Accuracy         string   `json:"accuracy"`
	FormattedAddress *string  `json:"formatted_address"`
}

// parseLocation extracts the JSON document from a model reply and maps
// it onto the location schema. Anything that does not match is an error.
func parseLocation(raw string) (*geo.Location, error) {
	doc, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var p locationPayload
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, eris.Wrap(err, "unmarshal location")
	}

	if (p.Latitude == nil) != (p.Longitude == nil) {
		return nil, eris.New("half-specified coordinates")
	}
	if p.Latitude != nil && !geo.ValidCoordinates(*p.Latitude, *p.Longitude) {
		return nil, eris.Errorf("coordinates out of range: %v, %v", *p.Latitude, *p.Longitude)
	}

	loc := &geo.Location{
		Country:     p.Country,
		CountryFull: p.CountryFull,
		PostalCode:  p.PostalCode,
		City:        p.City,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		Accuracy:    geo.AccuracyLow,
	}
	if p.StateFull != nil {
		loc.StateFull = *p.StateFull
	}
	if p.StateCode != nil {
		loc.StateCode = *p.StateCode
	}
	if p.FormattedAddress != nil {
		loc.FormattedAddress = *p.FormattedAddress
	}
	switch geo.Accuracy(p.Accuracy) {
	case geo.AccuracyHigh, geo.AccuracyMedium, geo.AccuracyLow:
		loc.Accuracy = geo.Accuracy(p.Accuracy)
	}
	return loc, nil
}

// extractJSON pulls the first JSON object out of a reply, tolerating
// markdown code fences around it.
func extractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", eris.New("no JSON object in response")
	}
	return s[start : end+1], nil
}
