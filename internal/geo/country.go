package geo

import (
	"strings"

	"github.com/biter777/countries"
	"github.com/rotisserie/eris"
)

// CountryCodes holds the normalized forms of a country identifier.
type CountryCodes struct {
	Alpha2 string // dataset lookups key on ISO-2
	Alpha3 string // the Location record carries ISO-3
	Name   string
}

// NormalizeCountry resolves a country name, ISO-2 or ISO-3 code to its
// canonical code pair. An empty input returns empty codes without error;
// an unrecognized input is an error.
func NormalizeCountry(country string) (CountryCodes, error) {
	s := strings.TrimSpace(country)
	if s == "" {
		return CountryCodes{}, nil
	}

	c := countries.ByName(s)
	if c == countries.Unknown {
		return CountryCodes{}, eris.Wrapf(ErrInvalidInput, "unrecognized country %q", country)
	}
	return CountryCodes{
		Alpha2: c.Alpha2(),
		Alpha3: c.Alpha3(),
		Name:   c.String(),
	}, nil
}
