package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geogpt/internal/geo"
)

// printLocation writes a resolved location either as indented JSON or as
// a human-readable block.
func printLocation(w io.Writer, loc *geo.Location, pretty bool) error {
	if !pretty {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(loc), "encode location")
	}

	fmt.Fprintln(w, "Location:")
	fmt.Fprintf(w, "  Country:     %s (%s)\n", loc.Country, loc.CountryFull)
	fmt.Fprintf(w, "  City:        %s\n", loc.City)
	if loc.StateFull != "" || loc.StateCode != "" {
		state := loc.StateFull
		if loc.StateCode != "" {
			state = fmt.Sprintf("%s (%s)", state, loc.StateCode)
		}
		fmt.Fprintf(w, "  State:       %s\n", state)
	}
	fmt.Fprintf(w, "  Postal Code: %s\n", loc.PostalCode)
	if loc.HasCoordinates() {
		fmt.Fprintf(w, "  Coordinates: %.6f, %.6f\n", *loc.Latitude, *loc.Longitude)
	} else {
		fmt.Fprintln(w, "  Coordinates: unresolved")
	}
	fmt.Fprintf(w, "  Accuracy:    %s\n", loc.Accuracy)
	if loc.FormattedAddress != "" {
		fmt.Fprintf(w, "  Address:     %s\n", loc.FormattedAddress)
	}
	return nil
}

// printNearby writes nearby search results, at most limit of them.
func printNearby(w io.Writer, locs []geo.NearbyLocation, limit int, pretty bool) error {
	if limit > 0 && len(locs) > limit {
		locs = locs[:limit]
	}

	if !pretty {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(locs), "encode nearby results")
	}

	if len(locs) == 0 {
		fmt.Fprintln(w, "No locations found")
		return nil
	}

	fmt.Fprintf(w, "%-12s %-30s %s\n", "Postal Code", "Place", "Distance (km)")
	for _, nl := range locs {
		fmt.Fprintf(w, "%-12s %-30s %13.2f\n", nl.Location.PostalCode, nl.Location.City, nl.DistanceKm)
	}
	return nil
}
