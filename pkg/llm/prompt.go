package llm

import (
	"fmt"

	"github.com/sells-group/geogpt/internal/geo"
)

// promptTemplate asks for a fixed JSON schema so the reply can be parsed
// deterministically. Field names match the Location JSON tags.
const promptTemplate = `You are a highly accurate geocoding assistant specializing in global locations. Provide complete geographic information for the location described below.

LOCATION DETAILS PROVIDED:
- Country: %s
- City: %s
- State/Province/Region: %s
- Postal/ZIP Code: %s
- Business Name (if applicable): %s

Respond with a single JSON object and nothing else, using exactly these keys:
{
  "country": "three-letter ISO country code, e.g. USA",
  "country_full": "full country name",
  "postal_code": "postal or ZIP code",
  "city": "city name",
  "state_full": "state, province or region name, or null",
  "state_code": "two-letter state/province code, or null",
  "latitude": decimal degrees to 6 places, or null if unknown,
  "longitude": decimal degrees to 6 places, or null if unknown,
  "accuracy": "high, medium or low",
  "formatted_address": "complete address formatted per local conventions"
}

Rules:
1. Use null for any field you cannot determine; never invent values.
2. If the city is unknown, infer it from the postal code and other details.
3. Do not return latitude/longitude unless the postal code or city is known.
4. Verify consistency between city, state and postal code before answering.`

// buildPrompt fills the template with whatever fields the query carries.
func buildPrompt(q geo.Query) string {
	return fmt.Sprintf(promptTemplate,
		orUnknown(q.Country),
		orUnknown(q.City),
		orUnknown(q.State),
		orUnknown(q.ZipCode),
		orUnknown(q.BusinessName),
	)
}

func orUnknown(s string) string {
	if s == "" {
		return "(not provided)"
	}
	return s
}
