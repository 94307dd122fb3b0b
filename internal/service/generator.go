package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"voyago/internal/domain"
)

// Provider is the interface for the external text generation provider.
// Complete returns the raw completion text and the model that produced
// it. Implementations own model selection and per-model retries.
type Provider interface {
	Complete(ctx context.Context, prompt string) (text string, model string, err error)
}

// ErrResponseShapeInvalid marks a provider response that parsed but is
// missing required itinerary fields. Internal: always recovered by the
// local fallback.
var ErrResponseShapeInvalid = errors.New("provider response shape invalid")

// GenerationResult is the outcome of a generation attempt. Both the
// provider path and the local fallback count as success.
type GenerationResult struct {
	Itinerary *domain.Itinerary
	Source    domain.GenerationSource
	Model     string
}

// ItineraryService produces itineraries from trip preferences,
// preferring the provider and falling back to the deterministic local
// generator on any provider failure.
type ItineraryService struct {
	provider Provider
}

// NewItineraryService creates a new ItineraryService. A nil provider
// means every generation uses the local path.
func NewItineraryService(provider Provider) *ItineraryService {
	return &ItineraryService{provider: provider}
}

// Generate produces an itinerary for the given preferences.
func (s *ItineraryService) Generate(ctx context.Context, prefs domain.TripPreferences) (*GenerationResult, error) {
	if prefs.Destination == "" {
		return nil, ErrDestinationRequired
	}

	if s.provider != nil {
		itinerary, model, err := s.generateFromProvider(ctx, prefs)
		if err == nil {
			return &GenerationResult{
				Itinerary: itinerary,
				Source:    domain.GenerationSourceProvider,
				Model:     model,
			}, nil
		}

		// A cancelled request should not burn time on the fallback;
		// the orchestrator treats this as generation failure.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		log.Printf("provider generation failed for %q, using local fallback: %v", prefs.Destination, err)
	}

	return &GenerationResult{
		Itinerary: buildLocalItinerary(prefs),
		Source:    domain.GenerationSourceLocal,
	}, nil
}

func (s *ItineraryService) generateFromProvider(ctx context.Context, prefs domain.TripPreferences) (*domain.Itinerary, string, error) {
	text, model, err := s.provider.Complete(ctx, buildPrompt(prefs))
	if err != nil {
		return nil, "", err
	}

	itinerary, err := parseItinerary(text)
	if err != nil {
		return nil, "", err
	}

	normalizeDates(itinerary, prefs.StartDate)

	return itinerary, model, nil
}

// buildPrompt embeds every preference field plus an explicit output
// schema so the provider returns a single parseable JSON object.
func buildPrompt(prefs domain.TripPreferences) string {
	var b strings.Builder

	b.WriteString("Create a detailed travel itinerary as a single JSON object.\n\n")
	fmt.Fprintf(&b, "Destination: %s\n", prefs.Destination)
	if prefs.Origin != "" {
		fmt.Fprintf(&b, "Origin: %s\n", prefs.Origin)
	}
	if prefs.TransportMode != "" {
		fmt.Fprintf(&b, "Preferred transport: %s\n", prefs.TransportMode)
	}
	if !prefs.StartDate.IsZero() && !prefs.EndDate.IsZero() {
		fmt.Fprintf(&b, "Dates: %s to %s\n", prefs.StartDate.Format("2006-01-02"), prefs.EndDate.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "Trip length: %d days\n", prefs.DurationDays())
	if prefs.HotelStyle != "" {
		fmt.Fprintf(&b, "Hotel style: %s\n", prefs.HotelStyle)
	}
	if prefs.Cuisine != "" {
		fmt.Fprintf(&b, "Cuisine preference: %s\n", prefs.Cuisine)
	}
	if prefs.Theme != "" {
		fmt.Fprintf(&b, "Trip theme: %s\n", prefs.Theme)
	}
	if prefs.GroupType != "" {
		fmt.Fprintf(&b, "Group type: %s\n", prefs.GroupType)
	}
	fmt.Fprintf(&b, "Travelers: %d\n", prefs.Travelers())
	if prefs.Budget != "" {
		fmt.Fprintf(&b, "Budget: %s\n", prefs.Budget)
	}

	b.WriteString(`
Respond with ONLY a JSON object in this exact shape:
{
  "itinerary": [
    {"date": "YYYY-MM-DD", "activities": [
      {"time": "HH:MM", "title": string, "description": string,
       "location": {"name": string, "address": string},
       "durationMinutes": number, "type": string, "cost": number}
    ]}
  ],
  "accommodations": [
    {"name": string, "location": {"name": string, "address": string},
     "checkIn": "YYYY-MM-DD", "checkOut": "YYYY-MM-DD",
     "pricePerNight": number, "totalPrice": number, "roomType": string,
     "amenities": [string], "rating": number}
  ],
  "transportation": [
    {"type": string, "from": string, "to": string,
     "departureTime": string, "arrivalTime": string,
     "provider": string, "price": number}
  ],
  "totalCost": number
}
One itinerary entry per day of the trip. No prose outside the JSON.`)

	return b.String()
}

// parseItinerary extracts and validates the first JSON object in the
// raw completion. Partial or oddly shaped data is rejected outright so
// the caller falls back rather than persisting junk.
func parseItinerary(raw string) (*domain.Itinerary, error) {
	jsonText, ok := extractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object found", ErrResponseShapeInvalid)
	}

	// Check required top-level keys against the raw object first:
	// a missing key would otherwise unmarshal as a silent zero value.
	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonText), &keys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseShapeInvalid, err)
	}
	for _, required := range []string{"itinerary", "accommodations", "transportation", "totalCost"} {
		if _, present := keys[required]; !present {
			return nil, fmt.Errorf("%w: missing %q", ErrResponseShapeInvalid, required)
		}
	}

	var itinerary domain.Itinerary
	if err := json.Unmarshal([]byte(jsonText), &itinerary); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseShapeInvalid, err)
	}

	if len(itinerary.Days) == 0 {
		return nil, fmt.Errorf("%w: empty itinerary", ErrResponseShapeInvalid)
	}

	return &itinerary, nil
}

// extractJSON returns the first well-formed JSON object substring:
// either the contents of a fenced code block or the first balanced
// brace-delimited span.
func extractJSON(raw string) (string, bool) {
	if idx := strings.Index(raw, "```"); idx >= 0 {
		rest := raw[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			if candidate := strings.TrimSpace(rest[:end]); strings.HasPrefix(candidate, "{") {
				return candidate, true
			}
		}
	}

	start := strings.Index(raw, "{")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return raw[start : i+1], true
				}
			}
		}
	}

	return "", false
}

// normalizeDates back-fills day dates for provider responses that
// omitted them, so downstream consumers always see a full calendar.
func normalizeDates(itinerary *domain.Itinerary, start time.Time) {
	if start.IsZero() {
		start = time.Now()
	}
	for i := range itinerary.Days {
		if itinerary.Days[i].Date == "" {
			itinerary.Days[i].Date = start.AddDate(0, 0, i).Format("2006-01-02")
		}
	}
}
