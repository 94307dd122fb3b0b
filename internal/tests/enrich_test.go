package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"voyago/internal/domain"
	"voyago/internal/service"
)

// ──────────────────────────────────────────────
// 3. LINK ENRICHMENT
// ──────────────────────────────────────────────

func testEnricher() *service.Enricher {
	return service.NewEnricher("hotel-aff", "flight-aff", "activity-aff")
}

func localItinerary(t *testing.T) *domain.Itinerary {
	t.Helper()

	generator := service.NewItineraryService(nil)
	result, err := generator.Generate(context.Background(), parisPrefs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result.Itinerary
}

func TestEnrich_AttachesTwoLinksPerEntity(t *testing.T) {
	t.Parallel()

	itinerary := localItinerary(t)
	testEnricher().Enrich(itinerary, "Paris")

	for _, accommodation := range itinerary.Accommodations {
		if len(accommodation.BookingLinks) != 2 {
			t.Errorf("expected 2 accommodation links, got %d", len(accommodation.BookingLinks))
		}
	}

	for _, day := range itinerary.Days {
		for _, activity := range day.Activities {
			if len(activity.BookingLinks) != 2 {
				t.Errorf("expected 2 activity links, got %d", len(activity.BookingLinks))
			}
		}
	}
}

func TestEnrich_Idempotent(t *testing.T) {
	t.Parallel()

	enricher := testEnricher()
	itinerary := localItinerary(t)

	enricher.Enrich(itinerary, "Paris")
	first, err := json.Marshal(itinerary)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	enricher.Enrich(itinerary, "Paris")
	second, err := json.Marshal(itinerary)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("re-enrichment changed the itinerary")
	}
}

func TestEnrich_FlightLegsRequireCodes(t *testing.T) {
	t.Parallel()

	itinerary := &domain.Itinerary{
		Transportation: []domain.TransportLeg{
			{Type: "flight", From: "CDG", To: "JFK"},
			{Type: "flight", From: "Paris", To: "New York"},
			{Type: "flight", From: "Paris (CDG)", To: "New York (JFK)"},
			{Type: "train", From: "CDG", To: "JFK"},
		},
	}

	testEnricher().Enrich(itinerary, "Paris")

	if len(itinerary.Transportation[0].BookingLinks) != 2 {
		t.Errorf("expected links on coded flight leg, got %d", len(itinerary.Transportation[0].BookingLinks))
	}

	if len(itinerary.Transportation[1].BookingLinks) != 0 {
		t.Error("flight leg without recognizable codes must be left unchanged")
	}

	if len(itinerary.Transportation[2].BookingLinks) != 2 {
		t.Errorf("expected links on parenthesized-code leg, got %d", len(itinerary.Transportation[2].BookingLinks))
	}

	if len(itinerary.Transportation[3].BookingLinks) != 0 {
		t.Error("non-flight legs must not get flight links")
	}
}

func TestEnrich_NeverAltersCoreContent(t *testing.T) {
	t.Parallel()

	itinerary := localItinerary(t)
	costBefore := itinerary.TotalCost
	daysBefore := len(itinerary.Days)

	testEnricher().Enrich(itinerary, "Paris")

	if itinerary.TotalCost != costBefore {
		t.Error("enrichment changed total cost")
	}
	if len(itinerary.Days) != daysBefore {
		t.Error("enrichment changed day plans")
	}
}

func TestEnrich_NilItinerary_NoPanic(t *testing.T) {
	t.Parallel()

	testEnricher().Enrich(nil, "Paris")
}
