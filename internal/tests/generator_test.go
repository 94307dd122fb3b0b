package tests

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"voyago/internal/domain"
	"voyago/internal/service"
)

// ──────────────────────────────────────────────
// 2. ITINERARY GENERATION
// ──────────────────────────────────────────────

func parisPrefs() domain.TripPreferences {
	return domain.TripPreferences{
		Destination: "Paris",
		StartDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
		HotelStyle:  "comfortable",
	}
}

func TestLocalGeneration_ParisThreeDays(t *testing.T) {
	t.Parallel()

	// No provider configured: always the local deterministic path.
	generator := service.NewItineraryService(nil)

	result, err := generator.Generate(context.Background(), parisPrefs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Source != domain.GenerationSourceLocal {
		t.Errorf("expected local source, got %s", result.Source)
	}

	itinerary := result.Itinerary
	if len(itinerary.Days) != 3 {
		t.Fatalf("expected 3 day plans, got %d", len(itinerary.Days))
	}

	if len(itinerary.Accommodations) != 1 {
		t.Fatalf("expected 1 accommodation, got %d", len(itinerary.Accommodations))
	}

	accommodation := itinerary.Accommodations[0]
	if accommodation.PricePerNight != 150 {
		t.Errorf("expected comfortable tier nightly price 150, got %v", accommodation.PricePerNight)
	}
	if accommodation.TotalPrice != 450 {
		t.Errorf("expected total price 450 for 3 nights, got %v", accommodation.TotalPrice)
	}

	// No origin means no transport legs; total is accommodation plus
	// the per-day food/activity band over 3 days.
	var activityCost float64
	for _, day := range itinerary.Days {
		if len(day.Activities) != 4 {
			t.Errorf("expected 4 activities per day, got %d on %s", len(day.Activities), day.Date)
		}
		for _, activity := range day.Activities {
			activityCost += activity.Cost
		}
	}

	want := accommodation.TotalPrice + activityCost
	if itinerary.TotalCost != want {
		t.Errorf("total cost %v does not equal accommodation + activities = %v", itinerary.TotalCost, want)
	}

	if itinerary.Days[0].Date != "2025-06-01" {
		t.Errorf("expected first day 2025-06-01, got %s", itinerary.Days[0].Date)
	}
}

func TestLocalGeneration_Deterministic(t *testing.T) {
	t.Parallel()

	generator := service.NewItineraryService(nil)

	first, err := generator.Generate(context.Background(), parisPrefs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := generator.Generate(context.Background(), parisPrefs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Itinerary.TotalCost != second.Itinerary.TotalCost {
		t.Error("local generation is not deterministic")
	}
}

func TestGeneration_DurationClampedToOneDay(t *testing.T) {
	t.Parallel()

	prefs := domain.TripPreferences{
		Destination: "Lisbon",
		StartDate:   time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	if prefs.DurationDays() != 1 {
		t.Errorf("expected duration clamped to 1, got %d", prefs.DurationDays())
	}

	generator := service.NewItineraryService(nil)
	result, err := generator.Generate(context.Background(), prefs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Itinerary.Days) != 1 {
		t.Errorf("expected 1 day plan, got %d", len(result.Itinerary.Days))
	}
}

func TestGeneration_DefaultWindowIsThreeDays(t *testing.T) {
	t.Parallel()

	generator := service.NewItineraryService(nil)
	result, err := generator.Generate(context.Background(), domain.TripPreferences{Destination: "Rome"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Itinerary.Days) != 3 {
		t.Errorf("expected default 3-day window, got %d days", len(result.Itinerary.Days))
	}
}

func TestGeneration_ProviderNotJSON_FallsBackToLocal(t *testing.T) {
	t.Parallel()

	provider := &MockProvider{Response: "not json"}
	generator := service.NewItineraryService(provider)

	result, err := generator.Generate(context.Background(), parisPrefs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if atomic.LoadInt32(&provider.CallCount) == 0 {
		t.Error("expected the provider to be called")
	}

	if result.Source != domain.GenerationSourceLocal {
		t.Errorf("malformed provider output must fall back to local, got %s", result.Source)
	}

	if len(result.Itinerary.Days) != 3 {
		t.Errorf("fallback itinerary incomplete: %d days", len(result.Itinerary.Days))
	}
}

func TestGeneration_ProviderMissingKeys_FallsBackToLocal(t *testing.T) {
	t.Parallel()

	// Parses fine but lacks accommodations/transportation/totalCost.
	provider := &MockProvider{Response: `{"itinerary": [{"date": "2025-06-01", "activities": []}]}`}
	generator := service.NewItineraryService(provider)

	result, err := generator.Generate(context.Background(), parisPrefs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Source != domain.GenerationSourceLocal {
		t.Errorf("partially shaped provider output must not be accepted, got source %s", result.Source)
	}
}

func TestGeneration_ProviderWellFormed_Used(t *testing.T) {
	t.Parallel()

	response := "Here is your itinerary:\n```json\n" + `{
		"itinerary": [
			{"date": "2025-06-01", "activities": [
				{"time": "09:00", "title": "Louvre", "location": {"name": "Louvre"}, "durationMinutes": 180, "type": "sightseeing", "cost": 20}
			]},
			{"date": "2025-06-02", "activities": []},
			{"date": "2025-06-03", "activities": []}
		],
		"accommodations": [
			{"name": "Hotel du Centre", "location": {"name": "Paris"}, "checkIn": "2025-06-01", "checkOut": "2025-06-04", "pricePerNight": 150, "totalPrice": 450}
		],
		"transportation": [],
		"totalCost": 470
	}` + "\n```"

	provider := &MockProvider{Response: response, Model: "gpt-4o-mini"}
	generator := service.NewItineraryService(provider)

	result, err := generator.Generate(context.Background(), parisPrefs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Source != domain.GenerationSourceProvider {
		t.Fatalf("expected provider source, got %s", result.Source)
	}

	if result.Model != "gpt-4o-mini" {
		t.Errorf("expected model recorded, got %q", result.Model)
	}

	if result.Itinerary.TotalCost != 470 {
		t.Errorf("provider cost figures must be trusted as-is, got %v", result.Itinerary.TotalCost)
	}

	if result.Itinerary.Accommodations[0].Name != "Hotel du Centre" {
		t.Errorf("unexpected accommodation: %+v", result.Itinerary.Accommodations[0])
	}
}

func TestGeneration_ProviderError_FallsBackToLocal(t *testing.T) {
	t.Parallel()

	provider := &MockProvider{Err: context.DeadlineExceeded}
	generator := service.NewItineraryService(provider)

	result, err := generator.Generate(context.Background(), parisPrefs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Source != domain.GenerationSourceLocal {
		t.Errorf("provider error must fall back to local, got %s", result.Source)
	}
}

func TestGeneration_HotelTiers(t *testing.T) {
	t.Parallel()

	tiers := map[string]float64{
		"ultraLuxury": 500,
		"luxury":      300,
		"comfortable": 150,
		"budget":      80,
		"experience":  200,
	}

	generator := service.NewItineraryService(nil)

	for style, nightly := range tiers {
		prefs := parisPrefs()
		prefs.HotelStyle = style

		result, err := generator.Generate(context.Background(), prefs)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", style, err)
		}

		got := result.Itinerary.Accommodations[0].PricePerNight
		if got != nightly {
			t.Errorf("tier %s: expected nightly %v, got %v", style, nightly, got)
		}
	}
}
