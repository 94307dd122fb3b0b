package domain

import "time"

// TripStatus represents the current status of a trip record.
type TripStatus string

const (
	TripStatusDraft     TripStatus = "draft"
	TripStatusGenerated TripStatus = "generated"
)

// GenerationSource identifies which path produced an itinerary.
type GenerationSource string

const (
	GenerationSourceProvider GenerationSource = "provider"
	GenerationSourceLocal    GenerationSource = "local"
)

// TripPreferences is the validated input to itinerary generation.
// Destination is the only required field; everything else has a default.
type TripPreferences struct {
	Destination   string
	Origin        string
	TransportMode string
	StartDate     time.Time
	EndDate       time.Time
	HotelStyle    string
	Cuisine       string
	Theme         string
	GroupType     string
	GroupCount    int
	Budget        string
}

// defaultTripDays is assumed when no date range is provided.
const defaultTripDays = 3

// DurationDays returns the trip length in days, clamped to at least 1.
// A missing date range means a default 3-day window.
func (p TripPreferences) DurationDays() int {
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return defaultTripDays
	}

	span := p.EndDate.Sub(p.StartDate)
	days := int(span / (24 * time.Hour))
	if span%(24*time.Hour) > 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// Travelers returns the effective group size, defaulting to 2.
func (p TripPreferences) Travelers() int {
	if p.GroupCount < 1 {
		return 2
	}
	return p.GroupCount
}

// Trip represents a persisted trip record and, once generated, its
// itinerary payload.
type Trip struct {
	ID          string
	UserID      string
	Preferences TripPreferences
	Itinerary   *Itinerary
	Status      TripStatus

	// Generation metadata, set when the trip transitions to generated.
	GenerationSource GenerationSource
	GenerationModel  string
	GenerationMs     int64

	CreatedAt time.Time
	UpdatedAt time.Time
}
