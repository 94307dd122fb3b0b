package repository

import (
	"context"

	"voyago/internal/domain"
)

// TripRepository defines the persistence operations for trip records.
type TripRepository interface {
	// Create persists a new trip record.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetByUserID retrieves a user's trips, newest first.
	GetByUserID(ctx context.Context, userID string) ([]*domain.Trip, error)

	// MarkGenerated writes the itinerary payload and generation
	// metadata and moves the trip to generated status.
	MarkGenerated(ctx context.Context, trip *domain.Trip) error
}
