package service

import "errors"

var (
	// ErrInvalidUserID is returned when the user id is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidTripID is returned when the trip id is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrDestinationRequired is returned when preferences lack a destination.
	ErrDestinationRequired = errors.New("destination is required")

	// ErrInsufficientCredits is returned when a reservation is denied.
	ErrInsufficientCredits = errors.New("no credits remaining")

	// ErrGenerationFailed is returned when both the provider and the
	// local generator failed to produce an itinerary.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrPersistenceFailed is returned when the generated trip could
	// not be written back.
	ErrPersistenceFailed = errors.New("failed to persist")

	// ErrGenerationInProgress is returned when another request already
	// holds the regeneration lock for the same trip.
	ErrGenerationInProgress = errors.New("generation already in progress for this trip")

	// ErrInvalidPurchase is returned when a credit purchase has a
	// non-positive amount or no external reference.
	ErrInvalidPurchase = errors.New("invalid credit purchase")

	// ErrInvalidAmount is returned when a credit operation amount is
	// not positive.
	ErrInvalidAmount = errors.New("invalid credit amount")
)
