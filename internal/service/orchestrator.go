package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"voyago/internal/domain"
	"voyago/internal/redis"
	"voyago/internal/repository"
)

const generationLockTTL = 2 * time.Minute

// GenerationService is the single entry point for credit-gated
// itinerary generation. It owns the ordering: reserve a credit first,
// generate, enrich, persist, and refund the reservation on any failure
// before the trip is durably marked generated.
type GenerationService struct {
	creditService       *CreditService
	itineraryService    *ItineraryService
	enricher            *Enricher
	notificationService *NotificationService
	tripRepo            repository.TripRepository
	tripCache           redis.TripCacheInterface
	lockStore           redis.LockStoreInterface
	timeout             time.Duration
	lowCreditsThreshold int
}

// NewGenerationService creates a new GenerationService. tripCache and
// lockStore may be nil; the flow then runs without caching or
// regeneration locking.
func NewGenerationService(
	creditService *CreditService,
	itineraryService *ItineraryService,
	enricher *Enricher,
	notificationService *NotificationService,
	tripRepo repository.TripRepository,
	tripCache redis.TripCacheInterface,
	lockStore redis.LockStoreInterface,
	timeout time.Duration,
	lowCreditsThreshold int,
) *GenerationService {
	return &GenerationService{
		creditService:       creditService,
		itineraryService:    itineraryService,
		enricher:            enricher,
		notificationService: notificationService,
		tripRepo:            tripRepo,
		tripCache:           tripCache,
		lockStore:           lockStore,
		timeout:             timeout,
		lowCreditsThreshold: lowCreditsThreshold,
	}
}

// GenerateRequest contains the parameters for a generation attempt.
type GenerateRequest struct {
	UserID      string
	Preferences domain.TripPreferences
	TripID      string // Optional: regenerate into an existing trip record.
}

// GenerateForUser runs the full credit-gated pipeline and returns the
// generated trip record. The credit is only permanently consumed once
// the trip is durably marked generated; every failure after the
// reservation refunds it, idempotently per attempt.
func (s *GenerationService) GenerateForUser(ctx context.Context, req GenerateRequest) (*domain.Trip, error) {
	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}

	if req.Preferences.Destination == "" {
		return nil, ErrDestinationRequired
	}

	// Load the existing trip and take the regeneration lock before
	// reserving, so a denied lock needs no refund.
	var existing *domain.Trip
	if req.TripID != "" {
		trip, err := s.tripRepo.GetByID(ctx, req.TripID)
		if err != nil {
			return nil, err
		}
		if trip.UserID != req.UserID {
			return nil, repository.ErrNotFound
		}
		existing = trip

		if s.lockStore != nil {
			locked, err := s.lockStore.AcquireGenerationLock(ctx, req.TripID, generationLockTTL)
			if err != nil {
				return nil, err
			}
			if !locked {
				return nil, ErrGenerationInProgress
			}
			defer func() {
				_ = s.lockStore.ReleaseGenerationLock(ctx, req.TripID)
			}()
		}
	}

	if _, err := s.creditService.EnsureAccount(ctx, req.UserID); err != nil {
		return nil, err
	}

	ok, remaining, err := s.creditService.CheckAndReserve(ctx, req.UserID, 1)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInsufficientCredits
	}

	// One refund per attempt, even if the refund call is retried.
	attemptID := uuid.New().String()

	genCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	result, err := s.itineraryService.Generate(genCtx, req.Preferences)
	if err != nil {
		s.refund(ctx, req.UserID, attemptID)
		return nil, ErrGenerationFailed
	}

	s.enricher.Enrich(result.Itinerary, req.Preferences.Destination)

	trip := existing
	now := time.Now()
	if trip == nil {
		trip = &domain.Trip{
			ID:        uuid.New().String(),
			UserID:    req.UserID,
			CreatedAt: now,
		}
	}
	trip.Preferences = req.Preferences
	trip.Itinerary = result.Itinerary
	trip.Status = domain.TripStatusGenerated
	trip.GenerationSource = result.Source
	trip.GenerationModel = result.Model
	trip.GenerationMs = time.Since(started).Milliseconds()
	trip.UpdatedAt = now

	if err := s.persist(ctx, trip, existing != nil); err != nil {
		s.refund(ctx, req.UserID, attemptID)
		return nil, ErrPersistenceFailed
	}

	// The write is durable: the transaction is complete regardless of
	// what happens below.
	if s.tripCache != nil {
		_ = s.tripCache.Invalidate(ctx, trip.ID)
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyGenerationComplete(ctx, trip)
		if remaining <= s.lowCreditsThreshold {
			_ = s.notificationService.NotifyLowCredits(ctx, req.UserID, remaining)
		}
	}

	return trip, nil
}

// persist writes the trip with at most one immediate retry.
func (s *GenerationService) persist(ctx context.Context, trip *domain.Trip, update bool) error {
	write := func() error {
		if update {
			return s.tripRepo.MarkGenerated(ctx, trip)
		}
		return s.tripRepo.Create(ctx, trip)
	}

	err := write()
	if err == nil || errors.Is(err, repository.ErrNotFound) || ctx.Err() != nil {
		return err
	}

	log.Printf("trip write failed, retrying once: %v", err)
	return write()
}

// refund returns the reserved credit, best effort. A failed refund is
// logged rather than masking the original pipeline error.
func (s *GenerationService) refund(ctx context.Context, userID, attemptID string) {
	// Use a fresh deadline: the pipeline context may already be
	// cancelled, and the refund must still be attempted.
	refundCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.creditService.Refund(refundCtx, userID, 1, attemptID); err != nil {
		log.Printf("credit refund failed for user %s attempt %s: %v", userID, attemptID, err)
	}
}
