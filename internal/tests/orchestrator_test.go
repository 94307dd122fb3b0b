package tests

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"voyago/internal/domain"
	"voyago/internal/repository"
	"voyago/internal/service"
)

// ──────────────────────────────────────────────
// 4. GENERATION ORCHESTRATION
// ──────────────────────────────────────────────

type orchestratorFixture struct {
	creditRepo *MockCreditRepository
	tripRepo   *MockTripRepository
	provider   *MockProvider
	lockStore  *MockLockStore
	tripCache  *MockTripCache
	service    *service.GenerationService
}

func newOrchestratorFixture(credits int) *orchestratorFixture {
	creditRepo := NewMockCreditRepository()
	creditRepo.AddAccount(&domain.CreditAccount{
		UserID:           "user-1",
		CreditsRemaining: credits,
		LastResetAt:      time.Now(),
	})

	tripRepo := NewMockTripRepository()
	provider := &MockProvider{Response: "not json"} // Falls back to local.
	lockStore := NewMockLockStore()
	tripCache := NewMockTripCache()

	creditService := service.NewCreditService(creditRepo, 30, 30)
	generationService := service.NewGenerationService(
		creditService,
		service.NewItineraryService(provider),
		service.NewEnricher("hotel-aff", "flight-aff", "activity-aff"),
		service.NewNotificationService(),
		tripRepo,
		tripCache,
		lockStore,
		30*time.Second,
		3,
	)

	return &orchestratorFixture{
		creditRepo: creditRepo,
		tripRepo:   tripRepo,
		provider:   provider,
		lockStore:  lockStore,
		tripCache:  tripCache,
		service:    generationService,
	}
}

func TestOrchestrator_SuccessDebitsExactlyOneCredit(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(5)

	trip, err := f.service.GenerateForUser(context.Background(), service.GenerateRequest{
		UserID:      "user-1",
		Preferences: parisPrefs(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.Status != domain.TripStatusGenerated {
		t.Errorf("expected generated status, got %s", trip.Status)
	}

	if trip.Itinerary == nil {
		t.Fatal("expected an itinerary on the trip")
	}

	account := f.creditRepo.Account("user-1")
	if account.CreditsRemaining != 4 {
		t.Errorf("expected exactly one credit consumed, remaining = %d", account.CreditsRemaining)
	}
	if account.TotalCreditsUsed != 1 {
		t.Errorf("expected total used 1, got %d", account.TotalCreditsUsed)
	}

	if f.tripRepo.CountTrips() != 1 {
		t.Errorf("expected 1 persisted trip, got %d", f.tripRepo.CountTrips())
	}
}

func TestOrchestrator_LocalFallbackStillConsumesCredit(t *testing.T) {
	t.Parallel()

	// Provider output is junk: the pipeline falls back to local
	// generation, which is a successful outcome and keeps the debit.
	f := newOrchestratorFixture(2)

	trip, err := f.service.GenerateForUser(context.Background(), service.GenerateRequest{
		UserID:      "user-1",
		Preferences: parisPrefs(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.GenerationSource != domain.GenerationSourceLocal {
		t.Errorf("expected local source, got %s", trip.GenerationSource)
	}

	account := f.creditRepo.Account("user-1")
	if account.CreditsRemaining != 1 {
		t.Errorf("local fallback must still consume the credit, remaining = %d", account.CreditsRemaining)
	}

	if atomic.LoadInt32(&f.creditRepo.RefundCallCount) != 0 {
		t.Error("no refund expected on a successful generation")
	}
}

func TestOrchestrator_InsufficientCredits_NoSideEffects(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(0)

	_, err := f.service.GenerateForUser(context.Background(), service.GenerateRequest{
		UserID:      "user-1",
		Preferences: parisPrefs(),
	})
	if !errors.Is(err, service.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}

	if f.tripRepo.CountTrips() != 0 {
		t.Error("no trip must be persisted when reservation is denied")
	}

	if atomic.LoadInt32(&f.provider.CallCount) != 0 {
		t.Error("provider must not be called when reservation is denied")
	}
}

func TestOrchestrator_PersistenceFailure_RefundsReservation(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(5)
	f.tripRepo.CreateError = errors.New("store unavailable")

	_, err := f.service.GenerateForUser(context.Background(), service.GenerateRequest{
		UserID:      "user-1",
		Preferences: parisPrefs(),
	})
	if !errors.Is(err, service.ErrPersistenceFailed) {
		t.Fatalf("expected ErrPersistenceFailed, got %v", err)
	}

	// One immediate retry, then fail.
	if got := atomic.LoadInt32(&f.tripRepo.CreateCallCount); got != 2 {
		t.Errorf("expected exactly 2 write attempts, got %d", got)
	}

	account := f.creditRepo.Account("user-1")
	if account.CreditsRemaining != 5 {
		t.Errorf("refund must restore the balance, remaining = %d", account.CreditsRemaining)
	}
	if account.TotalCreditsUsed != 0 {
		t.Errorf("refund must restore total used, got %d", account.TotalCreditsUsed)
	}
}

func TestOrchestrator_TransientWriteFailure_RetrySucceeds(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(5)
	f.tripRepo.FailCreateTimes = 1

	trip, err := f.service.GenerateForUser(context.Background(), service.GenerateRequest{
		UserID:      "user-1",
		Preferences: parisPrefs(),
	})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}

	if trip.Status != domain.TripStatusGenerated {
		t.Errorf("expected generated trip after retry, got %s", trip.Status)
	}

	account := f.creditRepo.Account("user-1")
	if account.CreditsRemaining != 4 {
		t.Errorf("successful retry keeps the debit, remaining = %d", account.CreditsRemaining)
	}
}

func TestOrchestrator_CancelledGeneration_Refunds(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(5)
	f.provider.Err = context.Canceled

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.GenerateForUser(ctx, service.GenerateRequest{
		UserID:      "user-1",
		Preferences: parisPrefs(),
	})
	if !errors.Is(err, service.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}

	account := f.creditRepo.Account("user-1")
	if account.CreditsRemaining != 5 {
		t.Errorf("cancelled generation must refund, remaining = %d", account.CreditsRemaining)
	}
}

func TestOrchestrator_DestinationRequired(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(5)

	_, err := f.service.GenerateForUser(context.Background(), service.GenerateRequest{
		UserID:      "user-1",
		Preferences: domain.TripPreferences{},
	})
	if !errors.Is(err, service.ErrDestinationRequired) {
		t.Fatalf("expected ErrDestinationRequired, got %v", err)
	}

	if atomic.LoadInt32(&f.creditRepo.ReserveCallCount) != 0 {
		t.Error("validation failures must not reach the ledger")
	}
}

func TestOrchestrator_RegenerateExistingTrip(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(5)
	f.tripRepo.AddTrip(&domain.Trip{
		ID:     "trip-1",
		UserID: "user-1",
		Status: domain.TripStatusDraft,
	})

	trip, err := f.service.GenerateForUser(context.Background(), service.GenerateRequest{
		UserID:      "user-1",
		Preferences: parisPrefs(),
		TripID:      "trip-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.ID != "trip-1" {
		t.Errorf("expected regeneration into trip-1, got %s", trip.ID)
	}

	stored := f.tripRepo.Trip("trip-1")
	if stored.Status != domain.TripStatusGenerated {
		t.Errorf("expected stored trip generated, got %s", stored.Status)
	}

	if atomic.LoadInt32(&f.tripCache.InvalidateCallCount) == 0 {
		t.Error("expected the trip cache to be invalidated after regeneration")
	}
}

func TestOrchestrator_RegenerateHeldLock_NoDebit(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(5)
	f.tripRepo.AddTrip(&domain.Trip{
		ID:     "trip-1",
		UserID: "user-1",
		Status: domain.TripStatusDraft,
	})
	f.lockStore.Hold("trip-1")

	_, err := f.service.GenerateForUser(context.Background(), service.GenerateRequest{
		UserID:      "user-1",
		Preferences: parisPrefs(),
		TripID:      "trip-1",
	})
	if !errors.Is(err, service.ErrGenerationInProgress) {
		t.Fatalf("expected ErrGenerationInProgress, got %v", err)
	}

	account := f.creditRepo.Account("user-1")
	if account.CreditsRemaining != 5 {
		t.Errorf("denied lock must not touch the ledger, remaining = %d", account.CreditsRemaining)
	}
}

func TestOrchestrator_RegenerateOtherUsersTrip_NotFound(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(5)
	f.tripRepo.AddTrip(&domain.Trip{
		ID:     "trip-1",
		UserID: "someone-else",
		Status: domain.TripStatusDraft,
	})

	_, err := f.service.GenerateForUser(context.Background(), service.GenerateRequest{
		UserID:      "user-1",
		Preferences: parisPrefs(),
		TripID:      "trip-1",
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOrchestrator_EndToEnd_LastCredit(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(1)

	trip, err := f.service.GenerateForUser(context.Background(), service.GenerateRequest{
		UserID:      "user-1",
		Preferences: parisPrefs(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.Status != domain.TripStatusGenerated {
		t.Errorf("expected generated trip, got %s", trip.Status)
	}

	// The next reservation for this user must be denied.
	ledger := service.NewCreditService(f.creditRepo, 30, 30)
	ok, _, err := ledger.CheckAndReserve(context.Background(), "user-1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected reservation denial after the last credit was spent")
	}
}
