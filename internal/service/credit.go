package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"voyago/internal/domain"
	"voyago/internal/repository"
)

// CreditService is the ledger for generation credits. It enforces one
// credit per successful generation: reservations are single conditional
// updates at the store, so the balance can never go negative, and every
// refund is idempotent per attempt.
type CreditService struct {
	creditRepo       repository.CreditRepository
	startingBalance  int
	monthlyAllotment int
}

// NewCreditService creates a new CreditService.
func NewCreditService(creditRepo repository.CreditRepository, startingBalance, monthlyAllotment int) *CreditService {
	return &CreditService{
		creditRepo:       creditRepo,
		startingBalance:  startingBalance,
		monthlyAllotment: monthlyAllotment,
	}
}

// EnsureAccount returns the user's credit account, creating it with the
// starting balance on first use. Safe under concurrent calls for the
// same new user: the insert is conditional on the user_id unique
// constraint and the account is re-read afterwards.
func (s *CreditService) EnsureAccount(ctx context.Context, userID string) (*domain.CreditAccount, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	now := time.Now()
	account := &domain.CreditAccount{
		UserID:           userID,
		CreditsRemaining: s.startingBalance,
		LastResetAt:      now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.creditRepo.CreateIfAbsent(ctx, account); err != nil {
		return nil, err
	}

	return s.creditRepo.GetByUserID(ctx, userID)
}

// CheckAndReserve takes amount credits from the user's balance. The
// monthly allotment is restored first when the last reset fell in an
// earlier calendar month. Returns ok=false and the untouched balance
// when the account cannot cover the amount.
func (s *CreditService) CheckAndReserve(ctx context.Context, userID string, amount int) (bool, int, error) {
	if userID == "" {
		return false, 0, ErrInvalidUserID
	}

	if amount <= 0 {
		return false, 0, ErrInvalidAmount
	}

	if err := s.creditRepo.ResetIfStale(ctx, userID, s.monthlyAllotment, time.Now()); err != nil {
		return false, 0, err
	}

	ok, remaining, err := s.creditRepo.Reserve(ctx, userID, amount)
	if err != nil {
		return false, 0, err
	}

	if !ok {
		account, err := s.creditRepo.GetByUserID(ctx, userID)
		if err != nil {
			return false, 0, err
		}
		return false, account.CreditsRemaining, nil
	}

	return true, remaining, nil
}

// Refund reverses a reservation after a failed generation attempt.
// attemptID makes retried refunds apply at most once.
func (s *CreditService) Refund(ctx context.Context, userID string, amount int, attemptID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}

	if amount <= 0 {
		return ErrInvalidAmount
	}

	return s.creditRepo.Refund(ctx, userID, amount, attemptID)
}

// Credit applies a purchase from the external payment collaborator.
// Duplicate deliveries of the same external reference are reported as
// applied=false and leave the balance untouched.
func (s *CreditService) Credit(ctx context.Context, userID string, amount int, externalRef string) (bool, error) {
	if userID == "" {
		return false, ErrInvalidUserID
	}

	if amount <= 0 || externalRef == "" {
		return false, ErrInvalidPurchase
	}

	// The purchase may arrive before the user ever generated anything.
	if _, err := s.EnsureAccount(ctx, userID); err != nil {
		return false, err
	}

	return s.creditRepo.AddCredits(ctx, &domain.CreditPurchase{
		ID:          uuid.New().String(),
		UserID:      userID,
		Amount:      amount,
		ExternalRef: externalRef,
		CreatedAt:   time.Now(),
	})
}

// Balance returns the account as the user should see it, applying any
// pending monthly reset first.
func (s *CreditService) Balance(ctx context.Context, userID string) (*domain.CreditAccount, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	if err := s.creditRepo.ResetIfStale(ctx, userID, s.monthlyAllotment, time.Now()); err != nil {
		return nil, err
	}

	return s.creditRepo.GetByUserID(ctx, userID)
}
