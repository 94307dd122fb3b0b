package repository

import (
	"context"
	"time"

	"voyago/internal/domain"
)

// CreditRepository defines the persistence operations for credit
// accounts. All balance mutations are single conditional updates so a
// read-then-write race can never over-spend an account.
type CreditRepository interface {
	// GetByUserID retrieves a credit account.
	GetByUserID(ctx context.Context, userID string) (*domain.CreditAccount, error)

	// CreateIfAbsent inserts the account unless one already exists for
	// the user. A concurrent duplicate insert is not an error.
	CreateIfAbsent(ctx context.Context, account *domain.CreditAccount) error

	// Reserve atomically decrements credits_remaining by amount when
	// the balance covers it, incrementing total_credits_used in the
	// same statement. Returns (false, 0, nil) when the balance is
	// insufficient; no state changes in that case.
	Reserve(ctx context.Context, userID string, amount int) (bool, int, error)

	// ResetIfStale restores the monthly allotment when last_reset_at
	// falls in an earlier calendar month than now. No-op otherwise.
	ResetIfStale(ctx context.Context, userID string, allotment int, now time.Time) error

	// Refund reverses a reservation. Idempotent per attemptID: a
	// retried refund for the same attempt applies at most once.
	Refund(ctx context.Context, userID string, amount int, attemptID string) error

	// AddCredits applies a credit purchase. Returns false when the
	// purchase's external reference was already recorded (duplicate
	// webhook delivery); the balance is untouched in that case.
	AddCredits(ctx context.Context, purchase *domain.CreditPurchase) (bool, error)
}
