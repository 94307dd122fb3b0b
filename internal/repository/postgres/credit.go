package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"voyago/internal/domain"
	"voyago/internal/repository"
)

// CreditRepository is a PostgreSQL implementation of repository.CreditRepository.
//
// Schema:
//
//	credit_accounts(user_id PK, credits_remaining, total_credits_used,
//	                last_reset_at, created_at, updated_at)
//	credit_refunds(attempt_id PK, user_id, amount, created_at)
//	credit_purchases(id PK, user_id, amount, external_ref UNIQUE, created_at)
type CreditRepository struct {
	q Querier
}

// NewCreditRepository creates a new PostgreSQL credit repository.
func NewCreditRepository(db *sql.DB) *CreditRepository {
	return &CreditRepository{q: db}
}

// NewCreditRepositoryWithTx creates a credit repository using a transaction.
func NewCreditRepositoryWithTx(tx *sql.Tx) *CreditRepository {
	return &CreditRepository{q: tx}
}

// GetByUserID retrieves a credit account.
func (r *CreditRepository) GetByUserID(ctx context.Context, userID string) (*domain.CreditAccount, error) {
	query := `
		SELECT user_id, credits_remaining, total_credits_used, last_reset_at, created_at, updated_at
		FROM credit_accounts WHERE user_id = $1
	`

	var account domain.CreditAccount
	err := r.q.QueryRowContext(ctx, query, userID).Scan(
		&account.UserID,
		&account.CreditsRemaining,
		&account.TotalCreditsUsed,
		&account.LastResetAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &account, nil
}

// CreateIfAbsent inserts the account unless one already exists. The
// unique constraint on user_id is the correctness mechanism: a losing
// concurrent insert simply does nothing.
func (r *CreditRepository) CreateIfAbsent(ctx context.Context, account *domain.CreditAccount) error {
	query := `
		INSERT INTO credit_accounts (user_id, credits_remaining, total_credits_used, last_reset_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (user_id) DO NOTHING
	`

	_, err := r.q.ExecContext(ctx, query,
		account.UserID,
		account.CreditsRemaining,
		account.TotalCreditsUsed,
		account.LastResetAt,
	)

	return err
}

// Reserve takes amount credits in a single conditional update. Two
// concurrent reservations can never both succeed against a balance
// that only covers one.
func (r *CreditRepository) Reserve(ctx context.Context, userID string, amount int) (bool, int, error) {
	query := `
		UPDATE credit_accounts
		SET credits_remaining = credits_remaining - $2,
		    total_credits_used = total_credits_used + $2,
		    updated_at = now()
		WHERE user_id = $1 AND credits_remaining >= $2
		RETURNING credits_remaining
	`

	var remaining int
	err := r.q.QueryRowContext(ctx, query, userID, amount).Scan(&remaining)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, 0, nil
		}
		return false, 0, err
	}

	return true, remaining, nil
}

// ResetIfStale restores the monthly allotment when the last reset was
// in an earlier calendar month. The month comparison lives in the
// predicate, so concurrent calls apply the reset at most once.
func (r *CreditRepository) ResetIfStale(ctx context.Context, userID string, allotment int, now time.Time) error {
	query := `
		UPDATE credit_accounts
		SET credits_remaining = $2, last_reset_at = $3, updated_at = now()
		WHERE user_id = $1 AND date_trunc('month', last_reset_at) < date_trunc('month', $3::timestamptz)
	`

	_, err := r.q.ExecContext(ctx, query, userID, allotment, now)
	return err
}

// Refund returns amount credits to the account, at most once per
// attempt. The refund row insert and the balance update share one
// statement, so a retried refund that loses the attempt_id conflict
// leaves the balance alone.
func (r *CreditRepository) Refund(ctx context.Context, userID string, amount int, attemptID string) error {
	query := `
		WITH applied AS (
			INSERT INTO credit_refunds (attempt_id, user_id, amount, created_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (attempt_id) DO NOTHING
			RETURNING amount
		)
		UPDATE credit_accounts
		SET credits_remaining = credits_remaining + (SELECT amount FROM applied),
		    total_credits_used = GREATEST(total_credits_used - (SELECT amount FROM applied), 0),
		    updated_at = now()
		WHERE user_id = $2 AND EXISTS (SELECT 1 FROM applied)
	`

	_, err := r.q.ExecContext(ctx, query, attemptID, userID, amount)
	return err
}

// AddCredits applies a purchase keyed by its external reference.
// Returns false when the reference was already recorded.
func (r *CreditRepository) AddCredits(ctx context.Context, purchase *domain.CreditPurchase) (bool, error) {
	query := `
		WITH applied AS (
			INSERT INTO credit_purchases (id, user_id, amount, external_ref, created_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (external_ref) DO NOTHING
			RETURNING amount
		)
		UPDATE credit_accounts
		SET credits_remaining = credits_remaining + (SELECT amount FROM applied),
		    updated_at = now()
		WHERE user_id = $2 AND EXISTS (SELECT 1 FROM applied)
	`

	result, err := r.q.ExecContext(ctx, query,
		purchase.ID,
		purchase.UserID,
		purchase.Amount,
		purchase.ExternalRef,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// Ensure CreditRepository implements repository.CreditRepository.
var _ repository.CreditRepository = (*CreditRepository)(nil)
