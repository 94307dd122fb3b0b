package tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"voyago/internal/domain"
	"voyago/internal/service"
)

// ──────────────────────────────────────────────
// 1. CREDIT LEDGER PROPERTIES
// ──────────────────────────────────────────────

func TestCreditLedger_ConcurrentReserves_NeverNegative(t *testing.T) {
	t.Parallel()

	creditRepo := NewMockCreditRepository()
	creditRepo.AddAccount(&domain.CreditAccount{
		UserID:           "user-1",
		CreditsRemaining: 5,
		LastResetAt:      time.Now(),
	})

	ledger := service.NewCreditService(creditRepo, 30, 30)

	const attempts = 20
	var wg sync.WaitGroup
	results := make([]bool, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			ok, _, err := ledger.CheckAndReserve(context.Background(), "user-1", 1)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results[idx] = ok
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, ok := range results {
		if ok {
			successes++
		}
	}

	if successes != 5 {
		t.Errorf("expected exactly 5 successful reservations, got %d", successes)
	}

	account := creditRepo.Account("user-1")
	if account.CreditsRemaining != 0 {
		t.Errorf("expected 0 credits remaining, got %d", account.CreditsRemaining)
	}
	if account.CreditsRemaining < 0 {
		t.Error("credits remaining went negative")
	}
}

func TestCreditLedger_MonthlyReset_BeforeReservation(t *testing.T) {
	t.Parallel()

	creditRepo := NewMockCreditRepository()
	creditRepo.AddAccount(&domain.CreditAccount{
		UserID:           "user-1",
		CreditsRemaining: 0,
		TotalCreditsUsed: 30,
		LastResetAt:      time.Now().AddDate(0, -1, 0),
	})

	ledger := service.NewCreditService(creditRepo, 30, 30)

	ok, remaining, err := ledger.CheckAndReserve(context.Background(), "user-1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !ok {
		t.Fatal("expected reservation to succeed after monthly reset")
	}

	if remaining != 29 {
		t.Errorf("expected 29 remaining after reset and reservation, got %d", remaining)
	}
}

func TestCreditLedger_EnsureAccount_CreatedLazilyWithStartingBalance(t *testing.T) {
	t.Parallel()

	creditRepo := NewMockCreditRepository()
	ledger := service.NewCreditService(creditRepo, 30, 30)

	account, err := ledger.EnsureAccount(context.Background(), "new-user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.CreditsRemaining != 30 {
		t.Errorf("expected starting balance 30, got %d", account.CreditsRemaining)
	}

	// A second call must return the same account, not recreate it.
	_, _, err = ledger.CheckAndReserve(context.Background(), "new-user", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, err = ledger.EnsureAccount(context.Background(), "new-user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.CreditsRemaining != 29 {
		t.Errorf("expected 29 after one reservation, got %d", account.CreditsRemaining)
	}
}

func TestCreditLedger_Refund_IdempotentPerAttempt(t *testing.T) {
	t.Parallel()

	creditRepo := NewMockCreditRepository()
	creditRepo.AddAccount(&domain.CreditAccount{
		UserID:           "user-1",
		CreditsRemaining: 10,
		LastResetAt:      time.Now(),
	})

	ledger := service.NewCreditService(creditRepo, 30, 30)

	ok, _, err := ledger.CheckAndReserve(context.Background(), "user-1", 1)
	if err != nil || !ok {
		t.Fatalf("reservation failed: ok=%v err=%v", ok, err)
	}

	// Refund retried with the same attempt id applies once.
	for i := 0; i < 3; i++ {
		if err := ledger.Refund(context.Background(), "user-1", 1, "attempt-1"); err != nil {
			t.Fatalf("unexpected refund error: %v", err)
		}
	}

	account := creditRepo.Account("user-1")
	if account.CreditsRemaining != 10 {
		t.Errorf("expected balance restored to 10, got %d", account.CreditsRemaining)
	}
	if account.TotalCreditsUsed != 0 {
		t.Errorf("expected total used back to 0, got %d", account.TotalCreditsUsed)
	}
}

func TestCreditLedger_Purchase_DedupedByExternalRef(t *testing.T) {
	t.Parallel()

	creditRepo := NewMockCreditRepository()
	ledger := service.NewCreditService(creditRepo, 30, 30)

	credited, err := ledger.Credit(context.Background(), "user-1", 10, "txn-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !credited {
		t.Fatal("expected first purchase delivery to credit")
	}

	// Duplicate webhook delivery.
	credited, err = ledger.Credit(context.Background(), "user-1", 10, "txn-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credited {
		t.Error("expected duplicate delivery to be ignored")
	}

	account := creditRepo.Account("user-1")
	if account.CreditsRemaining != 40 {
		t.Errorf("expected 30 starting + 10 purchased = 40, got %d", account.CreditsRemaining)
	}
}

func TestCreditLedger_InsufficientBalance_NoMutation(t *testing.T) {
	t.Parallel()

	creditRepo := NewMockCreditRepository()
	creditRepo.AddAccount(&domain.CreditAccount{
		UserID:           "user-1",
		CreditsRemaining: 0,
		TotalCreditsUsed: 3,
		LastResetAt:      time.Now(),
	})

	ledger := service.NewCreditService(creditRepo, 30, 30)

	ok, remaining, err := ledger.CheckAndReserve(context.Background(), "user-1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ok {
		t.Fatal("expected reservation to be denied")
	}
	if remaining != 0 {
		t.Errorf("expected remaining 0, got %d", remaining)
	}

	account := creditRepo.Account("user-1")
	if account.TotalCreditsUsed != 3 {
		t.Errorf("denied reservation must not mutate state, total used = %d", account.TotalCreditsUsed)
	}
}
