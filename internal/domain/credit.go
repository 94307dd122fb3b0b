package domain

import "time"

// CreditAccount tracks generation credits for a single user.
// CreditsRemaining never goes negative; all debits go through the
// ledger's conditional update.
type CreditAccount struct {
	UserID           string
	CreditsRemaining int
	TotalCreditsUsed int
	LastResetAt      time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CreditPurchase records credits added by the external payment
// collaborator. ExternalRef is the payment provider's transaction id
// and is unique, so duplicate webhook deliveries never double-credit.
type CreditPurchase struct {
	ID          string
	UserID      string
	Amount      int
	ExternalRef string
	CreatedAt   time.Time
}
