package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"voyago/internal/middleware"
	"voyago/internal/service"
)

const webhookSecretHeader = "X-Webhook-Secret"

// CreditHandler handles HTTP requests for credit balances and the
// external payment webhook.
type CreditHandler struct {
	creditService       *service.CreditService
	notificationService *service.NotificationService
	webhookSecret       string
}

// NewCreditHandler creates a new CreditHandler.
func NewCreditHandler(creditService *service.CreditService, notificationService *service.NotificationService, webhookSecret string) *CreditHandler {
	return &CreditHandler{
		creditService:       creditService,
		notificationService: notificationService,
		webhookSecret:       webhookSecret,
	}
}

// BalanceResponse is the HTTP response for the credit balance.
type BalanceResponse struct {
	CreditsRemaining int    `json:"credits_remaining"`
	TotalCreditsUsed int    `json:"total_credits_used"`
	LastResetAt      string `json:"last_reset_at"`
}

// PurchaseRequest is the payment collaborator's webhook body.
type PurchaseRequest struct {
	UserID      string `json:"user_id"`
	Amount      int    `json:"amount"`
	ExternalRef string `json:"external_ref"`
}

// PurchaseResponse is the HTTP response for a credit purchase.
type PurchaseResponse struct {
	Credited bool `json:"credited"`
}

// GetBalance handles GET /v1/credits
func (h *CreditHandler) GetBalance(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	account, err := h.creditService.EnsureAccount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Show the post-reset view without spending anything.
	account, err = h.creditService.Balance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, BalanceResponse{
		CreditsRemaining: account.CreditsRemaining,
		TotalCreditsUsed: account.TotalCreditsUsed,
		LastResetAt:      account.LastResetAt.Format(time.RFC3339),
	})
}

// Purchase handles POST /v1/credits/purchase, the out-of-band payment
// completion webhook. Authenticated by shared secret, not a user token.
func (h *CreditHandler) Purchase(c *gin.Context) {
	if h.webhookSecret == "" || c.GetHeader(webhookSecretHeader) != h.webhookSecret {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid webhook secret"})
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	credited, err := h.creditService.Credit(c.Request.Context(), req.UserID, req.Amount, req.ExternalRef)
	if err != nil {
		respondError(c, err)
		return
	}

	if credited && h.notificationService != nil {
		_ = h.notificationService.NotifyCreditsPurchased(c.Request.Context(), req.UserID, req.Amount)
	}

	respondJSON(c, http.StatusOK, PurchaseResponse{Credited: credited})
}
