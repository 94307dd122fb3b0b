package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"voyago/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationGenerationComplete NotificationType = "GENERATION_COMPLETE"
	NotificationGenerationFallback NotificationType = "GENERATION_FALLBACK"
	NotificationLowCredits         NotificationType = "LOW_CREDITS"
	NotificationCreditsPurchased   NotificationType = "CREDITS_PURCHASED"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService handles notification delivery.
type NotificationService struct {
	// In a real system, this would have push/email/WebSocket clients.
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyGenerationComplete tells the user their itinerary is ready.
func (s *NotificationService) NotifyGenerationComplete(ctx context.Context, trip *domain.Trip) error {
	notificationType := NotificationGenerationComplete
	message := fmt.Sprintf("Your %s itinerary is ready.", trip.Preferences.Destination)
	if trip.GenerationSource == domain.GenerationSourceLocal {
		notificationType = NotificationGenerationFallback
		message = fmt.Sprintf("Your %s itinerary is ready (built from our curated templates).", trip.Preferences.Destination)
	}

	return s.send(ctx, Notification{
		Type:        notificationType,
		RecipientID: trip.UserID,
		Title:       "Itinerary Ready",
		Message:     message,
		Data: map[string]interface{}{
			"trip_id": trip.ID,
			"source":  trip.GenerationSource,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyLowCredits warns the user they are close to running out.
func (s *NotificationService) NotifyLowCredits(ctx context.Context, userID string, remaining int) error {
	return s.send(ctx, Notification{
		Type:        NotificationLowCredits,
		RecipientID: userID,
		Title:       "Credits Running Low",
		Message:     fmt.Sprintf("You have %d generation credits left this month.", remaining),
		Data: map[string]interface{}{
			"remaining": remaining,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyCreditsPurchased confirms a completed credit purchase.
func (s *NotificationService) NotifyCreditsPurchased(ctx context.Context, userID string, amount int) error {
	return s.send(ctx, Notification{
		Type:        NotificationCreditsPurchased,
		RecipientID: userID,
		Title:       "Credits Added",
		Message:     fmt.Sprintf("%d credits were added to your account.", amount),
		Data: map[string]interface{}{
			"amount": amount,
		},
		CreatedAt: time.Now(),
	})
}

// send delivers a notification (mock implementation).
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Title, notification.Message)

	return nil
}
