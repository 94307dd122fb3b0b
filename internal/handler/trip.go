package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"voyago/internal/domain"
	"voyago/internal/middleware"
	"voyago/internal/redis"
	"voyago/internal/repository"
	"voyago/internal/service"
)

// TripHandler handles HTTP requests for trip records.
type TripHandler struct {
	tripRepo  repository.TripRepository
	tripCache redis.TripCacheInterface
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripRepo repository.TripRepository, tripCache redis.TripCacheInterface) *TripHandler {
	return &TripHandler{
		tripRepo:  tripRepo,
		tripCache: tripCache,
	}
}

// CreateTrip handles POST /v1/trips. The record starts as a draft
// holding preferences; generation fills it in later.
func (h *TripHandler) CreateTrip(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	var req TripPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Destination == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "destination is required"})
		return
	}

	prefs, err := parsePreferences(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	now := time.Now()
	trip := &domain.Trip{
		ID:          uuid.New().String(),
		UserID:      userID,
		Preferences: prefs,
		Status:      domain.TripStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.tripRepo.Create(c.Request.Context(), trip); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, tripResponse(trip))
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	tripID := c.Param("id")
	if tripID == "" {
		respondError(c, service.ErrInvalidTripID)
		return
	}
	ctx := c.Request.Context()

	if h.tripCache != nil {
		if cached, err := h.tripCache.Get(ctx, tripID); err == nil && cached != nil {
			if cached.UserID != userID {
				c.JSON(http.StatusNotFound, ErrorResponse{Error: repository.ErrNotFound.Error()})
				return
			}
			respondJSON(c, http.StatusOK, tripResponse(cached))
			return
		}
	}

	trip, err := h.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Trips are only visible to their owner.
	if trip.UserID != userID {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: repository.ErrNotFound.Error()})
		return
	}

	if h.tripCache != nil {
		_ = h.tripCache.Set(ctx, trip)
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// ListTrips handles GET /v1/trips
func (h *TripHandler) ListTrips(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	trips, err := h.tripRepo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, tripResponse(trip))
	}

	respondJSON(c, http.StatusOK, response)
}
