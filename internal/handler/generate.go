package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"voyago/internal/domain"
	"voyago/internal/middleware"
	"voyago/internal/service"
)

// GenerateHandler handles HTTP requests for itinerary generation.
type GenerateHandler struct {
	generationService *service.GenerationService
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(generationService *service.GenerationService) *GenerateHandler {
	return &GenerateHandler{generationService: generationService}
}

// TripPreferencesRequest is the HTTP request body shape for trip
// preferences. Dates are "2006-01-02" strings.
type TripPreferencesRequest struct {
	Destination   string `json:"destination"`
	Origin        string `json:"origin,omitempty"`
	TransportMode string `json:"transport_mode,omitempty"`
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	HotelStyle    string `json:"hotel_style,omitempty"`
	Cuisine       string `json:"cuisine,omitempty"`
	Theme         string `json:"theme,omitempty"`
	GroupType     string `json:"group_type,omitempty"`
	GroupCount    int    `json:"group_count,omitempty"`
	Budget        string `json:"budget,omitempty"`
}

// GenerateTripRequest is the HTTP request body for generation.
type GenerateTripRequest struct {
	TripPreferencesRequest
	TripID string `json:"trip_id,omitempty"`
}

// TripResponse is the HTTP representation of a trip record.
type TripResponse struct {
	ID               string            `json:"id"`
	UserID           string            `json:"user_id"`
	Destination      string            `json:"destination"`
	Status           string            `json:"status"`
	Itinerary        *domain.Itinerary `json:"itinerary,omitempty"`
	GenerationSource string            `json:"generation_source,omitempty"`
	CreatedAt        string            `json:"created_at"`
	UpdatedAt        string            `json:"updated_at"`
}

// GenerateResponse is the HTTP response for generation.
type GenerateResponse struct {
	Trip TripResponse `json:"trip"`
}

// Generate handles POST /v1/itineraries/generate
func (h *GenerateHandler) Generate(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	var req GenerateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	prefs, err := parsePreferences(req.TripPreferencesRequest)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	trip, err := h.generationService.GenerateForUser(c.Request.Context(), service.GenerateRequest{
		UserID:      userID,
		Preferences: prefs,
		TripID:      req.TripID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, GenerateResponse{Trip: tripResponse(trip)})
}

// parsePreferences converts the wire shape to domain preferences.
func parsePreferences(req TripPreferencesRequest) (domain.TripPreferences, error) {
	prefs := domain.TripPreferences{
		Destination:   req.Destination,
		Origin:        req.Origin,
		TransportMode: req.TransportMode,
		HotelStyle:    req.HotelStyle,
		Cuisine:       req.Cuisine,
		Theme:         req.Theme,
		GroupType:     req.GroupType,
		GroupCount:    req.GroupCount,
		Budget:        req.Budget,
	}

	if req.StartDate != "" {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return prefs, errors.New("invalid start_date, expected YYYY-MM-DD")
		}
		prefs.StartDate = start
	}

	if req.EndDate != "" {
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return prefs, errors.New("invalid end_date, expected YYYY-MM-DD")
		}
		prefs.EndDate = end
	}

	return prefs, nil
}

// tripResponse converts a domain trip to its HTTP representation.
func tripResponse(trip *domain.Trip) TripResponse {
	return TripResponse{
		ID:               trip.ID,
		UserID:           trip.UserID,
		Destination:      trip.Preferences.Destination,
		Status:           string(trip.Status),
		Itinerary:        trip.Itinerary,
		GenerationSource: string(trip.GenerationSource),
		CreatedAt:        trip.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        trip.UpdatedAt.Format(time.RFC3339),
	}
}
