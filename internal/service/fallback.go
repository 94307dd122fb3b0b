package service

import (
	"fmt"
	"strings"
	"time"

	"voyago/internal/domain"
)

// Nightly rates per hotel style tier.
const (
	nightlyUltraLuxury = 500.0
	nightlyLuxury      = 300.0
	nightlyComfortable = 150.0
	nightlyBudget      = 80.0
	nightlyExperience  = 200.0
)

// costBand is the per-day food and activity spend for a budget tier.
// The four slots sum to the tier's daily band exactly, keeping the
// totalCost invariant arithmetic.
type costBand struct {
	lunch     float64
	dinner    float64
	morning   float64
	afternoon float64
}

func (b costBand) perDay() float64 {
	return b.lunch + b.dinner + b.morning + b.afternoon
}

var (
	bandHigh   = costBand{lunch: 25, dinner: 45, morning: 50, afternoon: 50}
	bandMedium = costBand{lunch: 15, dinner: 30, morning: 30, afternoon: 35}
	bandLow    = costBand{lunch: 10, dinner: 15, morning: 15, afternoon: 20}
)

// One-way transport price per traveler by mode.
var transportFares = map[string]float64{
	"flight": 180,
	"train":  60,
	"car":    45,
	"bus":    30,
}

// buildLocalItinerary constructs a deterministic itinerary requiring no
// external service. Pure arithmetic over the preferences: the same
// input always yields the same output, and totalCost is the exact sum
// of accommodation, transport, and activity costs.
func buildLocalItinerary(prefs domain.TripPreferences) *domain.Itinerary {
	days := prefs.DurationDays()
	start := prefs.StartDate
	if start.IsZero() {
		start = time.Now()
	}

	nightly := nightlyRate(prefs.HotelStyle)
	band := budgetBand(prefs.Budget)

	itinerary := &domain.Itinerary{
		Days: make([]domain.DayPlan, 0, days),
	}

	for day := 1; day <= days; day++ {
		date := start.AddDate(0, 0, day-1)
		itinerary.Days = append(itinerary.Days, domain.DayPlan{
			Date:       date.Format("2006-01-02"),
			Activities: dayActivities(prefs, band, day, days),
		})
	}

	accommodation := domain.Accommodation{
		Name:          fmt.Sprintf("%s %s Stay", prefs.Destination, hotelLabel(prefs.HotelStyle)),
		Location:      domain.Location{Name: prefs.Destination},
		CheckIn:       start.Format("2006-01-02"),
		CheckOut:      start.AddDate(0, 0, days).Format("2006-01-02"),
		PricePerNight: nightly,
		TotalPrice:    nightly * float64(days),
		RoomType:      roomType(prefs),
		Amenities:     amenities(prefs.HotelStyle),
		Rating:        hotelRating(prefs.HotelStyle),
	}
	itinerary.Accommodations = []domain.Accommodation{accommodation}

	var transportCost float64
	if prefs.Origin != "" {
		mode := prefs.TransportMode
		if mode == "" {
			mode = "flight"
		}
		fare, ok := transportFares[strings.ToLower(mode)]
		if !ok {
			fare = transportFares["flight"]
		}
		legPrice := fare * float64(prefs.Travelers())

		itinerary.Transportation = []domain.TransportLeg{
			{
				Type:          strings.ToLower(mode),
				From:          prefs.Origin,
				To:            prefs.Destination,
				DepartureTime: start.Format("2006-01-02") + "T08:00",
				ArrivalTime:   start.Format("2006-01-02") + "T12:00",
				Provider:      "Local carrier",
				Price:         legPrice,
			},
			{
				Type:          strings.ToLower(mode),
				From:          prefs.Destination,
				To:            prefs.Origin,
				DepartureTime: start.AddDate(0, 0, days).Format("2006-01-02") + "T16:00",
				ArrivalTime:   start.AddDate(0, 0, days).Format("2006-01-02") + "T20:00",
				Provider:      "Local carrier",
				Price:         legPrice,
			},
		}
		transportCost = legPrice * 2
	}

	itinerary.TotalCost = accommodation.TotalPrice + transportCost + band.perDay()*float64(days)

	return itinerary
}

// dayActivities returns the four fixed time blocks for one day.
func dayActivities(prefs domain.TripPreferences, band costBand, day, totalDays int) []domain.Activity {
	dest := prefs.Destination
	loc := domain.Location{Name: dest}

	cuisine := prefs.Cuisine
	if cuisine == "" {
		cuisine = "local"
	}

	var morningTitle, afternoonTitle string
	switch {
	case day == 1:
		morningTitle = fmt.Sprintf("Arrival and orientation walk in %s", dest)
		afternoonTitle = "Settle in and explore the neighborhood around your stay"
	case day == totalDays:
		morningTitle = fmt.Sprintf("Final exploration of %s", dest)
		afternoonTitle = "Last souvenirs and departure preparation"
	case day == 2:
		morningTitle = fmt.Sprintf("Main attractions of %s", dest)
		afternoonTitle = fmt.Sprintf("Landmark tour of %s", dest)
	default:
		morningTitle = fmt.Sprintf("Discover %s, day %d", dest, day)
		afternoonTitle = themedAfternoon(prefs.Theme, dest)
	}

	return []domain.Activity{
		{
			Time:            "09:00",
			Title:           morningTitle,
			Description:     fmt.Sprintf("Morning program in %s.", dest),
			Location:        loc,
			DurationMinutes: 150,
			Type:            "sightseeing",
			Cost:            band.morning,
		},
		{
			Time:            "12:30",
			Title:           fmt.Sprintf("Lunch featuring %s cuisine", cuisine),
			Description:     fmt.Sprintf("Midday meal at a recommended %s spot.", cuisine),
			Location:        loc,
			DurationMinutes: 90,
			Type:            "food",
			Cost:            band.lunch,
		},
		{
			Time:            "14:30",
			Title:           afternoonTitle,
			Description:     fmt.Sprintf("Afternoon program in %s.", dest),
			Location:        loc,
			DurationMinutes: 180,
			Type:            "sightseeing",
			Cost:            band.afternoon,
		},
		{
			Time:            "19:00",
			Title:           fmt.Sprintf("Dinner featuring %s cuisine", cuisine),
			Description:     fmt.Sprintf("Evening meal featuring %s dishes.", cuisine),
			Location:        loc,
			DurationMinutes: 120,
			Type:            "food",
			Cost:            band.dinner,
		},
	}
}

func themedAfternoon(theme, dest string) string {
	if theme == "" {
		return fmt.Sprintf("Free exploration of %s", dest)
	}
	return fmt.Sprintf("%s experiences in %s", theme, dest)
}

func nightlyRate(hotelStyle string) float64 {
	switch strings.ToLower(hotelStyle) {
	case "ultraluxury", "ultra_luxury", "ultra-luxury":
		return nightlyUltraLuxury
	case "luxury":
		return nightlyLuxury
	case "budget":
		return nightlyBudget
	case "experience":
		return nightlyExperience
	default:
		return nightlyComfortable
	}
}

func hotelLabel(hotelStyle string) string {
	switch strings.ToLower(hotelStyle) {
	case "ultraluxury", "ultra_luxury", "ultra-luxury":
		return "Grand Palace"
	case "luxury":
		return "Luxury"
	case "budget":
		return "Budget"
	case "experience":
		return "Boutique"
	default:
		return "Comfort"
	}
}

func hotelRating(hotelStyle string) float64 {
	switch strings.ToLower(hotelStyle) {
	case "ultraluxury", "ultra_luxury", "ultra-luxury":
		return 5.0
	case "luxury":
		return 4.7
	case "budget":
		return 3.8
	case "experience":
		return 4.5
	default:
		return 4.2
	}
}

func amenities(hotelStyle string) []string {
	base := []string{"wifi", "breakfast"}
	switch strings.ToLower(hotelStyle) {
	case "ultraluxury", "ultra_luxury", "ultra-luxury":
		return append(base, "spa", "pool", "concierge", "butler service")
	case "luxury":
		return append(base, "spa", "pool", "concierge")
	case "experience":
		return append(base, "local host", "guided tours")
	case "budget":
		return base
	default:
		return append(base, "gym")
	}
}

func roomType(prefs domain.TripPreferences) string {
	if strings.EqualFold(prefs.GroupType, "family") || prefs.Travelers() > 2 {
		return "family room"
	}
	if prefs.Travelers() == 1 {
		return "single room"
	}
	return "double room"
}

func budgetBand(budget string) costBand {
	switch strings.ToLower(budget) {
	case "high", "luxury", "premium":
		return bandHigh
	case "low", "shoestring", "cheap":
		return bandLow
	default:
		return bandMedium
	}
}
