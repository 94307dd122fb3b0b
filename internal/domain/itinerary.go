package domain

// BookingLink is a partner booking URL attached by enrichment.
type BookingLink struct {
	Partner string `json:"partner"`
	URL     string `json:"url"`
}

// Location is a named place inside an itinerary.
type Location struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// Activity is a single time-blocked entry within a day plan.
type Activity struct {
	Time            string        `json:"time"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	Location        Location      `json:"location"`
	DurationMinutes int           `json:"durationMinutes"`
	Type            string        `json:"type"`
	Cost            float64       `json:"cost"`
	BookingLinks    []BookingLink `json:"bookingLinks,omitempty"`
}

// DayPlan holds the ordered activities for one day of the trip.
type DayPlan struct {
	Date       string     `json:"date"`
	Activities []Activity `json:"activities"`
}

// Accommodation is a lodging entry. TotalPrice is always
// PricePerNight multiplied by the number of nights.
type Accommodation struct {
	Name          string        `json:"name"`
	Location      Location      `json:"location"`
	CheckIn       string        `json:"checkIn"`
	CheckOut      string        `json:"checkOut"`
	PricePerNight float64       `json:"pricePerNight"`
	TotalPrice    float64       `json:"totalPrice"`
	RoomType      string        `json:"roomType,omitempty"`
	Amenities     []string      `json:"amenities,omitempty"`
	Rating        float64       `json:"rating,omitempty"`
	BookingLinks  []BookingLink `json:"bookingLinks,omitempty"`
}

// TransportLeg is a single transport segment between two places.
type TransportLeg struct {
	Type          string        `json:"type"`
	From          string        `json:"from"`
	To            string        `json:"to"`
	DepartureTime string        `json:"departureTime,omitempty"`
	ArrivalTime   string        `json:"arrivalTime,omitempty"`
	Provider      string        `json:"provider,omitempty"`
	Price         float64       `json:"price"`
	BookingLinks  []BookingLink `json:"bookingLinks,omitempty"`
}

// Itinerary is the structured generation output. The JSON field names
// match the shape requested from the generation provider, so a provider
// response unmarshals directly into this type.
type Itinerary struct {
	Days           []DayPlan       `json:"itinerary"`
	Accommodations []Accommodation `json:"accommodations"`
	Transportation []TransportLeg  `json:"transportation"`
	TotalCost      float64         `json:"totalCost"`
}
