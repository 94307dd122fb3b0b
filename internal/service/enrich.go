package service

import (
	"fmt"
	"net/url"
	"strings"

	"voyago/internal/domain"
)

// Enricher attaches partner booking links to itinerary entities. Pure
// string templating over the itinerary: it touches no credit or
// persistence state and never fails the pipeline. Links are overwritten
// on every pass, so re-enriching is idempotent.
type Enricher struct {
	hotelAffiliateID    string
	flightAffiliateID   string
	activityAffiliateID string
}

// NewEnricher creates a new Enricher with the given affiliate IDs.
func NewEnricher(hotelAffiliateID, flightAffiliateID, activityAffiliateID string) *Enricher {
	return &Enricher{
		hotelAffiliateID:    hotelAffiliateID,
		flightAffiliateID:   flightAffiliateID,
		activityAffiliateID: activityAffiliateID,
	}
}

// Enrich attaches booking links for the given destination. The
// itinerary's core content (titles, costs, ordering) is never altered.
func (e *Enricher) Enrich(itinerary *domain.Itinerary, destination string) {
	if itinerary == nil {
		return
	}

	for i := range itinerary.Accommodations {
		itinerary.Accommodations[i].BookingLinks = e.hotelLinks(destination)
	}

	for i := range itinerary.Transportation {
		leg := &itinerary.Transportation[i]
		if !strings.EqualFold(leg.Type, "flight") {
			continue
		}
		from := airportCode(leg.From)
		to := airportCode(leg.To)
		if from == "" || to == "" {
			// Legs without recognizable codes are left unchanged.
			continue
		}
		leg.BookingLinks = e.flightLinks(from, to)
	}

	for i := range itinerary.Days {
		for j := range itinerary.Days[i].Activities {
			activity := &itinerary.Days[i].Activities[j]
			activity.BookingLinks = e.activityLinks(destination, activity.Location.Name)
		}
	}
}

func (e *Enricher) hotelLinks(destination string) []domain.BookingLink {
	q := url.QueryEscape(destination)
	return []domain.BookingLink{
		{
			Partner: "booking.com",
			URL:     fmt.Sprintf("https://www.booking.com/searchresults.html?ss=%s&aid=%s", q, e.hotelAffiliateID),
		},
		{
			Partner: "expedia",
			URL:     fmt.Sprintf("https://www.expedia.com/Hotel-Search?destination=%s&affcid=%s", q, e.hotelAffiliateID),
		},
	}
}

func (e *Enricher) flightLinks(from, to string) []domain.BookingLink {
	return []domain.BookingLink{
		{
			Partner: "skyscanner",
			URL: fmt.Sprintf("https://www.skyscanner.com/transport/flights/%s/%s/?associateid=%s",
				strings.ToLower(from), strings.ToLower(to), e.flightAffiliateID),
		},
		{
			Partner: "kayak",
			URL:     fmt.Sprintf("https://www.kayak.com/flights/%s-%s?a=%s", from, to, e.flightAffiliateID),
		},
	}
}

func (e *Enricher) activityLinks(destination, locationName string) []domain.BookingLink {
	q := url.QueryEscape(destination)
	if locationName != "" && !strings.EqualFold(locationName, destination) {
		q = url.QueryEscape(destination + " " + locationName)
	}
	return []domain.BookingLink{
		{
			Partner: "getyourguide",
			URL:     fmt.Sprintf("https://www.getyourguide.com/s/?q=%s&partner_id=%s", q, e.activityAffiliateID),
		},
		{
			Partner: "viator",
			URL:     fmt.Sprintf("https://www.viator.com/searchResults/all?text=%s&pid=%s", q, e.activityAffiliateID),
		},
	}
}

// airportCode extracts a recognizable IATA code: either the whole value
// is a three-letter code, or one appears in parentheses ("Paris (CDG)").
func airportCode(s string) string {
	s = strings.TrimSpace(s)

	if open := strings.LastIndex(s, "("); open >= 0 {
		if close := strings.Index(s[open:], ")"); close > 0 {
			if code := validCode(s[open+1 : open+close]); code != "" {
				return code
			}
		}
	}

	return validCode(s)
}

func validCode(s string) string {
	s = strings.TrimSpace(s)
	if len(s) != 3 {
		return ""
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return s
}
