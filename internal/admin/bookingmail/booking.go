// Package bookingmail renders the staff notification e-mail sent when a
// customer submits a tour booking request.
package bookingmail

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Text is a scalar decoded from a JSON string, number or boolean. Null and
// missing values decode to "".
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
		return nil
	}
	if data[0] == '{' || data[0] == '[' {
		*t = ""
		return nil
	}
	*t = Text(data)
	return nil
}

func (t Text) String() string { return string(t) }

// Set reports whether the value carries something other than blanks.
func (t Text) Set() bool { return strings.TrimSpace(string(t)) != "" }

func (t Text) truthy() bool {
	switch strings.ToLower(strings.TrimSpace(string(t))) {
	case "", "false", "0", "no":
		return false
	}
	return true
}

// Booking is the booking request payload as stored by the booking form.
type Booking struct {
	ID            Text           `json:"id"`
	Type          Text           `json:"type"`
	Status        Text           `json:"status"`
	TourID        Text           `json:"tour_id"`
	StartDate     Text           `json:"start_date"`
	EndDate       Text           `json:"end_date"`
	DepartureCity Text           `json:"departure_city"`
	Adults        Text           `json:"adults"`
	Children      Text           `json:"children"`
	Budget        Text           `json:"budget"`
	Currency      Text           `json:"currency"`
	Accommodation Text           `json:"accommodation"`
	Contact       ContactDetails `json:"-"`
	SelectedTours []TourRef      `json:"selectedTours"`
	Days          []BookingDay   `json:"days"`
	TourSelection *TourSelection `json:"tourSelectionData"`
	TourBuilder   *TourBuilder   `json:"-"`
}

// ContactDetails identifies the customer.
type ContactDetails struct {
	FullName   Text `json:"fullName"`
	Email      Text `json:"email"`
	WhatsApp   Text `json:"whatsapp"`
	Language   Text `json:"language"`
	CouponCode Text `json:"couponCode"`
	Notes      Text `json:"notes"`
}

// TourRef is one tour chosen by the customer.
type TourRef struct {
	ID            Text `json:"id"`
	Title         Text `json:"title"`
	Accommodation Text `json:"accommodation"`
}

// BookingDay is one day of the itinerary picked on the booking form.
type BookingDay struct {
	Tour          Text `json:"tour"`
	TourID        Text `json:"tourId"`
	Accommodation Text `json:"accommodation"`
}

// TourSelection carries the tour picker state.
type TourSelection struct {
	SelectedTours []TourRef `json:"selectedTours"`
}

// TourBuilder is a custom day-by-day plan designed by the customer.
type TourBuilder struct {
	TotalDays Text         `json:"totalDays"`
	Days      []BuilderDay `json:"days"`
}

// BuilderDay is one day of a custom plan.
type BuilderDay struct {
	Number             Text     `json:"number"`
	City               Text     `json:"city"`
	CityNote           Text     `json:"cityNote"`
	Accommodation      Text     `json:"accommodation"`
	AccommodationNote  Text     `json:"accommodationNote"`
	Transportation     Text     `json:"transportation"`
	TransportationNote Text     `json:"transportationNote"`
	GuideLanguage      Text     `json:"guideLanguage"`
	Meals              Text     `json:"meals"`
	MealsNote          Text     `json:"mealsNote"`
	EntranceFees       Text     `json:"entranceFees"`
	Activities         []string `json:"activities"`
	ActivityNote       Text     `json:"activityNote"`
}

// Tour holds catalogue details of the booked tour, when known.
type Tour struct {
	Title Text `json:"title"`
	Price Text `json:"price"`
}

// UnmarshalJSON accepts contact details and tour builder data either as
// objects or as JSON-encoded strings. Undecodable values are ignored.
func (b *Booking) UnmarshalJSON(data []byte) error {
	type plain Booking
	var wire struct {
		plain
		Contact     json.RawMessage `json:"contact_details"`
		TourBuilder json.RawMessage `json:"tourBuilderData"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*b = Booking(wire.plain)

	var contact ContactDetails
	if decodeEmbedded(wire.Contact, &contact) {
		b.Contact = contact
	}
	var builder TourBuilder
	if decodeEmbedded(wire.TourBuilder, &builder) {
		b.TourBuilder = &builder
	}
	return nil
}

// decodeEmbedded decodes raw as an object, or as a string holding an object.
func decodeEmbedded(raw json.RawMessage, v any) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return false
		}
		raw = []byte(strings.TrimSpace(inner))
		if len(raw) == 0 {
			return false
		}
	}
	if raw[0] != '{' {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// IsGroup reports whether the booking joins a scheduled group tour.
func (b Booking) IsGroup() bool {
	return strings.EqualFold(string(b.Type), "join")
}

// Tours resolves the tours of the booking: the explicit selection, else the
// non-empty tours of the itinerary days. A tour picker selection, when
// present, overrides both.
func (b Booking) Tours() []TourRef {
	var tours []TourRef
	switch {
	case b.SelectedTours != nil:
		tours = b.SelectedTours
	case len(b.Days) > 0:
		for _, day := range b.Days {
			if !day.Tour.Set() {
				continue
			}
			acc := day.Accommodation
			if !acc.Set() {
				acc = "Standard"
			}
			tours = append(tours, TourRef{ID: day.TourID, Title: day.Tour, Accommodation: acc})
		}
	}
	if b.TourSelection != nil && b.TourSelection.SelectedTours != nil {
		tours = b.TourSelection.SelectedTours
	}
	return tours
}
