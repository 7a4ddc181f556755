package bookingmail

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

var submittedAt = time.Date(2025, time.March, 4, 9, 30, 0, 0, time.UTC)

func decodeBooking(t *testing.T, payload string) Booking {
	t.Helper()
	var b Booking
	require.NoError(t, json.Unmarshal([]byte(payload), &b))
	return b
}

func render(t *testing.T, b Booking, tour *Tour) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Notification(b, tour, submittedAt).Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func items(doc *goquery.Document) map[string]string {
	out := make(map[string]string)
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		label := strings.TrimSuffix(li.Find("strong").First().Text(), ":")
		value := strings.TrimSpace(strings.TrimPrefix(li.Text(), li.Find("strong").First().Text()))
		if _, seen := out[label]; !seen {
			out[label] = value
		}
	})
	return out
}

func headings(doc *goquery.Document) []string {
	var out []string
	doc.Find("h3").Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out
}

func TestBookingDecodesFlexiblePayload(t *testing.T) {
	t.Parallel()

	b := decodeBooking(t, `{
		"id": 42,
		"type": "join",
		"adults": 2,
		"children": null,
		"budget": 1500.5,
		"contact_details": "{\"fullName\":\"Amal\",\"email\":\"amal@example.com\",\"whatsapp\":971500000000}",
		"tourBuilderData": {"totalDays": 2, "days": [{"number": 1, "city": "Dubai", "entranceFees": true}]}
	}`)

	require.Equal(t, Text("42"), b.ID)
	require.True(t, b.IsGroup())
	require.Equal(t, Text("2"), b.Adults)
	require.False(t, b.Children.Set())
	require.Equal(t, Text("1500.5"), b.Budget)
	require.Equal(t, Text("Amal"), b.Contact.FullName)
	require.Equal(t, Text("971500000000"), b.Contact.WhatsApp)
	require.NotNil(t, b.TourBuilder)
	require.Equal(t, Text("2"), b.TourBuilder.TotalDays)
	require.True(t, b.TourBuilder.Days[0].EntranceFees.truthy())
}

func TestBookingIgnoresUndecodableEmbeddedJSON(t *testing.T) {
	t.Parallel()

	b := decodeBooking(t, `{"id": "b1", "contact_details": "{not json", "tourBuilderData": "oops"}`)

	require.Equal(t, ContactDetails{}, b.Contact)
	require.Nil(t, b.TourBuilder)
}

func TestBookingTours(t *testing.T) {
	t.Parallel()

	fromDays := decodeBooking(t, `{"days": [
		{"tour": "Old Dubai", "tourId": 7},
		{"tour": ""},
		{"tour": "Desert Safari", "accommodation": "Camp"}
	]}`)
	require.Equal(t, []TourRef{
		{ID: "7", Title: "Old Dubai", Accommodation: "Standard"},
		{Title: "Desert Safari", Accommodation: "Camp"},
	}, fromDays.Tours())

	explicit := decodeBooking(t, `{"selectedTours": [{"id": 1, "title": "Abu Dhabi"}], "days": [{"tour": "Ignored"}]}`)
	require.Equal(t, []TourRef{{ID: "1", Title: "Abu Dhabi"}}, explicit.Tours())

	overridden := decodeBooking(t, `{"selectedTours": [{"title": "A"}], "tourSelectionData": {"selectedTours": [{"title": "B"}, {"title": "C"}]}}`)
	require.Len(t, overridden.Tours(), 2)
	require.Equal(t, Text("B"), overridden.Tours()[0].Title)
}

func TestNotificationMultiTour(t *testing.T) {
	t.Parallel()

	b := decodeBooking(t, `{
		"id": "bk-1", "type": "join", "status": "confirmed",
		"selectedTours": [
			{"id": 1, "title": "Dhow Cruise", "accommodation": "4*"},
			{"title": "Desert Safari"}
		],
		"contact_details": {"fullName": "Sam", "email": "sam@example.com", "couponCode": "SPRING"},
		"start_date": "2025-04-10", "end_date": "2025-04-12T08:00:00Z",
		"adults": 3, "budget": 900, "currency": "EUR"
	}`)
	doc := render(t, b, nil)

	require.Equal(t, "New Group Tour Booking Request", strings.TrimSpace(doc.Find("h2").Text()))
	require.Equal(t, []string{"Selected Tours (2 tours)", "Contact Details", "Trip Details", "Booking Information"}, headings(doc))
	require.Equal(t, 2, doc.Find("li.tour").Length())
	require.Contains(t, doc.Find("li.tour").First().Text(), "Tour ID: 1")
	require.Contains(t, doc.Text(), "Tour Titles: Dhow Cruise, Desert Safari")

	got := items(doc)
	require.Equal(t, "Sam", got["Name"])
	require.Equal(t, "SPRING", got["Coupon Code"])
	require.Equal(t, "Not specified", got["WhatsApp"])
	require.NotContains(t, got, "Additional Notes")
	require.Equal(t, "April 10, 2025", got["Start Date"])
	require.Equal(t, "April 12, 2025", got["End Date"])
	require.Equal(t, "900 EUR", got["Customer Budget"])
	require.Equal(t, "confirmed", got["Status"])
	require.Equal(t, "Yes (2 tours)", got["Multi-Tour Booking"])
	require.Equal(t, "This booking was submitted on March 4, 2025 at 09:30 UTC", doc.Find("p.submitted").Text())
}

func TestNotificationSingleTourWithPrice(t *testing.T) {
	t.Parallel()

	b := decodeBooking(t, `{"id": 5, "days": [{"tour": "Museum Pass", "tourId": "m-1"}]}`)
	doc := render(t, b, &Tour{Title: "Museum Pass", Price: "49"})

	require.Equal(t, "Selected Tour", headings(doc)[0])
	got := items(doc)
	require.Equal(t, "Museum Pass", got["Tour Title"])
	require.Equal(t, "m-1", got["Tour ID"])
	require.Equal(t, "Private Tour", got["Tour Type"])
	require.Equal(t, "€49 per person", got["Tour Price"])
	require.Equal(t, "pending", got["Status"])
	require.NotContains(t, got, "Customer Budget")
	require.Contains(t, doc.Text(), "Note: Private tour - final pricing may be customized")
}

func TestNotificationFallbacks(t *testing.T) {
	t.Parallel()

	t.Run("catalogue tour", func(t *testing.T) {
		doc := render(t, decodeBooking(t, `{"id": 1, "type": "join"}`), &Tour{Title: "City Tour", Price: "30"})
		got := items(doc)
		require.Equal(t, "City Tour", got["Tour Title"])
		require.Equal(t, "Group Tour", got["Tour Type"])
		require.NotContains(t, doc.Text(), "final pricing may be customized")
	})

	t.Run("tour id only", func(t *testing.T) {
		doc := render(t, decodeBooking(t, `{"id": 1, "tour_id": 99}`), nil)
		require.Equal(t, "99", items(doc)["Tour ID"])
		require.Contains(t, doc.Text(), "Note: Private tour - pricing details will be confirmed")
	})

	t.Run("custom request", func(t *testing.T) {
		doc := render(t, decodeBooking(t, `{"id": 1}`), nil)
		require.Equal(t, "Tour Request", headings(doc)[0])
		require.Equal(t, "Private/Custom Tour", items(doc)["Tour Type"])
		require.Equal(t, "Not specified", items(doc)["Start Date"])
	})
}

func TestNotificationTourBuilder(t *testing.T) {
	t.Parallel()

	b := decodeBooking(t, `{"id": 8, "tourBuilderData": "{\"totalDays\":2,\"days\":[{\"number\":1,\"city\":\"Dubai\",\"activities\":[\"Burj Khalifa\",\"Souk\"],\"entranceFees\":true},{\"number\":2}]}"}`)
	doc := render(t, b, nil)

	require.Contains(t, headings(doc), "Custom Tour Builder Details")
	days := doc.Find("div.builder-day")
	require.Equal(t, 2, days.Length())
	require.Equal(t, "Day 1: Dubai", days.First().Find("h4").Text())
	require.Equal(t, "Day 2: City not specified", days.Last().Find("h4").Text())
	require.Contains(t, days.First().Text(), "Activities: Burj Khalifa, Souk")
	require.Contains(t, days.First().Text(), "Entrance Fees: Included")
	require.Equal(t, "Yes (2 days planned)", items(doc)["Custom Tour Builder"])
}

func TestNotificationEscapesValues(t *testing.T) {
	t.Parallel()

	b := decodeBooking(t, `{"id": "<b>x</b>", "contact_details": {"fullName": "<script>alert(1)</script>", "notes": "Tom & Jerry"}}`)

	var buf bytes.Buffer
	require.NoError(t, Notification(b, nil, submittedAt).Render(context.Background(), &buf))
	html := buf.String()

	require.NotContains(t, html, "<script>")
	require.NotContains(t, html, "<b>x</b>")
	require.Contains(t, html, "&lt;script&gt;alert(1)&lt;/script&gt;")
	require.Contains(t, html, "Tom &amp; Jerry")
}

func TestSubject(t *testing.T) {
	t.Parallel()

	require.Equal(t, "New Group Tour Booking Request #12", Subject(Booking{ID: "12", Type: "join"}))
	require.Equal(t, "New Private Tour Booking Request", Subject(Booking{}))
}
