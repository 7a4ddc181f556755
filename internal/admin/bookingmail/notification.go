package bookingmail

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
)

const notSpecified = "Not specified"

const (
	sectionHeadingStyle = "color: #0073e6; border-bottom: 2px solid #0073e6; padding-bottom: 5px;"
	panelStyle          = "background: #f8f9fa; padding: 15px; border-radius: 8px; margin: 10px 0;"
	tourPanelStyle      = "background: #f0f9ff; padding: 15px; border-radius: 8px; margin: 10px 0;"
	builderPanelStyle   = "background: #fff3cd; padding: 15px; border-radius: 8px; margin: 10px 0; border-left: 4px solid #ffc107;"
	listStyle           = "list-style: none; padding: 0; margin: 0;"
	noteStyle           = "color: #666; font-style: italic;"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// Subject returns the e-mail subject for the booking.
func Subject(b Booking) string {
	subject := fmt.Sprintf("New %s Tour Booking Request", kind(b.IsGroup()))
	if b.ID.Set() {
		subject += " #" + b.ID.String()
	}
	return subject
}

// Notification renders the staff notification mail. tour carries catalogue
// details of the booked tour and may be nil. now stamps the submission time.
// Every booking value is HTML-escaped.
func Notification(b Booking, tour *Tour, now time.Time) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := &mailWriter{w: w}
		group := b.IsGroup()
		tours := b.Tours()
		multi := len(tours) > 1

		m.raw(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; background: #ffffff;">`)
		m.raw(`<h2 style="color: #0073e6; text-align: center; padding: 20px; background: #f8f9fa; margin: 0;">`)
		m.text(fmt.Sprintf("New %s Tour Booking Request", kind(group)))
		m.raw("</h2>\n")

		writeTourSection(m, b, tour, tours, group)
		writeContactSection(m, b.Contact)
		writeTripSection(m, b)
		if b.TourBuilder != nil {
			writeBuilderSection(m, b.TourBuilder)
		}

		m.section("Booking Information", panelStyle)
		m.item("Booking ID", b.ID.String())
		m.item("Type", kind(group)+" Tour")
		m.item("Status", orDefault(b.Status, "pending"))
		if multi {
			m.item("Multi-Tour Booking", fmt.Sprintf("Yes (%d tours)", len(tours)))
		}
		if b.TourBuilder != nil {
			m.item("Custom Tour Builder", fmt.Sprintf("Yes (%s days planned)", b.TourBuilder.TotalDays))
		}
		m.endSection()

		m.raw(`<hr style="border: none; border-top: 2px solid #e5e7eb; margin: 20px 0;">`)
		m.raw(`<p class="submitted" style="color: #666; font-style: italic; text-align: center;">`)
		m.text("This booking was submitted on " + now.Format("January 2, 2006 at 15:04 MST"))
		m.raw("</p>\n")
		m.raw(`<p style="color: #666; text-align: center;">Please contact the customer as soon as possible to confirm their booking details.</p>`)
		m.raw("</div>\n")
		return m.err
	})
}

func writeTourSection(m *mailWriter, b Booking, tour *Tour, tours []TourRef, group bool) {
	switch {
	case len(tours) > 1:
		m.section(fmt.Sprintf("Selected Tours (%d tours)", len(tours)), tourPanelStyle)
		titles := make([]string, 0, len(tours))
		for i, t := range tours {
			title := orDefault(t.Title, "Tour Name Not Available")
			titles = append(titles, t.Title.String())
			m.raw(`<li class="tour" style="margin-bottom: 10px; padding: 8px; background: #f8f9fa; border-left: 4px solid #0073e6;">`)
			m.raw("<strong>Tour " + strconv.Itoa(i+1) + ":</strong> ")
			m.text(title)
			if t.ID.Set() {
				m.raw("<br><em>Tour ID: ")
				m.text(t.ID.String())
				m.raw("</em>")
			}
			if t.Accommodation.Set() {
				m.raw("<br><em>Accommodation: ")
				m.text(t.Accommodation.String())
				m.raw("</em>")
			}
			m.raw("</li>\n")
		}
		m.raw("</ul>\n")
		m.raw(`<div style="margin-top: 15px; padding: 10px; background: #e0f2fe; border-radius: 5px;">`)
		m.line("Tour Type", kind(group)+" Tours")
		m.line("Total Tours", strconv.Itoa(len(tours)))
		m.line("Tour Titles", strings.Join(titles, ", "))
		m.line("Note", fmt.Sprintf("Multiple %s tours selected - pricing will be calculated for the complete package", strings.ToLower(kind(group))))
		m.raw("</div>\n</div>\n")
	case len(tours) == 1:
		t := tours[0]
		m.section("Selected Tour", tourPanelStyle)
		m.item("Tour Title", t.Title.String())
		if t.ID.Set() {
			m.item("Tour ID", t.ID.String())
		}
		m.item("Tour Type", kind(group)+" Tour")
		if t.Accommodation.Set() {
			m.item("Accommodation", t.Accommodation.String())
		}
		if tour != nil && tour.Price.Set() {
			m.item("Tour Price", "€"+tour.Price.String()+" per person")
		}
		m.raw("</ul>\n")
		privateNote(m, group)
		m.raw("</div>\n")
	case tour != nil && tour.Title.Set():
		m.section("Selected Tour", tourPanelStyle)
		m.item("Tour Title", tour.Title.String())
		m.item("Tour Type", kind(group)+" Tour")
		if tour.Price.Set() {
			m.item("Tour Price", "€"+tour.Price.String()+" per person")
		}
		m.raw("</ul>\n")
		privateNote(m, group)
		m.raw("</div>\n")
	case b.TourID.Set():
		m.section("Selected Tour", tourPanelStyle)
		m.item("Tour ID", b.TourID.String())
		m.item("Tour Type", kind(group)+" Tour")
		m.raw("</ul>\n")
		m.note(kind(group) + " tour - pricing details will be confirmed")
		m.raw("</div>\n")
	default:
		m.section("Tour Request", tourPanelStyle)
		if group {
			m.item("Tour Type", "Group Tour")
		} else {
			m.item("Tour Type", "Private/Custom Tour")
		}
		m.raw("</ul>\n")
		m.note("Custom tour request - pricing will be provided based on requirements")
		m.raw("</div>\n")
	}
}

func privateNote(m *mailWriter, group bool) {
	if !group {
		m.note("Private tour - final pricing may be customized")
	}
}

func writeContactSection(m *mailWriter, c ContactDetails) {
	m.section("Contact Details", panelStyle)
	m.item("Name", orDefault(c.FullName, notSpecified))
	m.item("Email", orDefault(c.Email, notSpecified))
	m.item("WhatsApp", orDefault(c.WhatsApp, notSpecified))
	m.item("Language", orDefault(c.Language, notSpecified))
	if c.CouponCode.Set() {
		m.item("Coupon Code", c.CouponCode.String())
	}
	if c.Notes.Set() {
		m.item("Additional Notes", c.Notes.String())
	}
	m.endSection()
}

func writeTripSection(m *mailWriter, b Booking) {
	m.section("Trip Details", panelStyle)
	m.item("Start Date", formatDate(b.StartDate))
	m.item("End Date", formatDate(b.EndDate))
	m.item("Departure City", orDefault(b.DepartureCity, notSpecified))
	m.item("Adults", orDefault(b.Adults, notSpecified))
	m.item("Children", orDefault(b.Children, notSpecified))
	if b.Budget.Set() {
		m.item("Customer Budget", strings.TrimSpace(b.Budget.String()+" "+b.Currency.String()))
	}
	m.item("Accommodation", orDefault(b.Accommodation, notSpecified))
	m.endSection()
}

func writeBuilderSection(m *mailWriter, tb *TourBuilder) {
	m.raw(`<h3 style="` + sectionHeadingStyle + `">Custom Tour Builder Details</h3>` + "\n")
	m.raw(`<div style="` + builderPanelStyle + `">`)
	m.raw(`<p style="margin-top: 0; font-weight: bold; color: #856404;">`)
	m.text(fmt.Sprintf("Customer has designed a custom %s-day tour:", tb.TotalDays))
	m.raw("</p>\n")
	for _, day := range tb.Days {
		m.raw(`<div class="builder-day" style="background: #ffffff; padding: 12px; margin: 8px 0; border-radius: 6px; border: 1px solid #e5e7eb;">`)
		m.raw(`<h4 style="color: #0073e6; margin: 0 0 8px 0;">`)
		m.text(fmt.Sprintf("Day %s: %s", day.Number, orDefault(day.City, "City not specified")))
		m.raw("</h4>\n")
		m.raw(`<ul style="` + listStyle + ` font-size: 14px;">`)
		m.optional("Accommodation", day.Accommodation)
		m.optional("Accommodation Note", day.AccommodationNote)
		m.optional("Transportation", day.Transportation)
		m.optional("Transportation Note", day.TransportationNote)
		m.optional("Guide Language", day.GuideLanguage)
		m.optional("Meals", day.Meals)
		m.optional("Meals Note", day.MealsNote)
		if day.EntranceFees.truthy() {
			m.item("Entrance Fees", "Included")
		}
		if len(day.Activities) > 0 {
			m.item("Activities", strings.Join(day.Activities, ", "))
		}
		m.optional("Activity Note", day.ActivityNote)
		m.optional("City Note", day.CityNote)
		m.raw("</ul>\n</div>\n")
	}
	m.raw(`<p style="margin-bottom: 0; font-style: italic; color: #856404;">`)
	m.raw("This is a custom tour request. Please review all details carefully and provide pricing based on the customer&#39;s specific requirements.")
	m.raw("</p>\n</div>\n")
}

func kind(group bool) string {
	if group {
		return "Group"
	}
	return "Private"
}

func orDefault(t Text, fallback string) string {
	if t.Set() {
		return t.String()
	}
	return fallback
}

func formatDate(t Text) string {
	raw := strings.TrimSpace(t.String())
	if raw == "" {
		return notSpecified
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format("January 2, 2006")
		}
	}
	return raw
}

// mailWriter writes mail markup and keeps the first write error.
type mailWriter struct {
	w   io.Writer
	err error
}

func (m *mailWriter) raw(s string) {
	if m.err != nil {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

func (m *mailWriter) text(s string) {
	m.raw(templ.EscapeString(s))
}

func (m *mailWriter) section(title, style string) {
	m.raw(`<h3 style="` + sectionHeadingStyle + `">`)
	m.text(title)
	m.raw("</h3>\n")
	m.raw(`<div style="` + style + `">`)
	m.raw(`<ul style="` + listStyle + `">` + "\n")
}

func (m *mailWriter) endSection() {
	m.raw("</ul>\n</div>\n")
}

func (m *mailWriter) item(label, value string) {
	m.raw("<li><strong>")
	m.text(label)
	m.raw(":</strong> ")
	m.text(value)
	m.raw("</li>\n")
}

func (m *mailWriter) optional(label string, value Text) {
	if value.Set() {
		m.item(label, value.String())
	}
}

func (m *mailWriter) line(label, value string) {
	m.raw("<strong>")
	m.text(label)
	m.raw(":</strong> ")
	m.text(value)
	m.raw("<br>\n")
}

func (m *mailWriter) note(s string) {
	m.raw(`<p style="` + noteStyle + `">`)
	m.text("Note: " + s)
	m.raw("</p>\n")
}
