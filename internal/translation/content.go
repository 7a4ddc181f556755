// Package translation reads the translatable sections of a generated tour
// page and writes localized versions of them back into the page markup.
//
// Pages are treated as opaque text: sections are located with ordered lists
// of regular expressions, and a section that cannot be located is left alone.
package translation

import "strings"

// TitleNotFound is returned as the title when no title candidate matches.
const TitleNotFound = "Tour Title Not Found"

// SourceLanguage is the language generated pages are written in.
const SourceLanguage = "en"

// Field names one translatable section of a tour page.
type Field string

const (
	FieldTitle               Field = "title"
	FieldAboutTour           Field = "aboutTour"
	FieldHighlights          Field = "highlights"
	FieldIncluded            Field = "included"
	FieldNotIncluded         Field = "notIncluded"
	FieldNotSuitableFor      Field = "notSuitableFor"
	FieldDetailedDescription Field = "detailedDescription"
	FieldFAQ                 Field = "faq"
)

// Fields lists every field in rewrite order.
var Fields = []Field{
	FieldTitle,
	FieldAboutTour,
	FieldHighlights,
	FieldIncluded,
	FieldNotIncluded,
	FieldNotSuitableFor,
	FieldDetailedDescription,
	FieldFAQ,
}

// FAQEntry is a single question/answer pair.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Content holds the plain-text value of every field of a page.
//
// Extraction fills it from a page; as rewrite input each non-empty field is a
// replacement value and empty fields leave the page section untouched. List
// fields (highlights, included, notIncluded, notSuitableFor) hold one entry
// per line.
type Content struct {
	Title               string     `json:"title"`
	AboutTour           string     `json:"aboutTour"`
	Highlights          string     `json:"highlights"`
	Included            string     `json:"included"`
	NotIncluded         string     `json:"notIncluded"`
	NotSuitableFor      string     `json:"notSuitableFor"`
	DetailedDescription string     `json:"detailedDescription"`
	FAQ                 []FAQEntry `json:"faq"`
}

// Value returns the text of a scalar or list field. FieldFAQ has no text form
// and returns an empty string.
func (c Content) Value(field Field) string {
	switch field {
	case FieldTitle:
		return c.Title
	case FieldAboutTour:
		return c.AboutTour
	case FieldHighlights:
		return c.Highlights
	case FieldIncluded:
		return c.Included
	case FieldNotIncluded:
		return c.NotIncluded
	case FieldNotSuitableFor:
		return c.NotSuitableFor
	case FieldDetailedDescription:
		return c.DetailedDescription
	}
	return ""
}

// Set stores the text of a scalar or list field. FieldFAQ is ignored.
func (c *Content) Set(field Field, value string) {
	switch field {
	case FieldTitle:
		c.Title = value
	case FieldAboutTour:
		c.AboutTour = value
	case FieldHighlights:
		c.Highlights = value
	case FieldIncluded:
		c.Included = value
	case FieldNotIncluded:
		c.NotIncluded = value
	case FieldNotSuitableFor:
		c.NotSuitableFor = value
	case FieldDetailedDescription:
		c.DetailedDescription = value
	}
}

// Map applies fn to every text value and FAQ entry, returning the result.
func (c Content) Map(fn func(string) string) Content {
	out := Content{FAQ: make([]FAQEntry, 0, len(c.FAQ))}
	for _, field := range Fields {
		if field == FieldFAQ {
			continue
		}
		out.Set(field, fn(c.Value(field)))
	}
	for _, entry := range c.FAQ {
		out.FAQ = append(out.FAQ, FAQEntry{Question: fn(entry.Question), Answer: fn(entry.Answer)})
	}
	return out
}

// Lines splits a newline-joined list value into its trimmed, non-blank entries.
func Lines(value string) []string {
	raw := strings.Split(value, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
