package testutil

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

// ParseHTML parses a rendered page or e-mail body for assertions.
func ParseHTML(t testing.TB, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	require.NoError(t, err, "parse html")
	return doc
}

// ReadPage loads a page written by the page store and parses it.
func ReadPage(t testing.TB, path string) *goquery.Document {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err, "read page %s", path)
	return ParseHTML(t, data)
}

// SectionBody returns the element directly after the first heading of tag
// whose trimmed text equals heading.
func SectionBody(doc *goquery.Document, tag, heading string) *goquery.Selection {
	return doc.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == heading
	}).First().Next()
}
