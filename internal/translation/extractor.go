package translation

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Option customises an Extractor or Rewriter.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger routes diagnostics to the provided logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Extractor reads the translatable sections of a page.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor constructs an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	o := buildOptions(opts)
	return &Extractor{logger: o.logger}
}

// Extract returns the plain-text content of every field in doc. Each field is
// independent: a field whose section cannot be found, or whose extraction
// fails, keeps its default (TitleNotFound for the title, empty otherwise).
func (e *Extractor) Extract(doc string) Content {
	content := Content{Title: TitleNotFound, FAQ: []FAQEntry{}}

	e.guard(FieldTitle, func() {
		if title, ok := extractTitle(doc); ok {
			content.Title = title
		}
	})
	for _, sec := range sections {
		e.guard(sec.field, func() {
			if value, ok := extractSection(doc, sec); ok {
				content.Set(sec.field, value)
			}
		})
	}
	e.guard(FieldFAQ, func() {
		content.FAQ = extractFAQ(doc)
	})

	return content
}

// Extract reads doc with a default Extractor.
func Extract(doc string) Content {
	return NewExtractor().Extract(doc)
}

func (e *Extractor) guard(field Field, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Warn("field extraction failed; using default",
				zap.String("field", string(field)),
				zap.Any("panic", rec),
			)
		}
	}()
	fn()
}

func extractTitle(doc string) (string, bool) {
	for _, re := range titleRules {
		m := re.FindStringSubmatch(doc)
		if m == nil {
			continue
		}
		if title := StripTags(m[1]); title != "" {
			return title, true
		}
	}
	return "", false
}

func extractSection(doc string, sec section) (string, bool) {
	for _, r := range sec.rules {
		m := r.re.FindStringSubmatch(doc)
		if m == nil {
			continue
		}
		if value, ok := sectionValue(m[1], sec.shape); ok {
			return value, true
		}
	}
	return "", false
}

func sectionValue(body string, s shape) (string, bool) {
	switch s {
	case shapeList, shapeListOrText:
		if items := listItems(body); len(items) > 0 {
			return strings.Join(items, "\n"), true
		}
		if s == shapeList {
			return "", false
		}
	}
	text := StripTags(body)
	return text, text != ""
}

// locateFAQ returns the span of the first FAQ section found in doc, from the
// start of its heading to the section end reported by sectionEnd, and the
// offset where the section body begins.
func locateFAQ(doc string) (start, bodyStart, end int, ok bool) {
	for _, sec := range faqSections {
		loc := sec.heading.FindStringIndex(doc)
		if loc == nil {
			continue
		}
		return loc[0], loc[1], sectionEnd(doc, loc[1], sec.level), true
	}
	return 0, 0, 0, false
}

type faqMatch struct {
	start, end int
	entry      FAQEntry
}

func extractFAQ(doc string) []FAQEntry {
	entries := []FAQEntry{}
	_, bodyStart, end, ok := locateFAQ(doc)
	if !ok {
		return entries
	}
	body := doc[bodyStart:end]

	var matches []faqMatch
	for _, re := range faqPairs {
		for _, idx := range re.FindAllStringSubmatchIndex(body, -1) {
			entry := FAQEntry{
				Question: StripTags(body[idx[2]:idx[3]]),
				Answer:   StripTags(body[idx[4]:idx[5]]),
			}
			if entry.Question == "" || entry.Answer == "" {
				continue
			}
			matches = append(matches, faqMatch{start: idx[0], end: idx[1], entry: entry})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	last := -1
	for _, m := range matches {
		if m.start < last {
			continue
		}
		entries = append(entries, m.entry)
		last = m.end
	}
	return entries
}
