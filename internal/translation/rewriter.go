package translation

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrRewrite wraps any failure raised while rewriting a page.
var ErrRewrite = errors.New("translation: rewrite failed")

// Result is the outcome of a rewrite.
type Result struct {
	// Document is the rewritten page.
	Document string
	// Applied lists the fields whose section was replaced.
	Applied []Field
	// Skipped lists fields that carried a value but had no matching section.
	Skipped []Field
}

// Rewriter replaces page sections with translated content.
type Rewriter struct {
	locale *Locale
	logger *zap.Logger
}

// NewRewriter constructs a Rewriter producing pages for locale.
func NewRewriter(locale *Locale, opts ...Option) *Rewriter {
	if locale == nil {
		panic("translation: locale is required")
	}
	o := buildOptions(opts)
	return &Rewriter{locale: locale, logger: o.logger}
}

// Locale returns the target locale.
func (r *Rewriter) Locale() *Locale { return r.locale }

// Rewrite replaces every section of doc for which req carries a value, in
// field order, each replacement operating on the output of the previous one.
// Sections that cannot be found are left as they are; nothing is ever
// inserted. The language passes (lang attributes, common titles, navigation,
// href prefixes) run afterwards over the whole document.
func (r *Rewriter) Rewrite(doc string, req Content) (res Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Result{}
			err = fmt.Errorf("%w: %v", ErrRewrite, rec)
		}
	}()

	out := doc
	record := func(field Field, applied bool) {
		if applied {
			res.Applied = append(res.Applied, field)
		} else {
			res.Skipped = append(res.Skipped, field)
		}
	}

	for _, field := range Fields {
		switch field {
		case FieldTitle:
			title := strings.TrimSpace(req.Title)
			if title == "" {
				continue
			}
			var applied bool
			out, applied = replaceTitle(out, title)
			record(field, applied)
		case FieldFAQ:
			entries := presentEntries(req.FAQ)
			if len(entries) == 0 {
				continue
			}
			var applied bool
			out, applied = replaceFAQ(out, r.locale.Heading(FieldFAQ), entries)
			record(field, applied)
		default:
			sec, ok := sectionFor(field)
			if !ok {
				continue
			}
			body, present := renderBody(sec, req.Value(field))
			if !present {
				continue
			}
			replacementHTML := "<h2>" + r.locale.Heading(field) + "</h2>\n" + body
			var applied bool
			out, applied = replaceSection(out, sec, replacementHTML)
			record(field, applied)
		}
	}

	out = r.locale.SetLanguageAttributes(out)
	out = r.locale.TranslateCommonTitles(out)
	out = r.locale.TranslateNavigation(out)
	out = r.locale.StripLanguagePrefix(out)

	r.logger.Debug("page rewritten",
		zap.String("lang", r.locale.Code),
		zap.Strings("applied", fieldNames(res.Applied)),
		zap.Strings("skipped", fieldNames(res.Skipped)),
	)

	res.Document = out
	return res, nil
}

func sectionFor(field Field) (section, bool) {
	for _, sec := range sections {
		if sec.field == field {
			return sec, true
		}
	}
	return section{}, false
}

// renderBody wraps value in the section body markup. List values with no
// non-blank line count as absent.
func renderBody(sec section, value string) (string, bool) {
	if sec.shape == shapeText {
		value = strings.TrimSpace(value)
		if value == "" {
			return "", false
		}
		return "<" + sec.bodyTag + ">" + value + "</" + sec.bodyTag + ">", true
	}

	lines := Lines(value)
	if len(lines) == 0 {
		return "", false
	}
	var b strings.Builder
	b.WriteString("<ul>\n")
	for _, line := range lines {
		b.WriteString("<li>")
		b.WriteString(line)
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>")
	return b.String(), true
}

// splice replaces doc[start:end] with text. Replacement text is inserted
// verbatim.
func splice(doc string, start, end int, text string) string {
	return doc[:start] + text + doc[end:]
}

func replaceSection(doc string, sec section, html string) (string, bool) {
	for _, r := range sec.rules {
		if !r.rewritable {
			continue
		}
		loc := r.re.FindStringIndex(doc)
		if loc == nil {
			continue
		}
		return splice(doc, loc[0], loc[1], html), true
	}
	return doc, false
}

func replaceTitle(doc, title string) (string, bool) {
	var applied bool
	for _, slot := range titleSlots {
		loc := slot.re.FindStringIndex(doc)
		if loc == nil {
			continue
		}
		doc = splice(doc, loc[0], loc[1], "<"+slot.tag+">"+title+"</"+slot.tag+">")
		applied = true
	}
	return doc, applied
}

func replaceFAQ(doc, heading string, entries []FAQEntry) (string, bool) {
	start, _, end, ok := locateFAQ(doc)
	if !ok {
		return doc, false
	}
	var b strings.Builder
	b.WriteString("<h2>")
	b.WriteString(heading)
	b.WriteString("</h2>\n")
	for _, entry := range entries {
		b.WriteString("<h3>")
		b.WriteString(entry.Question)
		b.WriteString("</h3>\n<p>")
		b.WriteString(entry.Answer)
		b.WriteString("</p>\n")
	}
	return splice(doc, start, end, b.String()), true
}

func presentEntries(entries []FAQEntry) []FAQEntry {
	out := make([]FAQEntry, 0, len(entries))
	for _, entry := range entries {
		q := strings.TrimSpace(entry.Question)
		a := strings.TrimSpace(entry.Answer)
		if q == "" && a == "" {
			continue
		}
		out = append(out, FAQEntry{Question: q, Answer: a})
	}
	return out
}

func fieldNames(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}
