package translation

import (
	"fmt"
	"regexp"
	"strings"
)

// shape describes how a matched section body becomes a field value.
type shape int

const (
	shapeText shape = iota
	shapeList
	shapeListOrText
)

// rule is one candidate pattern for a section. Group 1 captures the body.
// Only rewritable rules are used for replacement: they match the heading
// element as a whole, so the match can be swapped without leaving a dangling
// opening tag behind.
type rule struct {
	re         *regexp.Regexp
	rewritable bool
}

// section is the ordered strategy list for one field.
type section struct {
	field   Field
	shape   shape
	bodyTag string
	rules   []rule
}

var (
	tagPattern      = regexp.MustCompile(`<[^>]*>`)
	listItemPattern = regexp.MustCompile(`(?is)<li\b[^>]*>(.*?)</li\s*>`)
)

// labelPattern quotes a heading label, tolerating flexible whitespace and
// the usual encodings of the apostrophe.
func labelPattern(label string) string {
	words := strings.Fields(label)
	for i, word := range words {
		parts := strings.Split(word, "'")
		for j, part := range parts {
			parts[j] = regexp.QuoteMeta(part)
		}
		words[i] = strings.Join(parts, `(?:'|&#39;|&#039;|&rsquo;|’)`)
	}
	return strings.Join(words, `\s+`)
}

func headed(tag, label, body string) rule {
	expr := fmt.Sprintf(`(?is)<%[1]s\b[^>]*>\s*%[2]s\s*</%[1]s\s*>\s*<%[3]s\b[^>]*>(.*?)</%[3]s\s*>`, tag, labelPattern(label), body)
	return rule{re: regexp.MustCompile(expr), rewritable: true}
}

func loose(label, body string) rule {
	expr := fmt.Sprintf(`(?is)%[1]s[^<]*</[^>]+>\s*<%[2]s\b[^>]*>(.*?)</%[2]s\s*>`, labelPattern(label), body)
	return rule{re: regexp.MustCompile(expr)}
}

func classed(marker string) rule {
	expr := fmt.Sprintf(`(?is)<div\b[^>]*class\s*=\s*"[^"]*%s[^"]*"[^>]*>(.*?)</div\s*>`, regexp.QuoteMeta(marker))
	return rule{re: regexp.MustCompile(expr)}
}

var titleRules = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<title\b[^>]*>(.*?)</title\s*>`),
	regexp.MustCompile(`(?is)<h1\b[^>]*>(.*?)</h1\s*>`),
	regexp.MustCompile(`(?is)class\s*=\s*"[^"]*\btour-title\b[^"]*"[^>]*>(.*?)<`),
}

// titleSlots are replaced independently by the rewriter: the document title
// and the page heading both carry the tour title.
var titleSlots = []struct {
	re  *regexp.Regexp
	tag string
}{
	{re: regexp.MustCompile(`(?is)<title\b[^>]*>.*?</title\s*>`), tag: "title"},
	{re: regexp.MustCompile(`(?is)<h1\b[^>]*>.*?</h1\s*>`), tag: "h1"},
}

var sections = []section{
	{
		field:   FieldAboutTour,
		shape:   shapeText,
		bodyTag: "p",
		rules: []rule{
			headed("h2", "About This Tour", "p"),
			headed("h3", "About This Tour", "p"),
			loose("About This Tour", "p"),
		},
	},
	{
		field:   FieldHighlights,
		shape:   shapeList,
		bodyTag: "ul",
		rules: []rule{
			headed("h2", "Tour Highlights", "ul"),
			headed("h3", "Highlights", "ul"),
			loose("Tour Highlights", "ul"),
		},
	},
	{
		field:   FieldIncluded,
		shape:   shapeList,
		bodyTag: "ul",
		rules: []rule{
			headed("h2", "What's Included", "ul"),
			headed("h3", "Included", "ul"),
			loose("What's Included", "ul"),
		},
	},
	{
		field:   FieldNotIncluded,
		shape:   shapeList,
		bodyTag: "ul",
		rules: []rule{
			headed("h2", "What's Not Included", "ul"),
			headed("h3", "Not Included", "ul"),
			loose("What's Not Included", "ul"),
		},
	},
	{
		field:   FieldNotSuitableFor,
		shape:   shapeListOrText,
		bodyTag: "ul",
		rules: []rule{
			headed("h2", "Not Suitable For", "ul"),
			headed("h3", "Not Suitable For", "ul"),
			loose("Not Suitable For", "ul"),
			classed("warning"),
		},
	},
	{
		field:   FieldDetailedDescription,
		shape:   shapeText,
		bodyTag: "div",
		rules: []rule{
			headed("h2", "Detailed Description", "div"),
			headed("h3", "Description", "p"),
			classed("description"),
		},
	},
}

// faqSection locates the FAQ heading; the section runs until the next
// heading of the same or a higher level.
type faqSection struct {
	heading *regexp.Regexp
	level   int
}

var faqSections = []faqSection{
	{heading: regexp.MustCompile(`(?is)<h2\b[^>]*>\s*FAQ\s*</h2\s*>`), level: 2},
	{heading: regexp.MustCompile(`(?is)<h3\b[^>]*>\s*` + labelPattern("Frequently Asked Questions") + `\s*</h3\s*>`), level: 3},
}

// faqPairs match a question wrapped in a subheading, bold or emphasis tag
// followed by its answer paragraph. Group 1 is the question, group 2 the
// answer.
var faqPairs = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<h3\b[^>]*>(.*?)</h3\s*>\s*<p\b[^>]*>(.*?)</p\s*>`),
	regexp.MustCompile(`(?is)<h4\b[^>]*>(.*?)</h4\s*>\s*<p\b[^>]*>(.*?)</p\s*>`),
	regexp.MustCompile(`(?is)<strong\b[^>]*>(.*?)</strong\s*>\s*<p\b[^>]*>(.*?)</p\s*>`),
	regexp.MustCompile(`(?is)<b\b[^>]*>(.*?)</b\s*>\s*<p\b[^>]*>(.*?)</p\s*>`),
	regexp.MustCompile(`(?is)<em\b[^>]*>(.*?)</em\s*>\s*<p\b[^>]*>(.*?)</p\s*>`),
}

// sectionTokens find headings at or above a level plus the opening and
// closing tags of the containers a section may sit in. Group 1 is the slash
// of a closing container tag, group 2 the container name.
var sectionTokens = func() map[int]*regexp.Regexp {
	out := make(map[int]*regexp.Regexp, 6)
	for level := 1; level <= 6; level++ {
		out[level] = regexp.MustCompile(fmt.Sprintf(`(?i)<h[1-%d][\s>/]|<(/?)(section|article|main|body|html)\b[^>]*>`, level))
	}
	return out
}()

// sectionEnd returns where a section starting at from ends: the next heading
// at or above level, or the close of a container opened before from. A
// heading found inside a container opened within the section ends it at
// that container's opening tag, so the span never holds half an element.
// Without a boundary the section runs to len(doc).
func sectionEnd(doc string, from, level int) int {
	tokens, ok := sectionTokens[level]
	if !ok {
		return len(doc)
	}
	var open []int
	for _, idx := range tokens.FindAllStringSubmatchIndex(doc[from:], -1) {
		at := from + idx[0]
		switch {
		case idx[4] < 0:
			if len(open) > 0 {
				return open[0]
			}
			return at
		case idx[3] > idx[2]:
			if len(open) == 0 {
				return at
			}
			open = open[:len(open)-1]
		default:
			open = append(open, at)
		}
	}
	return len(doc)
}

// StripTags removes every markup tag and trims the remaining text.
func StripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

func listItems(body string) []string {
	matches := listItemPattern.FindAllStringSubmatch(body, -1)
	items := make([]string, 0, len(matches))
	for _, m := range matches {
		if item := StripTags(m[1]); item != "" {
			items = append(items, item)
		}
	}
	return items
}
