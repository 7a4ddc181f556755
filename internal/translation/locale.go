package translation

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFiles embed.FS

// ErrUnsupportedLanguage is returned when no locale file exists for a language.
var ErrUnsupportedLanguage = errors.New("translation: unsupported language")

// Phrase is one exact source-language phrase and its translation.
type Phrase struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// Locale carries everything the rewriter needs to produce pages in one
// target language: section headings and the two phrase dictionaries.
type Locale struct {
	Code         string
	Headings     map[Field]string
	CommonTitles []Phrase
	Navigation   []Phrase

	tag         language.Tag
	commonRules []replacement
	navRules    []replacement
	langAttr    []replacement
	hrefPrefix  replacement
}

type localeFile struct {
	Code         string            `yaml:"code"`
	Headings     map[string]string `yaml:"headings"`
	CommonTitles []Phrase          `yaml:"commonTitles"`
	Navigation   []Phrase          `yaml:"navigation"`
}

type replacement struct {
	re   *regexp.Regexp
	with string
}

func (r replacement) apply(doc string) string {
	return r.re.ReplaceAllString(doc, r.with)
}

// LoadLocale loads the embedded locale for code. Region and script subtags
// are ignored, so "fr-CA" loads the French locale.
func LoadLocale(code string) (*Locale, error) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnsupportedLanguage, code, err)
	}
	base, _ := tag.Base()

	raw, err := localeFiles.ReadFile(path.Join("locales", base.String()+".yaml"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	if err != nil {
		return nil, fmt.Errorf("translation: read locale %s: %w", base, err)
	}

	var file localeFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("translation: parse locale %s: %w", base, err)
	}
	if file.Code != base.String() {
		return nil, fmt.Errorf("translation: locale file %s declares code %q", base, file.Code)
	}

	return newLocale(language.Make(base.String()), file)
}

// MustLoadLocale is like LoadLocale but panics on error.
func MustLoadLocale(code string) *Locale {
	locale, err := LoadLocale(code)
	if err != nil {
		panic(err)
	}
	return locale
}

// SupportedLanguages lists the codes of all embedded locales.
func SupportedLanguages() []string {
	entries, err := localeFiles.ReadDir("locales")
	if err != nil {
		return nil
	}
	codes := make([]string, 0, len(entries))
	for _, entry := range entries {
		if name, ok := strings.CutSuffix(entry.Name(), ".yaml"); ok {
			codes = append(codes, name)
		}
	}
	sort.Strings(codes)
	return codes
}

func newLocale(tag language.Tag, file localeFile) (*Locale, error) {
	l := &Locale{
		Code:         file.Code,
		Headings:     make(map[Field]string, len(file.Headings)),
		CommonTitles: file.CommonTitles,
		Navigation:   file.Navigation,
		tag:          tag,
	}
	known := make(map[Field]struct{}, len(Fields))
	for _, f := range Fields {
		known[f] = struct{}{}
	}
	for key, heading := range file.Headings {
		field := Field(key)
		if _, ok := known[field]; !ok || field == FieldTitle {
			return nil, fmt.Errorf("translation: locale %s: unknown heading field %q", file.Code, key)
		}
		l.Headings[field] = heading
	}
	for _, f := range Fields {
		if f == FieldTitle {
			continue
		}
		if strings.TrimSpace(l.Headings[f]) == "" {
			return nil, fmt.Errorf("translation: locale %s: missing heading for %s", file.Code, f)
		}
	}

	for _, p := range file.CommonTitles {
		if p.Source == "" || p.Target == "" {
			return nil, fmt.Errorf("translation: locale %s: incomplete common title %+v", file.Code, p)
		}
		phrase := labelPattern(p.Source)
		target := literal(p.Target)
		l.commonRules = append(l.commonRules,
			replacement{re: regexp.MustCompile(`(?i)<h([1-6])\b[^>]*>` + phrase + `</h[1-6]\s*>`), with: "<h${1}>" + target + "</h${1}>"},
			replacement{re: regexp.MustCompile(`(?i)<button\b[^>]*>` + phrase + `</button\s*>`), with: "<button>" + target + "</button>"},
			replacement{re: regexp.MustCompile(`(?i)<a\b[^>]*>` + phrase + `</a\s*>`), with: "<a>" + target + "</a>"},
		)
	}
	for _, p := range file.Navigation {
		if p.Source == "" || p.Target == "" {
			return nil, fmt.Errorf("translation: locale %s: incomplete navigation entry %+v", file.Code, p)
		}
		phrase := labelPattern(p.Source)
		target := literal(p.Target)
		l.navRules = append(l.navRules,
			replacement{re: regexp.MustCompile(`(?i)<li\b[^>]*>\s*<a\b[^>]*>` + phrase + `</a\s*>\s*</li\s*>`), with: "<li><a>" + target + "</a></li>"},
			replacement{re: regexp.MustCompile(`(?i)<a\b[^>]*>` + phrase + `</a\s*>`), with: "<a>" + target + "</a>"},
		)
	}

	code := regexp.QuoteMeta(file.Code)
	source := regexp.QuoteMeta(SourceLanguage)
	l.langAttr = []replacement{
		{re: regexp.MustCompile(`(?i)\blang\s*=\s*"` + source + `(?:-[a-z0-9]+)*"`), with: `lang="` + literal(file.Code) + `"`},
		{re: regexp.MustCompile(`(?i)\blang\s*=\s*'` + source + `(?:-[a-z0-9]+)*'`), with: `lang='` + literal(file.Code) + `'`},
	}
	l.hrefPrefix = replacement{
		re:   regexp.MustCompile(`(?i)(\bhref\s*=\s*["'])(?:/` + code + `)+/`),
		with: "${1}/",
	}
	return l, nil
}

// literal escapes text for use as a regexp replacement template.
func literal(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

// Tag returns the language tag of the locale.
func (l *Locale) Tag() language.Tag { return l.tag }

// DisplayName returns the English name of the locale language, e.g. "French".
func (l *Locale) DisplayName() string {
	if name := display.Languages(language.English).Name(l.tag); name != "" {
		return name
	}
	return strings.ToUpper(l.Code)
}

// Heading returns the section heading written for field.
func (l *Locale) Heading(field Field) string {
	return l.Headings[field]
}

// SetLanguageAttributes rewrites lang attributes naming the source language
// to the locale code.
func (l *Locale) SetLanguageAttributes(doc string) string {
	for _, r := range l.langAttr {
		doc = r.apply(doc)
	}
	return doc
}

// TranslateCommonTitles replaces known phrases that form the entire text of a
// heading, button or link. The matched element is reduced to a bare tag.
func (l *Locale) TranslateCommonTitles(doc string) string {
	for _, r := range l.commonRules {
		doc = r.apply(doc)
	}
	return doc
}

// TranslateNavigation replaces known navigation labels inside links and
// list-wrapped links. The matched elements are reduced to bare tags.
func (l *Locale) TranslateNavigation(doc string) string {
	for _, r := range l.navRules {
		doc = r.apply(doc)
	}
	return doc
}

// StripLanguagePrefix removes the locale path prefix (e.g. "/fr/") from href
// values, however many times it is repeated. Applying it twice is the same as
// applying it once.
func (l *Locale) StripLanguagePrefix(doc string) string {
	return l.hrefPrefix.apply(doc)
}
