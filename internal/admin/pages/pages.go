package pages

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"finitefield.org/tours-admin/internal/platform/requestctx"
	"finitefield.org/tours-admin/internal/platform/storage"
	"finitefield.org/tours-admin/internal/translation"
)

const (
	tracerName       = "finitefield.org/tours-admin/internal/admin/pages"
	defaultExtension = ".php"
)

var (
	errStoreRequired  = errors.New("pages: store is required")
	errLocaleRequired = errors.New("pages: locale is required")

	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9\-_.]`)
)

// Deps wires the collaborators of the page service.
type Deps struct {
	Store  storage.Store
	Locale *translation.Locale
	// Extension filters listed documents and is appended to output names.
	Extension string
	// Sanitize runs translated values through a user-content HTML policy
	// before they are written into the page.
	Sanitize bool
	Logger   *zap.Logger
}

type service struct {
	store     storage.Store
	locale    *translation.Locale
	extractor *translation.Extractor
	rewriter  *translation.Rewriter
	policy    *bluemonday.Policy
	extension string
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewService constructs the page service.
func NewService(deps Deps) (Service, error) {
	if deps.Store == nil {
		return nil, errStoreRequired
	}
	if deps.Locale == nil {
		return nil, errLocaleRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ext := strings.TrimSpace(deps.Extension)
	if ext == "" {
		ext = defaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	s := &service{
		store:     deps.Store,
		locale:    deps.Locale,
		extractor: translation.NewExtractor(translation.WithLogger(logger)),
		rewriter:  translation.NewRewriter(deps.Locale, translation.WithLogger(logger)),
		extension: ext,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}
	if deps.Sanitize {
		s.policy = bluemonday.UGCPolicy()
	}
	return s, nil
}

func (s *service) Language() string { return s.locale.Code }

func (s *service) LanguageName() string { return s.locale.DisplayName() }

func (s *service) ListDocuments(ctx context.Context) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "pages.ListDocuments")
	defer span.End()

	names, err := s.store.List(ctx, s.extension)
	if err != nil {
		return nil, s.fail(span, err)
	}
	if names == nil {
		names = []string{}
	}
	span.SetAttributes(attribute.Int("pages.count", len(names)))
	return names, nil
}

func (s *service) Extract(ctx context.Context, filename string) (translation.Content, error) {
	ctx, span := s.tracer.Start(ctx, "pages.Extract")
	defer span.End()

	name, err := validateSource(filename)
	if err != nil {
		return translation.Content{}, s.fail(span, err)
	}
	span.SetAttributes(attribute.String("pages.source", name))

	doc, err := s.read(ctx, name)
	if err != nil {
		return translation.Content{}, s.fail(span, err)
	}

	content := s.extractor.Extract(string(doc))
	s.loggerFor(ctx).Info("page content extracted",
		zap.String("source", name),
		zap.String("title", content.Title),
		zap.Int("faq_count", len(content.FAQ)),
	)
	return content, nil
}

func (s *service) Translate(ctx context.Context, cmd TranslateCommand) (TranslateResult, error) {
	ctx, span := s.tracer.Start(ctx, "pages.Translate")
	defer span.End()

	name, err := validateSource(cmd.Source)
	if err != nil {
		return TranslateResult{}, s.fail(span, err)
	}
	output := OutputFilename(cmd.Filename, name, s.extension)
	span.SetAttributes(
		attribute.String("pages.source", name),
		attribute.String("pages.output", output),
		attribute.String("pages.lang", s.locale.Code),
	)

	doc, err := s.read(ctx, name)
	if err != nil {
		return TranslateResult{}, s.fail(span, err)
	}

	req := cmd.Content
	if s.policy != nil {
		req = req.Map(s.policy.Sanitize)
	}

	rewritten, err := s.rewriter.Rewrite(string(doc), req)
	if err != nil {
		return TranslateResult{}, s.fail(span, err)
	}

	location, err := s.store.Write(ctx, s.locale.Code, output, []byte(rewritten.Document))
	if err != nil {
		return TranslateResult{}, s.fail(span, &WriteError{Name: output, Err: err})
	}

	result := TranslateResult{
		Message:  fmt.Sprintf("%s page generated successfully", s.locale.DisplayName()),
		Filename: output,
		Path:     location,
		Applied:  fieldNames(rewritten.Applied),
		Skipped:  fieldNames(rewritten.Skipped),
	}
	s.loggerFor(ctx).Info("translated page written",
		zap.String("source", name),
		zap.String("path", location),
		zap.String("lang", s.locale.Code),
		zap.Strings("applied", result.Applied),
		zap.Strings("skipped", result.Skipped),
	)
	return result, nil
}

func (s *service) read(ctx context.Context, name string) ([]byte, error) {
	doc, err := s.store.Read(ctx, name)
	if errors.Is(err, storage.ErrInvalidName) {
		return nil, ErrInvalidFilename
	}
	if err != nil {
		return nil, &ReadError{Name: name, Err: err}
	}
	return doc, nil
}

func (s *service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (s *service) loggerFor(ctx context.Context) *zap.Logger {
	if logger := requestctx.Logger(ctx); logger != requestctx.NoopLogger() {
		return logger
	}
	return s.logger
}

func validateSource(filename string) (string, error) {
	name := strings.TrimSpace(filename)
	if name == "" {
		return "", ErrFilenameRequired
	}
	if !storage.ValidName(name) {
		return "", ErrInvalidFilename
	}
	return path.Clean(name), nil
}

// OutputFilename derives the stored name of a translated page: the requested
// name, or the source base name when none is given, with every character
// outside letters, digits, '-', '_' and '.' replaced by '-' and ext appended
// when missing.
func OutputFilename(requested, source, ext string) string {
	name := strings.TrimSpace(requested)
	if name == "" {
		name = path.Base(source)
	}
	name = unsafeFilenameChars.ReplaceAllString(name, "-")
	if !strings.HasSuffix(name, ext) {
		name += ext
	}
	return name
}

func fieldNames(fields []translation.Field) []string {
	if len(fields) == 0 {
		return nil
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}
