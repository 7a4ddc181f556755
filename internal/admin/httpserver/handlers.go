package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"finitefield.org/tours-admin/internal/admin/bookingmail"
	"finitefield.org/tours-admin/internal/admin/pages"
	"finitefield.org/tours-admin/internal/platform/httpx"
	"finitefield.org/tours-admin/internal/platform/requestctx"
	"finitefield.org/tours-admin/internal/translation"
)

const (
	maxPageBodySize    = 1 << 20
	maxBookingBodySize = 256 << 10
)

var (
	errBodyTooLarge = errors.New("request body too large")
	errEmptyBody    = errors.New("request body is required")
)

// fieldKeys maps each field to the request key prefix used by the admin UI.
// The target language code is appended, e.g. "about_tour_fr".
var fieldKeys = map[translation.Field]string{
	translation.FieldTitle:               "title",
	translation.FieldAboutTour:           "about_tour",
	translation.FieldHighlights:          "highlights",
	translation.FieldIncluded:            "included",
	translation.FieldNotIncluded:         "not_included",
	translation.FieldNotSuitableFor:      "not_suitable_for",
	translation.FieldDetailedDescription: "detailed_description",
	translation.FieldFAQ:                 "faq",
}

type handlers struct {
	pages pages.Service
	now   func() time.Time
}

type listDocumentsResponse struct {
	Files []string `json:"files"`
}

type extractRequest struct {
	Filename string `json:"filename"`
}

type bookingPreviewRequest struct {
	Booking json.RawMessage   `json:"booking"`
	Tour    *bookingmail.Tour `json:"tour"`
}

func (h *handlers) listDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	files, err := h.pages.ListDocuments(ctx)
	if err != nil {
		requestctx.Logger(ctx).Error("list documents failed", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("read_failed", "Failed to read PHP files: "+err.Error(), http.StatusInternalServerError))
		return
	}
	if files == nil {
		files = []string{}
	}
	httpx.WriteJSON(w, http.StatusOK, listDocumentsResponse{Files: files})
}

func (h *handlers) extractContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	var req extractRequest
	if !decodeBody(w, r, maxPageBodySize, &req) {
		return
	}

	content, err := h.pages.Extract(ctx, req.Filename)
	if err != nil {
		switch {
		case errors.Is(err, pages.ErrFilenameRequired):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "Filename is required", http.StatusBadRequest))
		case errors.Is(err, pages.ErrInvalidFilename):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "Invalid filename", http.StatusBadRequest))
		default:
			requestctx.Logger(ctx).Error("extract content failed", zap.String("filename", req.Filename), zap.Error(err))
			httpx.WriteError(ctx, w, httpx.NewError("parse_failed", "Failed to parse PHP content: "+err.Error(), http.StatusInternalServerError))
		}
		return
	}
	if content.FAQ == nil {
		content.FAQ = []translation.FAQEntry{}
	}
	httpx.WriteJSON(w, http.StatusOK, content)
}

func (h *handlers) generatePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	body, ok := readBody(w, r, maxPageBodySize)
	if !ok {
		return
	}
	cmd, err := parseGenerateRequest(body, h.pages.Language())
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	result, err := h.pages.Translate(ctx, cmd)
	if err != nil {
		switch {
		case errors.Is(err, pages.ErrFilenameRequired):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "PHP file selection is required", http.StatusBadRequest))
		case errors.Is(err, pages.ErrInvalidFilename):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "Invalid filename", http.StatusBadRequest))
		default:
			requestctx.Logger(ctx).Error("generate page failed", zap.String("filename", cmd.Source), zap.Error(err))
			message := fmt.Sprintf("Failed to generate %s page: %s", h.pages.LanguageName(), err.Error())
			httpx.WriteError(ctx, w, httpx.NewError("generate_failed", message, http.StatusInternalServerError))
		}
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

func (h *handlers) previewBookingEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req bookingPreviewRequest
	if !decodeBody(w, r, maxBookingBodySize, &req) {
		return
	}
	if isNull(req.Booking) {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "booking is required", http.StatusBadRequest))
		return
	}
	var booking bookingmail.Booking
	if err := json.Unmarshal(req.Booking, &booking); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid booking payload", http.StatusBadRequest))
		return
	}

	w.Header().Set("X-Email-Subject", bookingmail.Subject(booking))
	templ.Handler(bookingmail.Notification(booking, req.Tour, h.now())).ServeHTTP(w, r)
}

func (h *handlers) available(w http.ResponseWriter, r *http.Request) bool {
	if h.pages != nil {
		return true
	}
	httpx.WriteError(r.Context(), w, httpx.NewError("service_unavailable", "page service is not configured", http.StatusServiceUnavailable))
	return false
}

// parseGenerateRequest reads the page selection and the translated values
// keyed "<field>_<lang>". List fields accept a newline-joined string or an
// array of strings. The FAQ accepts an array or a JSON-encoded array.
func parseGenerateRequest(body []byte, lang string) (pages.TranslateCommand, error) {
	var cmd pages.TranslateCommand
	values := map[string]json.RawMessage{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &values); err != nil {
			return cmd, errors.New("invalid JSON payload")
		}
	}

	var err error
	if cmd.Source, err = decodeString(values["php_file"]); err != nil {
		return cmd, errors.New("php_file must be a string")
	}
	if cmd.Filename, err = decodeString(values["custom_filename"]); err != nil {
		return cmd, errors.New("custom_filename must be a string")
	}

	for _, field := range translation.Fields {
		key := fieldKeys[field] + "_" + lang
		raw, ok := values[key]
		if !ok {
			continue
		}
		if field == translation.FieldFAQ {
			if cmd.Content.FAQ, err = decodeFAQ(raw); err != nil {
				return cmd, fmt.Errorf("%s must be a list of questions and answers", key)
			}
			continue
		}
		value, err := decodeText(raw)
		if err != nil {
			return cmd, fmt.Errorf("%s must be a string or a list of strings", key)
		}
		cmd.Content.Set(field, value)
	}
	return cmd, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}

func decodeString(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

func decodeText(raw json.RawMessage) (string, error) {
	if s, err := decodeString(raw); err == nil {
		return s, nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

func decodeFAQ(raw json.RawMessage) ([]translation.FAQEntry, error) {
	if isNull(raw) {
		return nil, nil
	}
	if encoded, err := decodeString(raw); err == nil {
		if strings.TrimSpace(encoded) == "" {
			return nil, nil
		}
		raw = json.RawMessage(encoded)
	}
	var entries []translation.FAQEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched so
// handlers can report the missing fields themselves.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	body, ok := readBody(w, r, limit)
	if !ok {
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, v); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return false
	}
	return true
}

func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, bool) {
	body, err := readLimitedBody(r, limit)
	switch {
	case err == nil:
		return body, true
	case errors.Is(err, errEmptyBody):
		return nil, true
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(r.Context(), w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
	return nil, false
}

func readLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, errEmptyBody
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errEmptyBody
	}
	return data, nil
}
