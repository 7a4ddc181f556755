// Package pages lists generated tour pages, extracts their translatable
// content and writes translated copies into a per-language subdirectory.
package pages

import (
	"context"
	"errors"

	"finitefield.org/tours-admin/internal/translation"
)

var (
	// ErrFilenameRequired indicates no source document was named.
	ErrFilenameRequired = errors.New("pages: filename is required")
	// ErrInvalidFilename indicates a name that escapes the document root.
	ErrInvalidFilename = errors.New("pages: invalid filename")
)

// Service exposes the page operations used by the admin API.
type Service interface {
	// ListDocuments returns the sorted names of source documents.
	ListDocuments(ctx context.Context) ([]string, error)
	// Extract reads a source document and returns its translatable content.
	Extract(ctx context.Context, filename string) (translation.Content, error)
	// Translate rewrites a source document with the supplied content and
	// stores the result in the target-language subdirectory.
	Translate(ctx context.Context, cmd TranslateCommand) (TranslateResult, error)
	// Language returns the target language code.
	Language() string
	// LanguageName returns the English name of the target language.
	LanguageName() string
}

// TranslateCommand carries a translation request.
type TranslateCommand struct {
	// Source names the document to translate.
	Source string
	// Filename optionally names the output document. Defaults to Source.
	Filename string
	// Content holds the translated values; empty fields are left untouched.
	Content translation.Content
}

// TranslateResult describes the written document.
type TranslateResult struct {
	Message  string   `json:"message"`
	Filename string   `json:"filename"`
	Path     string   `json:"path"`
	Applied  []string `json:"applied,omitempty"`
	Skipped  []string `json:"skipped,omitempty"`
}

// ReadError reports a source document that could not be read.
type ReadError struct {
	Name string
	Err  error
}

func (e *ReadError) Error() string {
	if e == nil || e.Err == nil {
		return "read failed"
	}
	return e.Err.Error()
}

func (e *ReadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WriteError reports an output document that could not be written.
type WriteError struct {
	Name string
	Err  error
}

func (e *WriteError) Error() string {
	if e == nil || e.Err == nil {
		return "write failed"
	}
	return e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
