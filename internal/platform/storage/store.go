// Package storage holds the documents the admin service reads and writes.
// Documents are addressed by slash-separated names relative to a store root.
package storage

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("storage: document not found")
	// ErrInvalidName is returned for names that would escape the store root.
	ErrInvalidName = errors.New("storage: invalid document name")
)

// Store lists, reads and replaces documents.
type Store interface {
	// List returns the sorted names of documents directly under the root whose
	// name ends with ext.
	List(ctx context.Context, ext string) ([]string, error)
	// Read returns the full content of the named document.
	Read(ctx context.Context, name string) ([]byte, error)
	// Write replaces dir/name with data, creating dir when needed, and returns
	// the location of the written document for display.
	Write(ctx context.Context, dir, name string, data []byte) (string, error)
}

// ValidName reports whether name is a non-empty relative path that stays
// inside the store root.
func ValidName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, `\`) {
		return false
	}
	return filepath.IsLocal(filepath.FromSlash(name))
}

func cleanName(name string) (string, error) {
	if !ValidName(name) {
		return "", ErrInvalidName
	}
	return path.Clean(strings.TrimSpace(name)), nil
}
