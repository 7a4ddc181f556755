package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

var errInvalidBucket = errors.New("storage: bucket name is required")

// GCSStore keeps documents in a Cloud Storage bucket under an optional prefix.
type GCSStore struct {
	bucket      *storage.BucketHandle
	bucketName  string
	prefix      string
	contentType string
}

// GCSOption customises a GCSStore.
type GCSOption func(*GCSStore)

// WithPrefix stores documents below prefix inside the bucket.
func WithPrefix(prefix string) GCSOption {
	return func(s *GCSStore) {
		s.prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	}
}

// WithContentType sets the content type recorded on written objects.
func WithContentType(contentType string) GCSOption {
	return func(s *GCSStore) {
		if contentType = strings.TrimSpace(contentType); contentType != "" {
			s.contentType = contentType
		}
	}
}

// NewGCSStore wraps bucket of client.
func NewGCSStore(client *storage.Client, bucket string, opts ...GCSOption) (*GCSStore, error) {
	if client == nil {
		return nil, errors.New("storage: client is required")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errInvalidBucket
	}
	s := &GCSStore{
		bucket:      client.Bucket(bucket),
		bucketName:  bucket,
		contentType: "text/html; charset=utf-8",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *GCSStore) object(rel string) string {
	if s.prefix == "" {
		return rel
	}
	return s.prefix + "/" + rel
}

func (s *GCSStore) List(ctx context.Context, ext string) ([]string, error) {
	query := &storage.Query{Delimiter: "/"}
	if s.prefix != "" {
		query.Prefix = s.prefix + "/"
	}
	if err := query.SetAttrSelection([]string{"Name"}); err != nil {
		return nil, fmt.Errorf("storage: list gs://%s: %w", s.bucketName, err)
	}

	var names []string
	it := s.bucket.Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("storage: list gs://%s: %w", s.bucketName, err)
		}
		// Synthetic directory entries carry only a Prefix.
		if attrs.Name == "" {
			continue
		}
		name := strings.TrimPrefix(attrs.Name, query.Prefix)
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		if ext != "" && !strings.HasSuffix(name, ext) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *GCSStore) Read(ctx context.Context, name string) ([]byte, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	r, err := s.bucket.Object(s.object(clean)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, clean)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", clean, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", clean, err)
	}
	return data, nil
}

// Write uploads the document in one object write; readers see either the old
// or the new content.
func (s *GCSStore) Write(ctx context.Context, dir, name string, data []byte) (string, error) {
	cleanDir, err := cleanName(dir)
	if err != nil {
		return "", err
	}
	cleanFile, err := cleanName(name)
	if err != nil {
		return "", err
	}
	object := s.object(path.Join(cleanDir, cleanFile))

	w := s.bucket.Object(object).NewWriter(ctx)
	w.ContentType = s.contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("storage: write %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: finalize %s: %w", object, err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucketName, object), nil
}
