package storage

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

var _ Sink = (*GCSStorage)(nil)

type GCSStorage struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSStorage(ctx context.Context, bucket, prefix string) (*GCSStorage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}

// Save uploads the file as a single object. The object only becomes visible
// once the writer is closed successfully.
func (s *GCSStorage) Save(ctx context.Context, name string, data []byte) (string, error) {
	object := s.objectName(name)

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = pptxContentType
	w.ContentDisposition = fmt.Sprintf("attachment; filename=%q", name)

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize %s: %w", object, err)
	}

	return s.location(object), nil
}

func (s *GCSStorage) List(ctx context.Context) ([]Entry, error) {
	query := &storage.Query{Prefix: s.listPrefix()}

	var files []Entry
	it := s.client.Bucket(s.bucket).Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		if !isExport(attrs.Name) {
			continue
		}
		files = append(files, Entry{
			Name:     path.Base(attrs.Name),
			Location: s.location(attrs.Name),
			Size:     attrs.Size,
			Updated:  attrs.Updated,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Updated.After(files[j].Updated)
	})
	return files, nil
}

func (s *GCSStorage) objectName(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func (s *GCSStorage) listPrefix() string {
	if s.prefix == "" {
		return ""
	}
	return s.prefix + "/"
}

func (s *GCSStorage) location(object string) string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, object)
}
