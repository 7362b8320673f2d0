package image

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pixrepo/service/internal/imagehost"
)

// Store is the persistence interface the service needs. *Repository satisfies it.
type Store interface {
	Create(ctx context.Context, path, url string, size int64, contentType string) (*Image, error)
	GetByID(ctx context.Context, id string) (*Image, error)
	List(ctx context.Context) ([]Image, error)
	Delete(ctx context.Context, id string) error
}

// ErrHostNotReady is returned when the image host configuration is incomplete.
var ErrHostNotReady = errors.New("image host is not configured")

// ErrEmptyFile is returned when an upload carries no content.
var ErrEmptyFile = errors.New("uploaded file is empty")

// Service contains business logic for uploading and removing hosted images.
type Service struct {
	store Store
	host  imagehost.Host
}

// NewService creates a new image Service.
func NewService(store Store, host imagehost.Host) *Service {
	return &Service{store: store, host: host}
}

// Upload stores data at the remote host under a generated repository path and
// records its metadata. The two steps are not atomic: if recording fails the
// uploaded file is removed again on a best-effort basis.
func (s *Service) Upload(ctx context.Context, filename, contentType string, data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if !s.host.Ready() {
		return nil, ErrHostNotReady
	}

	path := buildPath(filename, time.Now().UTC())
	url, err := s.host.Create(ctx, data, path)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	img, err := s.store.Create(ctx, path, url, int64(len(data)), contentType)
	if err != nil {
		if removeErr := s.host.Remove(ctx, url); removeErr != nil {
			log.Printf("image: orphaned upload %s left at host: %v", path, removeErr)
		}
		return nil, fmt.Errorf("record image: %w", err)
	}
	return img, nil
}

// Delete removes an image from the remote host and drops its record.
func (s *Service) Delete(ctx context.Context, id string) error {
	img, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !s.host.OwnsURL(img.URL) {
		return fmt.Errorf("image %s is not owned by the configured host", id)
	}
	if err := s.host.Remove(ctx, img.URL); err != nil {
		return fmt.Errorf("delete image at host: %w", err)
	}

	return s.store.Delete(ctx, id)
}

// GetByID returns one image record.
func (s *Service) GetByID(ctx context.Context, id string) (*Image, error) {
	return s.store.GetByID(ctx, id)
}

// List returns all image records, newest first.
func (s *Service) List(ctx context.Context) ([]Image, error) {
	return s.store.List(ctx)
}

// TestHostConfig validates a candidate host configuration against the live
// service without touching the stored configuration.
func (s *Service) TestHostConfig(ctx context.Context, cfg imagehost.Config) (bool, string) {
	return s.host.TestConfig(ctx, cfg)
}

// IsNotFound returns true when the error indicates a missing image record.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// buildPath derives a unique repository-relative path for an uploaded file:
// images/<year>/<month>/<unix-nano>-<sanitized-filename>.
func buildPath(filename string, now time.Time) string {
	return fmt.Sprintf("images/%s/%d-%s", now.Format("2006/01"), now.UnixNano(), sanitizeFilename(filename))
}

// sanitizeFilename keeps letters, digits, dot, dash, and underscore; every
// other rune becomes a dash. Empty names fall back to "file".
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
