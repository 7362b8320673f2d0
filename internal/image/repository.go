// Package image manages hosted images and their metadata.
package image

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Image represents one file hosted at the remote image host.
type Image struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	URL         string    `json:"url"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ErrNotFound is returned when an image record does not exist.
var ErrNotFound = errors.New("image not found")

// ErrDuplicatePath is returned when a repository path is already recorded.
var ErrDuplicatePath = errors.New("image path already recorded")

// Repository handles all image database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new image record and returns it.
func (r *Repository) Create(ctx context.Context, path, url string, size int64, contentType string) (*Image, error) {
	img := &Image{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO images (path, url, size, content_type)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, path, url, size, content_type, created_at`,
		path, url, size, contentType,
	).Scan(&img.ID, &img.Path, &img.URL, &img.Size, &img.ContentType, &img.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePath
		}
		return nil, fmt.Errorf("create image: %w", err)
	}
	return img, nil
}

// GetByID fetches an image record by its UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Image, error) {
	img := &Image{}
	err := r.db.QueryRow(ctx,
		`SELECT id, path, url, size, content_type, created_at
		 FROM images WHERE id = $1`,
		id,
	).Scan(&img.ID, &img.Path, &img.URL, &img.Size, &img.ContentType, &img.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get image by id: %w", err)
	}
	return img, nil
}

// List returns all image records, newest first.
func (r *Repository) List(ctx context.Context) ([]Image, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, path, url, size, content_type, created_at
		 FROM images ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	images := []Image{}
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.Path, &img.URL, &img.Size, &img.ContentType, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

// Delete removes an image record by its UUID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
