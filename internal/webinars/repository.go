package webinars

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hezo-be/webinar-backend/internal/models"
)

// ErrNotFound is returned when no webinar has the requested id.
var ErrNotFound = errors.New("webinar not found")

const webinarColumns = `id, title, description, video_url, thumbnail_url, is_active, created_at, updated_at`

// Repository handles webinar persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a webinar repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanWebinar(row pgx.Row) (*models.Webinar, error) {
	var w models.Webinar
	err := row.Scan(&w.ID, &w.Title, &w.Description, &w.VideoURL, &w.ThumbnailURL, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Create inserts a new webinar and fills its generated fields.
func (r *Repository) Create(ctx context.Context, w *models.Webinar) error {
	const q = `INSERT INTO webinars (title, description, video_url, thumbnail_url, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	if err := r.pool.QueryRow(ctx, q, w.Title, w.Description, w.VideoURL, w.ThumbnailURL, w.IsActive).
		Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return fmt.Errorf("insert webinar: %w", err)
	}
	return nil
}

// GetByID returns a webinar by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Webinar, error) {
	q := `SELECT ` + webinarColumns + ` FROM webinars WHERE id = $1`
	return scanWebinar(r.pool.QueryRow(ctx, q, id))
}

// List returns all webinars, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Webinar, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+webinarColumns+` FROM webinars ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list webinars: %w", err)
	}
	defer rows.Close()

	list := []models.Webinar{}
	for rows.Next() {
		w, err := scanWebinar(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *w)
	}
	return list, rows.Err()
}

// Update merges the non-nil fields of p into the webinar and returns the result.
// The Clear flags null out description and thumbnail_url.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p models.WebinarPatch) (*models.Webinar, error) {
	q := `UPDATE webinars SET
			title = COALESCE($2, title),
			description = CASE WHEN $7 THEN NULL ELSE COALESCE($3, description) END,
			video_url = COALESCE($4, video_url),
			thumbnail_url = CASE WHEN $8 THEN NULL ELSE COALESCE($5, thumbnail_url) END,
			is_active = COALESCE($6, is_active),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + webinarColumns
	return scanWebinar(r.pool.QueryRow(ctx, q, id, p.Title, p.Description, p.VideoURL, p.ThumbnailURL, p.IsActive, p.ClearDescription, p.ClearThumbnailURL))
}

// Delete removes a webinar. Its invites go with it (ON DELETE CASCADE).
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM webinars WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete webinar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
