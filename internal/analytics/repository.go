package analytics

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Counts are the raw invite and email aggregates for one webinar.
type Counts struct {
	TotalInvites   int
	ViewedInvites  int
	TotalViews     int
	ExpiredInvites int
	EmailsSent     int
	EmailsFailed   int
}

// Repository runs the aggregate queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an analytics repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CountByWebinar aggregates invites and email logs for a webinar.
func (r *Repository) CountByWebinar(ctx context.Context, webinarID uuid.UUID) (*Counts, error) {
	const q = `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE view_count > 0),
			COALESCE(SUM(view_count), 0),
			COUNT(*) FILTER (WHERE expires_at IS NOT NULL AND expires_at <= NOW()),
			(SELECT COUNT(*) FROM invite_email_logs l WHERE l.webinar_id = $1 AND l.status = 'sent'),
			(SELECT COUNT(*) FROM invite_email_logs l WHERE l.webinar_id = $1 AND l.status = 'failed')
		FROM webinar_invites
		WHERE webinar_id = $1`
	var c Counts
	err := r.pool.QueryRow(ctx, q, webinarID).Scan(
		&c.TotalInvites, &c.ViewedInvites, &c.TotalViews, &c.ExpiredInvites, &c.EmailsSent, &c.EmailsFailed,
	)
	if err != nil {
		return nil, fmt.Errorf("count invites: %w", err)
	}
	return &c, nil
}
