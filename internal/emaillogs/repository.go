package emaillogs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hezo-be/webinar-backend/internal/models"
)

// Repository handles invite_email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a log row and fills its id and created_at.
func (r *Repository) Create(ctx context.Context, el *models.EmailLog) error {
	const q = `INSERT INTO invite_email_logs (webinar_id, invite_id, email_type, recipient_email, status, sent_at, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, el.WebinarID, el.InviteID, el.EmailType, el.RecipientEmail, el.Status, el.SentAt, el.ErrorMessage).
		Scan(&el.ID, &el.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert email log: %w", err)
	}
	return nil
}

// ListByWebinar returns email logs for a webinar, newest first.
func (r *Repository) ListByWebinar(ctx context.Context, webinarID uuid.UUID) ([]*models.EmailLog, error) {
	const q = `SELECT id, webinar_id, invite_id, email_type, recipient_email, status, sent_at, error_message, created_at
		FROM invite_email_logs
		WHERE webinar_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, webinarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []*models.EmailLog{}
	for rows.Next() {
		var el models.EmailLog
		var errMsg *string
		if err := rows.Scan(&el.ID, &el.WebinarID, &el.InviteID, &el.EmailType, &el.RecipientEmail, &el.Status, &el.SentAt, &errMsg, &el.CreatedAt); err != nil {
			return nil, err
		}
		if errMsg != nil {
			el.ErrorMessage = *errMsg
		}
		list = append(list, &el)
	}
	return list, rows.Err()
}
