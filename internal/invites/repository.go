package invites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hezo-be/webinar-backend/internal/models"
	"github.com/hezo-be/webinar-backend/internal/webinars"
	"github.com/hezo-be/webinar-backend/pkg/database"
)

var (
	// ErrNotFound is returned when no invite matches.
	ErrNotFound = errors.New("invite not found")
	// ErrTokenExhausted means every minted token collided. It does not happen in practice.
	ErrTokenExhausted = errors.New("could not mint a unique token")
)

const maxTokenAttempts = 3

// mintToken is swapped in tests to force token collisions.
var mintToken = NewToken

const inviteColumns = `i.id, i.webinar_id, i.token, i.name, i.email, i.expires_at, i.view_count, i.viewed_at, i.created_at`

// Row is an invite joined with the fields of its webinar that listing needs.
type Row struct {
	models.Invite
	WebinarTitle  string
	WebinarActive bool
}

// Repository handles invite persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an invite repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanInvite(row pgx.Row, extra ...any) (*models.Invite, error) {
	var inv models.Invite
	dest := []any{&inv.ID, &inv.WebinarID, &inv.Token, &inv.Name, &inv.Email, &inv.ExpiresAt, &inv.ViewCount, &inv.ViewedAt, &inv.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// CreateBatch inserts one invite per recipient in a single transaction.
// Either all invites are committed and returned with their tokens, or none are.
// An empty Recipient yields an anonymous invite.
func (r *Repository) CreateBatch(ctx context.Context, webinarID uuid.UUID, recipients []models.Recipient, expiresAt *time.Time) ([]models.Invite, error) {
	created := make([]models.Invite, 0, len(recipients))
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, rc := range recipients {
			inv, err := insertInvite(ctx, tx, webinarID, rc, expiresAt)
			if err != nil {
				return err
			}
			created = append(created, *inv)
		}
		return nil
	})
	if database.IsForeignKeyViolation(err) {
		return nil, webinars.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("create invites: %w", err)
	}
	return created, nil
}

func insertInvite(ctx context.Context, tx pgx.Tx, webinarID uuid.UUID, rc models.Recipient, expiresAt *time.Time) (*models.Invite, error) {
	const q = `INSERT INTO webinar_invites AS i (webinar_id, token, name, email, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token) DO NOTHING
		RETURNING ` + inviteColumns
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := mintToken()
		if err != nil {
			return nil, err
		}
		inv, err := scanInvite(tx.QueryRow(ctx, q, webinarID, token, rc.Name, rc.Email, expiresAt))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return inv, err
	}
	return nil, ErrTokenExhausted
}

// GetByID returns an invite by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invite, error) {
	return scanInvite(r.pool.QueryRow(ctx, `SELECT `+inviteColumns+` FROM webinar_invites i WHERE i.id = $1`, id))
}

// GetByToken returns the invite holding token.
func (r *Repository) GetByToken(ctx context.Context, token string) (*models.Invite, error) {
	return scanInvite(r.pool.QueryRow(ctx, `SELECT `+inviteColumns+` FROM webinar_invites i WHERE i.token = $1`, token))
}

// List returns invites newest first, optionally for one webinar, with webinar title and active flag.
func (r *Repository) List(ctx context.Context, webinarID *uuid.UUID) ([]Row, error) {
	q := `SELECT ` + inviteColumns + `, w.title, w.is_active
		FROM webinar_invites i
		JOIN webinars w ON w.id = i.webinar_id`
	var args []any
	if webinarID != nil {
		q += ` WHERE i.webinar_id = $1`
		args = append(args, *webinarID)
	}
	q += ` ORDER BY i.created_at DESC, i.id`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	defer rows.Close()

	list := []Row{}
	for rows.Next() {
		var row Row
		inv, err := scanInvite(rows, &row.WebinarTitle, &row.WebinarActive)
		if err != nil {
			return nil, err
		}
		row.Invite = *inv
		list = append(list, row)
	}
	return list, rows.Err()
}

// Delete removes one invite.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM webinar_invites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordView increments view_count and sets viewed_at on the first view, in one statement.
func (r *Repository) RecordView(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE webinar_invites
		SET view_count = view_count + 1, viewed_at = COALESCE(viewed_at, NOW())
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
