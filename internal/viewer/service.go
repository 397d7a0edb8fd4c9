// Package viewer resolves invite tokens into playable webinar data.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hezo-be/webinar-backend/internal/invites"
	"github.com/hezo-be/webinar-backend/internal/metrics"
	"github.com/hezo-be/webinar-backend/internal/models"
	"github.com/hezo-be/webinar-backend/internal/webinars"
)

// Resolution failures. Anything else is an internal error.
var (
	ErrInvalidToken = errors.New("invalid token format")
	ErrNotFound     = errors.New("invite not found")
	ErrExpired      = errors.New("invite expired")
	ErrUnavailable  = errors.New("webinar not available")
)

// InviteStore is the invite access the viewer needs.
type InviteStore interface {
	GetByToken(ctx context.Context, token string) (*models.Invite, error)
	RecordView(ctx context.Context, id uuid.UUID) error
}

// WebinarGetter loads a webinar by id.
type WebinarGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Webinar, error)
}

// Service resolves tokens. It holds no state between calls.
type Service struct {
	invites  InviteStore
	webinars WebinarGetter
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a viewer service. m may be nil.
func NewService(inv InviteStore, web WebinarGetter, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{invites: inv, webinars: web, metrics: m, logger: logger, now: time.Now}
}

// Resolve checks token, records a view and returns the public webinar.
// Checks run in order: format, existence, expiry, webinar availability.
func (s *Service) Resolve(ctx context.Context, token string) (*models.PublicWebinar, error) {
	w, err := s.resolve(ctx, token)
	s.metrics.ObserveResolution(Outcome(err))
	return w, err
}

func (s *Service) resolve(ctx context.Context, token string) (*models.PublicWebinar, error) {
	if !invites.ValidToken(token) {
		return nil, ErrInvalidToken
	}

	inv, err := s.invites.GetByToken(ctx, token)
	if errors.Is(err, invites.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load invite: %w", err)
	}
	if inv.Expired(s.now()) {
		return nil, ErrExpired
	}

	w, err := s.webinars.GetByID(ctx, inv.WebinarID)
	if errors.Is(err, webinars.ErrNotFound) {
		return nil, ErrUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("load webinar: %w", err)
	}
	if !w.IsActive {
		return nil, ErrUnavailable
	}

	if err := s.invites.RecordView(ctx, inv.ID); err != nil {
		s.metrics.IncrementViewRecordErrors()
		s.logger.Warn("record view failed", zap.String("invite_id", inv.ID.String()), zap.Error(err))
	} else {
		s.metrics.IncrementViews()
	}

	return &models.PublicWebinar{
		Title:        w.Title,
		Description:  w.Description,
		VideoURL:     webinars.EmbedURL(w.VideoURL),
		ThumbnailURL: w.ThumbnailURL,
	}, nil
}

// Outcome maps a Resolve error to its metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrUnavailable):
		return "webinar_unavailable"
	default:
		return "internal_error"
	}
}
