package invites

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hezo-be/webinar-backend/internal/metrics"
	"github.com/hezo-be/webinar-backend/internal/models"
	"github.com/hezo-be/webinar-backend/internal/notify"
	"github.com/hezo-be/webinar-backend/internal/webinars"
)

// MaxBatch caps recipients and anonymous counts per request.
const MaxBatch = 1000

// DefaultDispatchBudget bounds the email phase of one create request when no budget is configured.
// It stays below the server's default 120s write timeout.
const DefaultDispatchBudget = 90 * time.Second

var (
	// ErrNoRecipients is returned for an empty batch.
	ErrNoRecipients = errors.New("no recipients provided")
	// ErrTooMany is returned when a batch exceeds MaxBatch.
	ErrTooMany = errors.New("too many invites in one request")
)

// Store is the invite persistence the service needs.
type Store interface {
	CreateBatch(ctx context.Context, webinarID uuid.UUID, recipients []models.Recipient, expiresAt *time.Time) ([]models.Invite, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invite, error)
	List(ctx context.Context, webinarID *uuid.UUID) ([]Row, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// WebinarGetter loads a webinar by id.
type WebinarGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Webinar, error)
}

// Dispatcher sends invite emails.
type Dispatcher interface {
	Dispatch(ctx context.Context, msgs []notify.Message) []notify.Result
}

// EmailLogger persists one email attempt.
type EmailLogger interface {
	Create(ctx context.Context, el *models.EmailLog) error
}

// EmailError describes one invite whose email was not sent.
type EmailError struct {
	InviteID uuid.UUID `json:"invite_id"`
	Email    string    `json:"email"`
	Name     *string   `json:"name"`
	Error    string    `json:"error"`
}

// BatchResult is the outcome of creating invites.
// Every created invite with an email is counted in EmailsSent or listed in EmailErrors when sending was requested.
type BatchResult struct {
	Invites     []models.Invite `json:"invites"`
	EmailsSent  int             `json:"emails_sent"`
	EmailErrors []EmailError    `json:"email_errors"`
}

// Service implements invite creation, listing and deletion.
type Service struct {
	store      Store
	webinars   WebinarGetter
	dispatcher Dispatcher
	emailLogs  EmailLogger
	metrics    *metrics.Metrics
	baseURL    string
	budget     time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates an invite service. dispatcher, emailLogs and m may be nil.
// budget bounds the email phase of Create and must stay below the HTTP write timeout; zero means DefaultDispatchBudget.
func NewService(store Store, webinars WebinarGetter, dispatcher Dispatcher, emailLogs EmailLogger, m *metrics.Metrics, baseURL string, budget time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if budget <= 0 {
		budget = DefaultDispatchBudget
	}
	return &Service{
		store:      store,
		webinars:   webinars,
		dispatcher: dispatcher,
		emailLogs:  emailLogs,
		metrics:    m,
		baseURL:    strings.TrimRight(baseURL, "/"),
		budget:     budget,
		logger:     logger,
		now:        time.Now,
	}
}

// Link returns the magic link for token.
func (s *Service) Link(token string) string {
	return MagicLink(s.baseURL, token)
}

// MagicLink joins the public base URL and token into a viewer link.
func MagicLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/webinar/" + token
}

// Create persists one invite per recipient in one transaction, then optionally emails them.
// Email failures never undo the invites.
func (s *Service) Create(ctx context.Context, webinarID uuid.UUID, recipients []models.Recipient, expiresAt *time.Time, sendEmail bool) (*BatchResult, error) {
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	if len(recipients) > MaxBatch {
		return nil, ErrTooMany
	}
	w, err := s.webinars.GetByID(ctx, webinarID)
	if err != nil {
		return nil, err
	}

	created, err := s.store.CreateBatch(ctx, webinarID, normalize(recipients), expiresAt)
	if err != nil {
		return nil, err
	}
	s.metrics.AddInvitesCreated(len(created))
	s.logger.Info("invites created", zap.String("webinar_id", webinarID.String()), zap.Int("count", len(created)))

	res := &BatchResult{Invites: created, EmailErrors: []EmailError{}}
	if sendEmail {
		s.dispatch(ctx, w, res)
	}
	return res, nil
}

// CreateAnonymous creates count invites without name or email.
func (s *Service) CreateAnonymous(ctx context.Context, webinarID uuid.UUID, count int, expiresAt *time.Time) ([]models.Invite, error) {
	if count > MaxBatch {
		return nil, ErrTooMany
	}
	res, err := s.Create(ctx, webinarID, make([]models.Recipient, count), expiresAt, false)
	if err != nil {
		return nil, err
	}
	return res.Invites, nil
}

func (s *Service) dispatch(ctx context.Context, w *models.Webinar, res *BatchResult) {
	// The request may end before the emails do.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.budget)
	defer cancel()

	var targets []models.Invite
	var msgs []notify.Message
	for _, inv := range res.Invites {
		if inv.Email == nil {
			continue
		}
		targets = append(targets, inv)
		msgs = append(msgs, notify.Message{
			To:           *inv.Email,
			Name:         inv.Name,
			WebinarTitle: w.Title,
			Link:         s.Link(inv.Token),
		})
	}
	if len(msgs) == 0 {
		return
	}

	var results []notify.Result
	if s.dispatcher == nil {
		results = make([]notify.Result, len(msgs))
		for i := range results {
			results[i] = notify.Result{Message: msgs[i], Err: notify.ErrNotConfigured}
		}
	} else {
		results = s.dispatcher.Dispatch(ctx, msgs)
	}

	now := s.now()
	for i, r := range results {
		inv := targets[i]
		s.metrics.ObserveEmail(r.Err == nil)
		if r.Err == nil {
			res.EmailsSent++
		} else {
			res.EmailErrors = append(res.EmailErrors, EmailError{
				InviteID: inv.ID,
				Email:    *inv.Email,
				Name:     inv.Name,
				Error:    r.Err.Error(),
			})
		}
		if s.emailLogs != nil {
			if err := s.emailLogs.Create(ctx, models.NewInviteEmailLog(w.ID, inv.ID, *inv.Email, r.Err, now)); err != nil {
				s.logger.Warn("write email log failed", zap.String("invite_id", inv.ID.String()), zap.Error(err))
			}
		}
	}
}

// List returns invites newest first, annotated with webinar title, derived status and link.
func (s *Service) List(ctx context.Context, webinarID *uuid.UUID) ([]models.InviteListItem, error) {
	rows, err := s.store.List(ctx, webinarID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	items := make([]models.InviteListItem, 0, len(rows))
	for _, row := range rows {
		w := &models.Webinar{ID: row.WebinarID, Title: row.WebinarTitle, IsActive: row.WebinarActive}
		items = append(items, models.InviteListItem{
			Invite:       row.Invite,
			WebinarTitle: row.WebinarTitle,
			Status:       models.InviteStatus(&row.Invite, w, now),
			Link:         s.Link(row.Token),
		})
	}
	return items, nil
}

// Delete removes one invite.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

func normalize(in []models.Recipient) []models.Recipient {
	out := make([]models.Recipient, len(in))
	for i, r := range in {
		out[i] = models.Recipient{Name: trimmed(r.Name), Email: trimmed(r.Email)}
	}
	return out
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

var _ WebinarGetter = (*webinars.Repository)(nil)
