package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hezo-be/webinar-backend/internal/invites"
	"github.com/hezo-be/webinar-backend/internal/metrics"
	"github.com/hezo-be/webinar-backend/internal/models"
	"github.com/hezo-be/webinar-backend/internal/notify"
	"github.com/hezo-be/webinar-backend/internal/webinars"
	"github.com/hezo-be/webinar-backend/pkg/queue"
)

// InviteGetter loads an invite by id.
type InviteGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invite, error)
}

// WebinarGetter loads a webinar by id.
type WebinarGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Webinar, error)
}

// Sender delivers one invite email.
type Sender interface {
	Send(ctx context.Context, msg notify.Message) error
}

// EmailLogger persists one email attempt.
type EmailLogger interface {
	Create(ctx context.Context, el *models.EmailLog) error
}

// JobQueue is the queue the worker consumes.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// InviteEmailProcessor sends queued invite emails.
type InviteEmailProcessor struct {
	invites  InviteGetter
	webinars WebinarGetter
	sender   Sender
	logs     EmailLogger
	queue    JobQueue
	metrics  *metrics.Metrics
	baseURL  string
	backoff  time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewInviteEmailProcessor creates an invite email processor. logs and m may be nil.
func NewInviteEmailProcessor(inv InviteGetter, web WebinarGetter, sender Sender, logs EmailLogger, q JobQueue, m *metrics.Metrics, baseURL string, logger *zap.Logger) *InviteEmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InviteEmailProcessor{
		invites:  inv,
		webinars: web,
		sender:   sender,
		logs:     logs,
		queue:    q,
		metrics:  m,
		baseURL:  baseURL,
		backoff:  queue.RetryBackoff,
		logger:   logger,
		now:      time.Now,
	}
}

// Process executes one invite email job. Jobs whose invite can no longer be
// viewed are dropped without error; send failures are returned for retry.
func (p *InviteEmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeInviteEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.InviteEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	inv, err := p.invites.GetByID(ctx, payload.InviteID)
	if errors.Is(err, invites.ErrNotFound) {
		p.logger.Info("invite gone, dropping email job", zap.String("invite_id", payload.InviteID.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load invite: %w", err)
	}
	if inv.Email == nil || *inv.Email == "" {
		p.logger.Info("invite has no email, dropping job", zap.String("invite_id", inv.ID.String()))
		return nil
	}
	if inv.Expired(p.now()) {
		p.logger.Info("invite expired, dropping email job", zap.String("invite_id", inv.ID.String()))
		return nil
	}

	w, err := p.webinars.GetByID(ctx, inv.WebinarID)
	if errors.Is(err, webinars.ErrNotFound) || (err == nil && !w.IsActive) {
		p.logger.Info("webinar unavailable, dropping email job", zap.String("invite_id", inv.ID.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load webinar: %w", err)
	}

	sendErr := p.sender.Send(ctx, notify.Message{
		To:           *inv.Email,
		Name:         inv.Name,
		WebinarTitle: w.Title,
		Link:         invites.MagicLink(p.baseURL, inv.Token),
	})
	p.metrics.ObserveEmail(sendErr == nil)
	if p.logs != nil {
		if err := p.logs.Create(ctx, models.NewInviteEmailLog(w.ID, inv.ID, *inv.Email, sendErr, p.now())); err != nil {
			p.logger.Warn("write email log failed", zap.String("invite_id", inv.ID.String()), zap.Error(err))
		}
	}
	if sendErr != nil {
		return fmt.Errorf("send invite email: %w", sendErr)
	}

	p.logger.Info("invite email sent", zap.String("invite_id", inv.ID.String()), zap.String("job_id", job.ID))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *InviteEmailProcessor) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			p.logger.Info("email worker stopping")
			return
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() == nil {
				p.logger.Warn("dequeue error", zap.Error(err))
				p.sleep(ctx)
			}
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *InviteEmailProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
