package emaillogs

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hezo-be/webinar-backend/internal/invites"
	"github.com/hezo-be/webinar-backend/internal/models"
	"github.com/hezo-be/webinar-backend/pkg/queue"
	"github.com/hezo-be/webinar-backend/pkg/response"
)

// Lister reads email logs.
type Lister interface {
	ListByWebinar(ctx context.Context, webinarID uuid.UUID) ([]*models.EmailLog, error)
}

// InviteGetter loads an invite by id.
type InviteGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invite, error)
}

// Enqueuer queues invite emails for the worker.
type Enqueuer interface {
	EnqueueInviteEmail(ctx context.Context, payload queue.InviteEmailPayload) (string, error)
}

// Handler handles email log HTTP endpoints.
type Handler struct {
	logs    Lister
	invites InviteGetter
	queue   Enqueuer
	logger  *zap.Logger
}

// NewHandler creates an email logs handler. A nil queue disables resends.
func NewHandler(logs Lister, invites InviteGetter, q Enqueuer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{logs: logs, invites: invites, queue: q, logger: logger}
}

// ListByWebinar handles GET /webinar-admin/webinars/:id/emails.
func (h *Handler) ListByWebinar(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	logs, err := h.logs.ListByWebinar(c.Request.Context(), webinarID)
	if err != nil {
		h.logger.Error("list email logs", zap.Error(err))
		response.Internal(c, "failed to load email logs")
		return
	}
	response.OK(c, logs)
}

// Resend handles POST /webinar-admin/invites/:id/resend. The worker sends the email.
func (h *Handler) Resend(c *gin.Context) {
	if h.queue == nil {
		response.ServiceUnavailable(c, "email queue is not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid invite id")
		return
	}
	inv, err := h.invites.GetByID(c.Request.Context(), id)
	if errors.Is(err, invites.ErrNotFound) {
		response.NotFound(c, "Invite not found")
		return
	}
	if err != nil {
		h.logger.Error("load invite for resend", zap.Error(err))
		response.Internal(c, "failed to load invite")
		return
	}
	if inv.Email == nil || *inv.Email == "" {
		response.BadRequest(c, "Invite has no email address")
		return
	}
	jobID, err := h.queue.EnqueueInviteEmail(c.Request.Context(), queue.InviteEmailPayload{InviteID: inv.ID})
	if err != nil {
		h.logger.Error("enqueue invite email", zap.Error(err))
		response.Internal(c, "failed to queue email")
		return
	}
	response.OK(c, gin.H{"message": "resend queued", "job_id": jobID})
}
