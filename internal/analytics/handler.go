package analytics

import (
	"context"
	"errors"
	"math"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hezo-be/webinar-backend/internal/models"
	"github.com/hezo-be/webinar-backend/internal/webinars"
	"github.com/hezo-be/webinar-backend/pkg/response"
)

// Counter loads aggregates for a webinar.
type Counter interface {
	CountByWebinar(ctx context.Context, webinarID uuid.UUID) (*Counts, error)
}

// WebinarGetter loads a webinar by id.
type WebinarGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Webinar, error)
}

// Handler handles GET /webinar-admin/webinars/:id/analytics.
type Handler struct {
	counts   Counter
	webinars WebinarGetter
	logger   *zap.Logger
}

// NewHandler creates an analytics handler.
func NewHandler(counts Counter, webinars WebinarGetter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{counts: counts, webinars: webinars, logger: logger}
}

// SummaryResponse is the JSON shape for the invite engagement summary.
type SummaryResponse struct {
	TotalInvites   int     `json:"total_invites"`
	ViewedInvites  int     `json:"viewed_invites"`
	TotalViews     int     `json:"total_views"`
	ExpiredInvites int     `json:"expired_invites"`
	EmailsSent     int     `json:"emails_sent"`
	EmailsFailed   int     `json:"emails_failed"`
	ViewRate       float64 `json:"view_rate"` // percent of invites opened at least once
}

// Summarize derives the response from raw counts.
func Summarize(c Counts) SummaryResponse {
	s := SummaryResponse{
		TotalInvites:   c.TotalInvites,
		ViewedInvites:  c.ViewedInvites,
		TotalViews:     c.TotalViews,
		ExpiredInvites: c.ExpiredInvites,
		EmailsSent:     c.EmailsSent,
		EmailsFailed:   c.EmailsFailed,
	}
	if c.TotalInvites > 0 {
		s.ViewRate = math.Round(float64(c.ViewedInvites)/float64(c.TotalInvites)*1000) / 10
	}
	return s
}

// GetByWebinar handles GET /webinar-admin/webinars/:id/analytics.
func (h *Handler) GetByWebinar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	ctx := c.Request.Context()

	if _, err := h.webinars.GetByID(ctx, id); err != nil {
		if errors.Is(err, webinars.ErrNotFound) {
			response.NotFound(c, "Webinar not found")
			return
		}
		h.logger.Error("load webinar for analytics", zap.Error(err))
		response.Internal(c, "Internal server error")
		return
	}

	counts, err := h.counts.CountByWebinar(ctx, id)
	if err != nil {
		h.logger.Error("count invites", zap.Error(err))
		response.Internal(c, "failed to load invite counts")
		return
	}
	response.OK(c, Summarize(*counts))
}
