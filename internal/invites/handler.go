package invites

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hezo-be/webinar-backend/internal/models"
	"github.com/hezo-be/webinar-backend/internal/recipients"
	"github.com/hezo-be/webinar-backend/internal/webinars"
	"github.com/hezo-be/webinar-backend/pkg/response"
)

// CreateRequest is the body for POST /invites. Its shape selects the operation:
// recipients present means a batch, count > 1 means anonymous invites, anything else a single invite.
type CreateRequest struct {
	WebinarID  string              `json:"webinar_id"`
	Recipients *[]models.Recipient `json:"recipients"`
	Count      int                 `json:"count"`
	Email      *string             `json:"email"`
	Name       *string             `json:"name"`
	ExpiresAt  *string             `json:"expires_at"`
	SendEmail  bool                `json:"send_email"`
}

// SingleResponse is the reply for a single invite.
type SingleResponse struct {
	models.Invite
	Link       string  `json:"link"`
	EmailSent  *bool   `json:"email_sent,omitempty"`
	EmailError *string `json:"email_error,omitempty"`
}

// ParseRequest is the JSON body for POST /recipients/parse.
type ParseRequest struct {
	Text string `json:"text"`
}

// Handler handles invite admin endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an invite handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// List handles GET /invites?webinar_id=.
func (h *Handler) List(c *gin.Context) {
	var webinarID *uuid.UUID
	if raw := c.Query("webinar_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid webinar_id")
			return
		}
		webinarID = &id
	}
	items, err := h.svc.List(c.Request.Context(), webinarID)
	if err != nil {
		h.logger.Error("list invites failed", zap.Error(err))
		response.Internal(c, "Internal server error")
		return
	}
	response.OK(c, items)
}

// Create handles POST /invites.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	webinarID, err := uuid.Parse(strings.TrimSpace(req.WebinarID))
	if err != nil {
		response.BadRequest(c, "webinar_id is required")
		return
	}
	expiresAt, err := parseExpiry(req.ExpiresAt)
	if err != nil {
		response.BadRequest(c, "expires_at must be an RFC3339 timestamp")
		return
	}
	ctx := c.Request.Context()

	switch {
	case req.Recipients != nil:
		res, err := h.svc.Create(ctx, webinarID, *req.Recipients, expiresAt, req.SendEmail)
		if err != nil {
			h.fail(c, err)
			return
		}
		response.Created(c, res)

	case req.Count > 1:
		list, err := h.svc.CreateAnonymous(ctx, webinarID, req.Count, expiresAt)
		if err != nil {
			h.fail(c, err)
			return
		}
		response.Created(c, list)

	case req.Count < 0:
		response.BadRequest(c, "count must be positive")

	default:
		rc := models.Recipient{Name: req.Name, Email: req.Email}
		res, err := h.svc.Create(ctx, webinarID, []models.Recipient{rc}, expiresAt, req.SendEmail)
		if err != nil {
			h.fail(c, err)
			return
		}
		inv := res.Invites[0]
		out := SingleResponse{Invite: inv, Link: h.svc.Link(inv.Token)}
		if req.SendEmail && inv.Email != nil {
			sent := res.EmailsSent == 1
			out.EmailSent = &sent
			if !sent && len(res.EmailErrors) > 0 {
				out.EmailError = &res.EmailErrors[0].Error
			}
		}
		response.Created(c, out)
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNoRecipients):
		response.BadRequest(c, "No recipients provided")
	case errors.Is(err, ErrTooMany):
		response.BadRequest(c, "At most 1000 invites per request")
	case errors.Is(err, webinars.ErrNotFound):
		response.NotFound(c, "Webinar not found")
	default:
		h.logger.Error("create invites failed", zap.Error(err))
		response.Internal(c, "Internal server error")
	}
}

// Delete handles DELETE /invites/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid invite id")
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "Invite not found")
			return
		}
		h.logger.Error("delete invite failed", zap.Error(err))
		response.Internal(c, "Internal server error")
		return
	}
	response.Deleted(c)
}

// ParseRecipients handles POST /recipients/parse. It accepts JSON {text} or a multipart "file"
// and returns a preview without creating anything. ?dedupe=true drops repeated emails.
func (h *Handler) ParseRecipients(c *gin.Context) {
	var list []models.Recipient
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("file")
		if err != nil {
			response.BadRequest(c, "file is required")
			return
		}
		if file.Size > recipients.MaxFileSize {
			response.Fail(c, http.StatusRequestEntityTooLarge, "", "File too large")
			return
		}
		f, err := file.Open()
		if err != nil {
			response.BadRequest(c, "cannot read file")
			return
		}
		defer f.Close()
		list, err = recipients.ParseReader(f)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	} else {
		var req ParseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
		list = recipients.Parse(req.Text)
	}
	if dedupe, _ := strconv.ParseBool(c.Query("dedupe")); dedupe {
		list = recipients.Dedupe(list)
	}
	if list == nil {
		list = []models.Recipient{}
	}
	response.OK(c, gin.H{"recipients": list, "count": len(list)})
}

func parseExpiry(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(*raw))
	if err != nil {
		return nil, err
	}
	return &t, nil
}
