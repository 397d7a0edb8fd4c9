package auth

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hezo-be/webinar-backend/pkg/response"
)

// SessionRequest is the body for POST /webinar-admin/session.
type SessionRequest struct {
	Password string `json:"password" binding:"required"`
}

// Handler exchanges the admin secret for a session token.
type Handler struct {
	secret   *Secret
	sessions *SessionService
	logger   *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(secret *Secret, sessions *SessionService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{secret: secret, sessions: sessions, logger: logger}
}

// CreateSession handles POST /webinar-admin/session.
func (h *Handler) CreateSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || !h.secret.Verify(req.Password) {
		h.logger.Warn("admin session rejected", zap.String("client_ip", c.ClientIP()))
		response.Unauthorized(c, "Unauthorized")
		return
	}
	token, expiresAt, err := h.sessions.Generate()
	if err != nil {
		h.logger.Error("generate admin session failed", zap.Error(err))
		response.ServiceUnavailable(c, "admin sessions are not configured")
		return
	}
	response.Created(c, gin.H{"token": token, "expires_at": expiresAt})
}
