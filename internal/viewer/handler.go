package viewer

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hezo-be/webinar-backend/pkg/response"
)

// ResolveRequest is the body for POST /webinar-view.
type ResolveRequest struct {
	Token string `json:"token"`
}

// Handler serves the public viewer endpoint.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a viewer handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Get handles GET /webinar-view/:token.
func (h *Handler) Get(c *gin.Context) {
	h.resolve(c, c.Param("token"))
}

// Post handles POST /webinar-view with {token}.
func (h *Handler) Post(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeInvalidToken, "Invalid token format")
		return
	}
	h.resolve(c, req.Token)
}

func (h *Handler) resolve(c *gin.Context, token string) {
	w, err := h.svc.Resolve(c.Request.Context(), token)
	switch {
	case err == nil:
		response.OK(c, gin.H{"webinar": w})
	case errors.Is(err, ErrInvalidToken):
		response.Fail(c, http.StatusBadRequest, response.CodeInvalidToken, "Invalid token format")
	case errors.Is(err, ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.CodeNotFound, "Invalid or expired link")
	case errors.Is(err, ErrExpired):
		response.Fail(c, http.StatusGone, response.CodeExpired, "This link has expired")
	case errors.Is(err, ErrUnavailable):
		response.Fail(c, http.StatusNotFound, response.CodeWebinarUnavailable, "Webinar not available")
	default:
		h.logger.Error("resolve invite failed", zap.Error(err))
		response.Fail(c, http.StatusInternalServerError, response.CodeInternal, "Internal server error")
	}
}
