package webinars

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hezo-be/webinar-backend/internal/models"
	"github.com/hezo-be/webinar-backend/pkg/response"
	"github.com/hezo-be/webinar-backend/pkg/storage"
)

// Store is the webinar persistence the handler needs.
type Store interface {
	Create(ctx context.Context, w *models.Webinar) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Webinar, error)
	List(ctx context.Context) ([]models.Webinar, error)
	Update(ctx context.Context, id uuid.UUID, p models.WebinarPatch) (*models.Webinar, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ThumbnailUploader stores a thumbnail image and returns its public URL.
type ThumbnailUploader interface {
	UploadThumbnail(ctx context.Context, webinarID, filename string, body io.Reader, size int64) (string, error)
}

// CreateRequest is the body for POST /webinars.
type CreateRequest struct {
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	VideoURL     string  `json:"video_url"`
	ThumbnailURL *string `json:"thumbnail_url"`
	IsActive     *bool   `json:"is_active"`
}

// Handler handles webinar admin endpoints.
type Handler struct {
	repo       Store
	thumbnails ThumbnailUploader
	logger     *zap.Logger
}

// NewHandler creates a webinar handler. thumbnails may be nil when S3 is not configured.
func NewHandler(repo Store, thumbnails ThumbnailUploader, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, thumbnails: thumbnails, logger: logger}
}

// List handles GET /webinars.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list webinars failed", zap.Error(err))
		response.Internal(c, "Internal server error")
		return
	}
	response.OK(c, list)
}

// Create handles POST /webinars.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.VideoURL = strings.TrimSpace(req.VideoURL)
	if req.Title == "" || req.VideoURL == "" {
		response.BadRequest(c, "Title and video_url are required")
		return
	}
	if !validHTTPURL(req.VideoURL) {
		response.BadRequest(c, "video_url must be an http(s) URL")
		return
	}

	w := &models.Webinar{
		Title:        req.Title,
		Description:  req.Description,
		VideoURL:     req.VideoURL,
		ThumbnailURL: req.ThumbnailURL,
		IsActive:     true,
	}
	if req.IsActive != nil {
		w.IsActive = *req.IsActive
	}
	if err := h.repo.Create(c.Request.Context(), w); err != nil {
		h.logger.Error("create webinar failed", zap.Error(err))
		response.Internal(c, "Internal server error")
		return
	}
	h.logger.Info("webinar created", zap.String("webinar_id", w.ID.String()))
	response.Created(c, w)
}

// Update handles PUT /webinars/:id as a partial merge. Sending description or thumbnail_url as null clears it.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	var p models.WebinarPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			response.BadRequest(c, "title cannot be empty")
			return
		}
		p.Title = &title
	}
	if p.VideoURL != nil {
		videoURL := strings.TrimSpace(*p.VideoURL)
		if !validHTTPURL(videoURL) {
			response.BadRequest(c, "video_url must be an http(s) URL")
			return
		}
		p.VideoURL = &videoURL
	}

	w, err := h.repo.Update(c.Request.Context(), id, p)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "webinar not found")
		return
	}
	if err != nil {
		h.logger.Error("update webinar failed", zap.Error(err), zap.String("webinar_id", id.String()))
		response.Internal(c, "Internal server error")
		return
	}
	if p.IsActive != nil {
		h.logger.Info("webinar active flag changed", zap.String("webinar_id", id.String()), zap.Bool("is_active", w.IsActive))
	}
	response.OK(c, w)
}

// Delete handles DELETE /webinars/:id. Invites of the webinar are deleted with it.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	err = h.repo.Delete(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "webinar not found")
		return
	}
	if err != nil {
		h.logger.Error("delete webinar failed", zap.Error(err), zap.String("webinar_id", id.String()))
		response.Internal(c, "Internal server error")
		return
	}
	h.logger.Info("webinar deleted", zap.String("webinar_id", id.String()))
	response.Deleted(c)
}

// UploadThumbnail handles POST /webinars/:id/thumbnail (multipart field "file").
func (h *Handler) UploadThumbnail(c *gin.Context) {
	if h.thumbnails == nil {
		response.ServiceUnavailable(c, "thumbnail storage not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "webinar not found")
			return
		}
		h.logger.Error("load webinar failed", zap.Error(err), zap.String("webinar_id", id.String()))
		response.Internal(c, "Internal server error")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file (form field: file)")
		return
	}
	if file.Size > storage.MaxThumbnailSize {
		response.BadRequest(c, "file size exceeds 5MB limit")
		return
	}
	if storage.ThumbnailContentType(file.Filename) == "" {
		response.BadRequest(c, "invalid file type: only jpg, png and webp allowed")
		return
	}
	f, err := file.Open()
	if err != nil {
		response.BadRequest(c, "unreadable file")
		return
	}
	defer f.Close()

	url, err := h.thumbnails.UploadThumbnail(c.Request.Context(), id.String(), file.Filename, f, file.Size)
	if err != nil {
		h.logger.Error("thumbnail upload failed", zap.Error(err), zap.String("webinar_id", id.String()))
		response.Internal(c, "thumbnail upload failed")
		return
	}
	w, err := h.repo.Update(c.Request.Context(), id, models.WebinarPatch{ThumbnailURL: &url})
	if err != nil {
		h.logger.Error("save thumbnail url failed", zap.Error(err), zap.String("webinar_id", id.String()))
		response.Internal(c, "Internal server error")
		return
	}
	response.OK(c, w)
}

func validHTTPURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
