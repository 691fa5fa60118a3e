package api

import (
	dbinit "inkwell/cms/db/init"
	"inkwell/cms/internal/api/middleware"
	"inkwell/cms/internal/api/response"
	"inkwell/cms/internal/audit"
	"inkwell/cms/internal/authz"
	"inkwell/cms/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MediaHandler serves media metadata. The bytes themselves live in
// external storage; this API only tracks what was uploaded where.
type MediaHandler struct {
	app *App
}

// NewMediaHandler creates the media handler.
func NewMediaHandler(app *App) *MediaHandler {
	return &MediaHandler{app: app}
}

func mediaResource(media *dbinit.Media) authz.Resource {
	return authz.Resource{
		Kind:     authz.KindMedia,
		Instance: &authz.Instance{ID: media.ID, OwnerID: media.UserID},
	}
}

// List returns media records, filterable by owner.
func (h *MediaHandler) List(c *gin.Context) {
	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionRead, authz.Resource{Kind: authz.KindMedia}); err != nil {
		middleware.Deny(c, subject, authz.KindMedia)
		return
	}

	limit, offset := listParams(c)
	records, err := h.app.DB.DB.SQLite.ListMedia(c.Query("user_id"), limit, offset)
	if err != nil {
		logger.Error("failed to list media", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	response.Success(c, records)
}

// MediaRequest is the create/update payload.
type MediaRequest struct {
	Filename string `json:"filename" binding:"required,max=255"`
	Path     string `json:"path" binding:"required,max=1024"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// Create records an uploaded file, owned by the caller.
func (h *MediaHandler) Create(c *gin.Context) {
	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionCreate, authz.Resource{Kind: authz.KindMedia}); err != nil {
		middleware.Deny(c, subject, authz.KindMedia)
		return
	}

	var req MediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	media := &dbinit.Media{
		ID:       uuid.New().String(),
		Filename: req.Filename,
		Path:     req.Path,
		MimeType: req.MimeType,
		Size:     req.Size,
		UserID:   subject.ID,
	}
	if err := h.app.DB.DB.SQLite.CreateMedia(media); err != nil {
		logger.Error("failed to create media", zap.Error(err))
		response.InternalError(c, "Failed to create media")
		return
	}

	h.app.Audit.Record("media.create", subject.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "media",
		ResourceID:   media.ID,
		Metadata:     map[string]interface{}{"filename": media.Filename},
	})

	response.Created(c, media)
}

// Update modifies a media record the caller may edit.
func (h *MediaHandler) Update(c *gin.Context) {
	media, err := h.app.DB.DB.SQLite.GetMedia(c.Param("id"))
	if err != nil {
		logger.Error("failed to get media", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if media == nil {
		response.NotFound(c, "Media not found")
		return
	}

	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionUpdate, mediaResource(media)); err != nil {
		middleware.Deny(c, subject, authz.KindMedia)
		return
	}

	var req MediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	media.Filename = req.Filename
	media.Path = req.Path
	media.MimeType = req.MimeType
	media.Size = req.Size

	if err := h.app.DB.DB.SQLite.UpdateMedia(media); err != nil {
		logger.Error("failed to update media", zap.Error(err))
		response.InternalError(c, "Failed to update media")
		return
	}

	h.app.Audit.Record("media.update", subject.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "media",
		ResourceID:   media.ID,
	})

	response.Success(c, media)
}

// Delete removes a media record the caller may delete.
func (h *MediaHandler) Delete(c *gin.Context) {
	media, err := h.app.DB.DB.SQLite.GetMedia(c.Param("id"))
	if err != nil {
		logger.Error("failed to get media", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if media == nil {
		response.NotFound(c, "Media not found")
		return
	}

	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionDelete, mediaResource(media)); err != nil {
		middleware.Deny(c, subject, authz.KindMedia)
		return
	}

	if err := h.app.DB.DB.SQLite.DeleteMedia(media.ID); err != nil {
		logger.Error("failed to delete media", zap.Error(err))
		response.InternalError(c, "Failed to delete media")
		return
	}

	h.app.Audit.Record("media.delete", subject.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "media",
		ResourceID:   media.ID,
		Metadata:     map[string]interface{}{"filename": media.Filename},
	})

	response.SuccessWithMessage(c, "Media deleted", nil)
}
