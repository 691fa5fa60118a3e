package api

import (
	dbinit "inkwell/cms/db/init"
	"inkwell/cms/internal/api/middleware"
	"inkwell/cms/internal/api/response"
	"inkwell/cms/internal/audit"
	"inkwell/cms/internal/authz"
	"inkwell/cms/pkg/logger"
	"inkwell/cms/pkg/slug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TagHandler serves the tag CRUD.
type TagHandler struct {
	app *App
}

// NewTagHandler creates the tag handler.
func NewTagHandler(app *App) *TagHandler {
	return &TagHandler{app: app}
}

// List is public.
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.app.DB.DB.SQLite.ListTags()
	if err != nil {
		logger.Error("failed to list tags", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	response.Success(c, tags)
}

// TagRequest is the create/update payload.
type TagRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// Create inserts a tag.
func (h *TagHandler) Create(c *gin.Context) {
	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionCreate, authz.Resource{Kind: authz.KindTag}); err != nil {
		middleware.Deny(c, subject, authz.KindTag)
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	tag := &dbinit.Tag{
		ID:   uuid.New().String(),
		Name: req.Name,
		Slug: slug.Make(req.Name),
	}
	if err := h.app.DB.DB.SQLite.CreateTag(tag); err != nil {
		logger.Error("failed to create tag", zap.Error(err))
		response.InternalError(c, "Failed to create tag")
		return
	}

	h.app.Audit.Record("tag.create", subject.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "tag",
		ResourceID:   tag.ID,
		Metadata:     map[string]interface{}{"name": tag.Name},
	})

	response.Created(c, tag)
}

// Update modifies a tag.
func (h *TagHandler) Update(c *gin.Context) {
	tag, err := h.app.DB.DB.SQLite.GetTag(c.Param("id"))
	if err != nil {
		logger.Error("failed to get tag", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if tag == nil {
		response.NotFound(c, "Tag not found")
		return
	}

	subject := middleware.CurrentSubject(c)
	res := authz.Resource{Kind: authz.KindTag, Instance: &authz.Instance{ID: tag.ID}}
	if err := authz.Authorize(subject, authz.ActionUpdate, res); err != nil {
		middleware.Deny(c, subject, authz.KindTag)
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	tag.Name = req.Name
	tag.Slug = slug.Make(req.Name)

	if err := h.app.DB.DB.SQLite.UpdateTag(tag); err != nil {
		logger.Error("failed to update tag", zap.Error(err))
		response.InternalError(c, "Failed to update tag")
		return
	}

	h.app.Audit.Record("tag.update", subject.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "tag",
		ResourceID:   tag.ID,
	})

	response.Success(c, tag)
}

// Delete removes a tag.
func (h *TagHandler) Delete(c *gin.Context) {
	tag, err := h.app.DB.DB.SQLite.GetTag(c.Param("id"))
	if err != nil {
		logger.Error("failed to get tag", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if tag == nil {
		response.NotFound(c, "Tag not found")
		return
	}

	subject := middleware.CurrentSubject(c)
	res := authz.Resource{Kind: authz.KindTag, Instance: &authz.Instance{ID: tag.ID}}
	if err := authz.Authorize(subject, authz.ActionDelete, res); err != nil {
		middleware.Deny(c, subject, authz.KindTag)
		return
	}

	if err := h.app.DB.DB.SQLite.DeleteTag(tag.ID); err != nil {
		logger.Error("failed to delete tag", zap.Error(err))
		response.InternalError(c, "Failed to delete tag")
		return
	}

	h.app.Audit.Record("tag.delete", subject.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "tag",
		ResourceID:   tag.ID,
		Metadata:     map[string]interface{}{"name": tag.Name},
	})

	response.SuccessWithMessage(c, "Tag deleted", nil)
}
