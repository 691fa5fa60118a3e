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

// CommentHandler serves reader comments.
type CommentHandler struct {
	app *App
}

// NewCommentHandler creates the comment handler.
func NewCommentHandler(app *App) *CommentHandler {
	return &CommentHandler{app: app}
}

func commentResource(comment *dbinit.Comment) authz.Resource {
	return authz.Resource{
		Kind:     authz.KindComment,
		Instance: &authz.Instance{ID: comment.ID, OwnerID: comment.UserID},
	}
}

// ListForPost is public and returns only visible comments on a
// published post, addressed by slug like the post itself.
func (h *CommentHandler) ListForPost(c *gin.Context) {
	post, err := h.app.DB.DB.SQLite.GetPostBySlug(c.Param("slug"))
	if err != nil {
		logger.Error("failed to get post", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if post == nil || post.Status != "published" {
		response.NotFound(c, "Post not found")
		return
	}

	limit, offset := listParams(c)
	comments, err := h.app.DB.DB.SQLite.ListComments(post.ID, "visible", limit, offset)
	if err != nil {
		logger.Error("failed to list comments", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	response.Success(c, comments)
}

// List is the moderation view: comments of any status including
// hidden ones, so it needs at least editor.
func (h *CommentHandler) List(c *gin.Context) {
	subject := middleware.CurrentSubject(c)
	if !authz.HasRole(subject, authz.RoleEditor) {
		middleware.Deny(c, subject, authz.KindComment)
		return
	}

	limit, offset := listParams(c)
	comments, err := h.app.DB.DB.SQLite.ListComments(c.Query("post_id"), c.Query("status"), limit, offset)
	if err != nil {
		logger.Error("failed to list comments", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	response.Success(c, comments)
}

// CommentRequest is the create payload.
type CommentRequest struct {
	PostID string `json:"post_id" binding:"required"`
	Body   string `json:"body" binding:"required,max=4000"`
}

// Create inserts a comment on a published post, owned by the caller.
func (h *CommentHandler) Create(c *gin.Context) {
	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionCreate, authz.Resource{Kind: authz.KindComment}); err != nil {
		middleware.Deny(c, subject, authz.KindComment)
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	post, err := h.app.DB.DB.SQLite.GetPost(req.PostID)
	if err != nil {
		logger.Error("failed to get post", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if post == nil || post.Status != "published" {
		response.NotFound(c, "Post not found")
		return
	}

	comment := &dbinit.Comment{
		ID:     uuid.New().String(),
		PostID: post.ID,
		UserID: subject.ID,
		Body:   req.Body,
		Status: "visible",
	}
	if err := h.app.DB.DB.SQLite.CreateComment(comment); err != nil {
		logger.Error("failed to create comment", zap.Error(err))
		response.InternalError(c, "Failed to create comment")
		return
	}

	h.app.Audit.Record("comment.create", subject.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "comment",
		ResourceID:   comment.ID,
		Metadata:     map[string]interface{}{"post_id": post.ID},
	})

	response.Created(c, comment)
}

// UpdateRequest is the update payload. Status changes are how editors
// hide a comment without deleting it.
type CommentUpdateRequest struct {
	Body   string `json:"body" binding:"required,max=4000"`
	Status string `json:"status" binding:"omitempty,oneof=visible hidden"`
}

// Update modifies a comment the caller may edit.
func (h *CommentHandler) Update(c *gin.Context) {
	comment, err := h.app.DB.DB.SQLite.GetComment(c.Param("id"))
	if err != nil {
		logger.Error("failed to get comment", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if comment == nil {
		response.NotFound(c, "Comment not found")
		return
	}

	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionUpdate, commentResource(comment)); err != nil {
		middleware.Deny(c, subject, authz.KindComment)
		return
	}

	var req CommentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	comment.Body = req.Body
	if req.Status != "" {
		comment.Status = req.Status
	}

	if err := h.app.DB.DB.SQLite.UpdateComment(comment); err != nil {
		logger.Error("failed to update comment", zap.Error(err))
		response.InternalError(c, "Failed to update comment")
		return
	}

	h.app.Audit.Record("comment.update", subject.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "comment",
		ResourceID:   comment.ID,
	})

	response.Success(c, comment)
}

// Delete removes a comment the caller may delete.
func (h *CommentHandler) Delete(c *gin.Context) {
	comment, err := h.app.DB.DB.SQLite.GetComment(c.Param("id"))
	if err != nil {
		logger.Error("failed to get comment", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if comment == nil {
		response.NotFound(c, "Comment not found")
		return
	}

	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionDelete, commentResource(comment)); err != nil {
		middleware.Deny(c, subject, authz.KindComment)
		return
	}

	if err := h.app.DB.DB.SQLite.DeleteComment(comment.ID); err != nil {
		logger.Error("failed to delete comment", zap.Error(err))
		response.InternalError(c, "Failed to delete comment")
		return
	}

	h.app.Audit.Record("comment.delete", subject.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "comment",
		ResourceID:   comment.ID,
		Metadata:     map[string]interface{}{"post_id": comment.PostID},
	})

	response.SuccessWithMessage(c, "Comment deleted", nil)
}
