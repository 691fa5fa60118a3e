package api

import (
	"database/sql"
	"strconv"
	"time"

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

// PostHandler serves the post CRUD and the publish workflow.
type PostHandler struct {
	app *App
}

// NewPostHandler creates the post handler.
func NewPostHandler(app *App) *PostHandler {
	return &PostHandler{app: app}
}

func postResource(post *dbinit.Post) authz.Resource {
	return authz.Resource{
		Kind:     authz.KindPost,
		Instance: &authz.Instance{ID: post.ID, OwnerID: post.UserID},
	}
}

func listParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListPublished is the public, unauthenticated feed. It does not go
// through the authorization engine: the engine denies guests by design,
// and the public read path is the documented bypass.
func (h *PostHandler) ListPublished(c *gin.Context) {
	limit, offset := listParams(c)
	posts, err := h.app.DB.DB.SQLite.ListPosts("published", "", c.Query("category_id"), limit, offset)
	if err != nil {
		logger.Error("failed to list posts", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	response.Success(c, posts)
}

// GetPublishedBySlug is the public post detail, published posts only.
func (h *PostHandler) GetPublishedBySlug(c *gin.Context) {
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

	tags, err := h.app.DB.DB.SQLite.ListPostTags(post.ID)
	if err != nil {
		logger.Error("failed to list post tags", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}

	response.Success(c, gin.H{"post": post, "tags": tags})
}

// List returns posts of any status for authenticated users. Read is
// allowed for every role, so no instance-level check is needed here.
func (h *PostHandler) List(c *gin.Context) {
	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionRead, authz.Resource{Kind: authz.KindPost}); err != nil {
		middleware.Deny(c, subject, authz.KindPost)
		return
	}

	limit, offset := listParams(c)
	posts, err := h.app.DB.DB.SQLite.ListPosts(c.Query("status"), c.Query("user_id"), c.Query("category_id"), limit, offset)
	if err != nil {
		logger.Error("failed to list posts", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	response.Success(c, posts)
}

// Get returns one post of any status.
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.app.DB.DB.SQLite.GetPost(c.Param("id"))
	if err != nil {
		logger.Error("failed to get post", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if post == nil {
		response.NotFound(c, "Post not found")
		return
	}

	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionRead, postResource(post)); err != nil {
		middleware.Deny(c, subject, authz.KindPost)
		return
	}

	response.Success(c, post)
}

// Actions returns the operations the caller may perform on a post, the
// derived read-model UIs use to render buttons.
func (h *PostHandler) Actions(c *gin.Context) {
	post, err := h.app.DB.DB.SQLite.GetPost(c.Param("id"))
	if err != nil {
		logger.Error("failed to get post", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if post == nil {
		response.NotFound(c, "Post not found")
		return
	}

	subject := middleware.CurrentSubject(c)
	actions := authz.AvailableActions(subject, authz.KindPost, &authz.Instance{ID: post.ID, OwnerID: post.UserID})
	response.Success(c, gin.H{"post_id": post.ID, "actions": actions})
}

// PostRequest is the create/update payload.
type PostRequest struct {
	Title      string   `json:"title" binding:"required,max=200"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt"`
	CategoryID string   `json:"category_id"`
	TagIDs     []string `json:"tag_ids"`
}

// Create inserts a draft post owned by the caller.
func (h *PostHandler) Create(c *gin.Context) {
	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionCreate, authz.Resource{Kind: authz.KindPost}); err != nil {
		middleware.Deny(c, subject, authz.KindPost)
		return
	}

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	postSlug, err := slug.Unique(slug.Make(req.Title), h.app.DB.DB.SQLite.SlugExists)
	if err != nil {
		logger.Error("failed to derive slug", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}

	post := &dbinit.Post{
		ID:         uuid.New().String(),
		Title:      req.Title,
		Slug:       postSlug,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		Status:     "draft",
		UserID:     subject.ID,
		CategoryID: req.CategoryID,
	}
	if err := h.app.DB.DB.SQLite.CreatePost(post); err != nil {
		logger.Error("failed to create post", zap.Error(err))
		response.InternalError(c, "Failed to create post")
		return
	}
	if len(req.TagIDs) > 0 {
		if err := h.app.DB.DB.SQLite.SetPostTags(post.ID, req.TagIDs); err != nil {
			logger.Error("failed to set post tags", zap.String("post_id", post.ID), zap.Error(err))
		}
	}

	h.app.Audit.Record("post.create", subject.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "post",
		ResourceID:   post.ID,
		Metadata:     map[string]interface{}{"title": post.Title, "slug": post.Slug},
	})

	response.Created(c, post)
}

// Update modifies a post the caller may edit.
func (h *PostHandler) Update(c *gin.Context) {
	post, err := h.app.DB.DB.SQLite.GetPost(c.Param("id"))
	if err != nil {
		logger.Error("failed to get post", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if post == nil {
		response.NotFound(c, "Post not found")
		return
	}

	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionUpdate, postResource(post)); err != nil {
		middleware.Deny(c, subject, authz.KindPost)
		return
	}

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	if req.Title != post.Title {
		newSlug, err := slug.Unique(slug.Make(req.Title), h.app.DB.DB.SQLite.SlugExists)
		if err != nil {
			logger.Error("failed to derive slug", zap.Error(err))
			response.InternalError(c, "Database error")
			return
		}
		post.Slug = newSlug
	}
	post.Title = req.Title
	post.Content = req.Content
	post.Excerpt = req.Excerpt
	post.CategoryID = req.CategoryID

	if err := h.app.DB.DB.SQLite.UpdatePost(post); err != nil {
		logger.Error("failed to update post", zap.Error(err))
		response.InternalError(c, "Failed to update post")
		return
	}
	if req.TagIDs != nil {
		if err := h.app.DB.DB.SQLite.SetPostTags(post.ID, req.TagIDs); err != nil {
			logger.Error("failed to set post tags", zap.String("post_id", post.ID), zap.Error(err))
		}
	}

	h.app.Audit.Record("post.update", subject.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "post",
		ResourceID:   post.ID,
	})

	response.Success(c, post)
}

// PublishRequest optionally schedules the post instead of publishing
// immediately.
type PublishRequest struct {
	PublishAt *time.Time `json:"publish_at"`
}

// Publish moves a post to published, or to scheduled when a future
// publish time is supplied. Publish is a domain action with no rule of
// its own, so the engine evaluates it as an update.
func (h *PostHandler) Publish(c *gin.Context) {
	post, err := h.app.DB.DB.SQLite.GetPost(c.Param("id"))
	if err != nil {
		logger.Error("failed to get post", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if post == nil {
		response.NotFound(c, "Post not found")
		return
	}

	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.Action("publish"), postResource(post)); err != nil {
		middleware.Deny(c, subject, authz.KindPost)
		return
	}

	var req PublishRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request: "+err.Error())
			return
		}
	}

	now := time.Now().UTC()
	if req.PublishAt != nil && req.PublishAt.After(now) {
		post.Status = "scheduled"
		post.PublishedAt = sql.NullTime{Time: req.PublishAt.UTC(), Valid: true}
	} else {
		post.Status = "published"
		post.PublishedAt = sql.NullTime{Time: now, Valid: true}
	}

	if err := h.app.DB.DB.SQLite.UpdatePost(post); err != nil {
		logger.Error("failed to publish post", zap.Error(err))
		response.InternalError(c, "Failed to publish post")
		return
	}

	h.app.Audit.Record("post.publish", subject.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "post",
		ResourceID:   post.ID,
		Metadata:     map[string]interface{}{"status": post.Status},
	})

	response.Success(c, post)
}

// Delete removes a post the caller may delete.
func (h *PostHandler) Delete(c *gin.Context) {
	post, err := h.app.DB.DB.SQLite.GetPost(c.Param("id"))
	if err != nil {
		logger.Error("failed to get post", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if post == nil {
		response.NotFound(c, "Post not found")
		return
	}

	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionDelete, postResource(post)); err != nil {
		middleware.Deny(c, subject, authz.KindPost)
		return
	}

	if err := h.app.DB.DB.SQLite.DeletePost(post.ID); err != nil {
		logger.Error("failed to delete post", zap.Error(err))
		response.InternalError(c, "Failed to delete post")
		return
	}

	h.app.Audit.Record("post.delete", subject.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "post",
		ResourceID:   post.ID,
		Metadata:     map[string]interface{}{"title": post.Title},
	})

	response.SuccessWithMessage(c, "Post deleted", nil)
}
