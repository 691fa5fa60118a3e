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

// CategoryHandler serves the category CRUD.
type CategoryHandler struct {
	app *App
}

// NewCategoryHandler creates the category handler.
func NewCategoryHandler(app *App) *CategoryHandler {
	return &CategoryHandler{app: app}
}

func categoryResource(category *dbinit.Category) authz.Resource {
	// Categories have no owner; ownership rules never apply to them.
	return authz.Resource{
		Kind:     authz.KindCategory,
		Instance: &authz.Instance{ID: category.ID},
	}
}

// List is public: the category tree is part of the site's navigation.
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.app.DB.DB.SQLite.ListCategories()
	if err != nil {
		logger.Error("failed to list categories", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	response.Success(c, categories)
}

// CategoryRequest is the create/update payload.
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

// Create inserts a category.
func (h *CategoryHandler) Create(c *gin.Context) {
	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionCreate, authz.Resource{Kind: authz.KindCategory}); err != nil {
		middleware.Deny(c, subject, authz.KindCategory)
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	category := &dbinit.Category{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
	}
	if err := h.app.DB.DB.SQLite.CreateCategory(category); err != nil {
		logger.Error("failed to create category", zap.Error(err))
		response.InternalError(c, "Failed to create category")
		return
	}

	h.app.Audit.Record("category.create", subject.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "category",
		ResourceID:   category.ID,
		Metadata:     map[string]interface{}{"name": category.Name},
	})

	response.Created(c, category)
}

// Update modifies a category.
func (h *CategoryHandler) Update(c *gin.Context) {
	category, err := h.app.DB.DB.SQLite.GetCategory(c.Param("id"))
	if err != nil {
		logger.Error("failed to get category", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if category == nil {
		response.NotFound(c, "Category not found")
		return
	}

	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionUpdate, categoryResource(category)); err != nil {
		middleware.Deny(c, subject, authz.KindCategory)
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	category.Name = req.Name
	category.Slug = slug.Make(req.Name)
	category.Description = req.Description

	if err := h.app.DB.DB.SQLite.UpdateCategory(category); err != nil {
		logger.Error("failed to update category", zap.Error(err))
		response.InternalError(c, "Failed to update category")
		return
	}

	h.app.Audit.Record("category.update", subject.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "category",
		ResourceID:   category.ID,
	})

	response.Success(c, category)
}

// Delete removes a category.
func (h *CategoryHandler) Delete(c *gin.Context) {
	category, err := h.app.DB.DB.SQLite.GetCategory(c.Param("id"))
	if err != nil {
		logger.Error("failed to get category", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if category == nil {
		response.NotFound(c, "Category not found")
		return
	}

	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionDelete, categoryResource(category)); err != nil {
		middleware.Deny(c, subject, authz.KindCategory)
		return
	}

	if err := h.app.DB.DB.SQLite.DeleteCategory(category.ID); err != nil {
		logger.Error("failed to delete category", zap.Error(err))
		response.InternalError(c, "Failed to delete category")
		return
	}

	h.app.Audit.Record("category.delete", subject.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "category",
		ResourceID:   category.ID,
		Metadata:     map[string]interface{}{"name": category.Name},
	})

	response.SuccessWithMessage(c, "Category deleted", nil)
}
