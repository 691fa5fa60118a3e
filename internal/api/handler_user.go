package api

import (
	dbinit "inkwell/cms/db/init"
	"inkwell/cms/internal/api/middleware"
	"inkwell/cms/internal/api/response"
	"inkwell/cms/internal/audit"
	"inkwell/cms/internal/authz"
	"inkwell/cms/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler serves account management. Per-target decisions go
// through the engine: editors reach author and subscriber accounts,
// admins reach everyone.
type UserHandler struct {
	app *App
}

// NewUserHandler creates the user handler.
func NewUserHandler(app *App) *UserHandler {
	return &UserHandler{app: app}
}

func userResource(user *dbinit.User) authz.Resource {
	return authz.Resource{
		Kind: authz.KindUser,
		Instance: &authz.Instance{
			ID:      user.ID,
			OwnerID: user.ID,
			Role:    authz.Role(user.Role),
		},
	}
}

// userView strips the password hash from API output.
func userView(user *dbinit.User) gin.H {
	return gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"role":          user.Role,
		"enabled":       user.Enabled,
		"last_login_at": user.LastLoginAt.Time,
		"created_at":    user.CreatedAt,
	}
}

// GetProfile returns the caller's own account.
func (h *UserHandler) GetProfile(c *gin.Context) {
	subject := middleware.CurrentSubject(c)
	user, err := h.app.DB.DB.SQLite.GetUser(subject.ID)
	if err != nil {
		logger.Error("failed to get user", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if user == nil {
		response.NotFound(c, "User not found")
		return
	}
	response.Success(c, userView(user))
}

// PasswordRequest is the self-service password change payload.
type PasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// UpdatePassword changes the caller's own password.
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	subject := middleware.CurrentSubject(c)

	var req PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	user, err := h.app.DB.DB.SQLite.GetUser(subject.ID)
	if err != nil || user == nil {
		response.InternalError(c, "Database error")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
		response.Unauthorized(c, "Current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		response.InternalError(c, "Failed to hash password")
		return
	}
	if err := h.app.DB.DB.SQLite.UpdateUserPassword(user.ID, string(hash)); err != nil {
		logger.Error("failed to update password", zap.Error(err))
		response.InternalError(c, "Failed to update password")
		return
	}

	h.app.Audit.Record("user.password_change", subject.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "user",
		ResourceID:   user.ID,
	})

	response.SuccessWithMessage(c, "Password updated", nil)
}

// List returns accounts. Editors see the authors and subscribers they
// can manage; admins see everyone.
func (h *UserHandler) List(c *gin.Context) {
	subject := middleware.CurrentSubject(c)
	limit, offset := listParams(c)
	users, err := h.app.DB.DB.SQLite.ListUsers(c.Query("role"), limit, offset)
	if err != nil {
		logger.Error("failed to list users", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}

	views := []gin.H{}
	for _, user := range users {
		if authz.Can(subject, authz.ActionRead, userResource(user)) {
			views = append(views, userView(user))
		}
	}
	response.Success(c, views)
}

// Get returns one account the caller may read.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.app.DB.DB.SQLite.GetUser(c.Param("id"))
	if err != nil {
		logger.Error("failed to get user", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if user == nil {
		response.NotFound(c, "User not found")
		return
	}

	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionRead, userResource(user)); err != nil {
		middleware.Deny(c, subject, authz.KindUser)
		return
	}

	response.Success(c, userView(user))
}

// UserUpdateRequest is the account management payload.
type UserUpdateRequest struct {
	Email   string `json:"email" binding:"omitempty,email"`
	Role    string `json:"role" binding:"omitempty,oneof=admin editor author subscriber"`
	Enabled *bool  `json:"enabled"`
}

// Update modifies an account the caller may manage. Role changes are
// double-gated: the engine decides reachability of the target, and a
// non-admin can never assign a role at or above their own target reach.
func (h *UserHandler) Update(c *gin.Context) {
	user, err := h.app.DB.DB.SQLite.GetUser(c.Param("id"))
	if err != nil {
		logger.Error("failed to get user", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if user == nil {
		response.NotFound(c, "User not found")
		return
	}

	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionUpdate, userResource(user)); err != nil {
		middleware.Deny(c, subject, authz.KindUser)
		return
	}

	var req UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	oldRole := user.Role
	if req.Role != "" && req.Role != user.Role {
		// Editors can only hand out the roles they can already manage.
		if !authz.HasRole(subject, authz.RoleAdmin) &&
			authz.Rank(authz.Role(req.Role)) >= authz.Rank(authz.RoleEditor) {
			middleware.Deny(c, subject, authz.KindUser)
			return
		}
		user.Role = req.Role
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Enabled != nil {
		user.Enabled = *req.Enabled
	}

	if err := h.app.DB.DB.SQLite.UpdateUser(user); err != nil {
		logger.Error("failed to update user", zap.Error(err))
		response.InternalError(c, "Failed to update user")
		return
	}

	opts := audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "user",
		ResourceID:   user.ID,
	}
	if user.Role != oldRole {
		opts.Metadata = map[string]interface{}{"old_role": oldRole, "new_role": user.Role}
		h.app.Audit.Record("user.role_change", subject.ID, opts)
	} else {
		h.app.Audit.Record("user.update", subject.ID, opts)
	}

	response.Success(c, userView(user))
}

// Delete removes an account the caller may manage.
func (h *UserHandler) Delete(c *gin.Context) {
	user, err := h.app.DB.DB.SQLite.GetUser(c.Param("id"))
	if err != nil {
		logger.Error("failed to get user", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if user == nil {
		response.NotFound(c, "User not found")
		return
	}

	subject := middleware.CurrentSubject(c)
	if err := authz.Authorize(subject, authz.ActionDelete, userResource(user)); err != nil {
		middleware.Deny(c, subject, authz.KindUser)
		return
	}

	if subject.ID == user.ID {
		response.BadRequest(c, "Cannot delete your own account")
		return
	}

	if err := h.app.DB.DB.SQLite.DeleteUser(user.ID); err != nil {
		logger.Error("failed to delete user", zap.Error(err))
		response.InternalError(c, "Failed to delete user")
		return
	}

	h.app.Audit.Record("user.delete", subject.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "user",
		ResourceID:   user.ID,
		Metadata:     map[string]interface{}{"username": user.Username},
	})

	response.SuccessWithMessage(c, "User deleted", nil)
}
