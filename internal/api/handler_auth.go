package api

import (
	"fmt"
	"time"

	dbinit "inkwell/cms/db/init"
	"inkwell/cms/internal/api/middleware"
	"inkwell/cms/internal/api/response"
	"inkwell/cms/internal/audit"
	"inkwell/cms/internal/authz"
	"inkwell/cms/internal/metrics"
	"inkwell/cms/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler serves register, login and logout.
type AuthHandler struct {
	app *App
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(app *App) *AuthHandler {
	return &AuthHandler{app: app}
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// Register creates a subscriber account. Higher roles are only ever
// granted by an admin or editor through the user endpoints.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	existing, err := h.app.DB.DB.SQLite.GetUserByUsername(req.Username)
	if err != nil {
		logger.Error("failed to look up username", zap.String("username", req.Username), zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	if existing != nil {
		response.Conflict(c, "Username already taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		response.InternalError(c, "Failed to hash password")
		return
	}

	user := &dbinit.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: string(hash),
		Email:        req.Email,
		Role:         string(authz.RoleSubscriber),
		Enabled:      true,
	}
	if err := h.app.DB.DB.SQLite.CreateUser(user); err != nil {
		logger.Error("failed to create user", zap.Error(err))
		response.InternalError(c, "Failed to create user")
		return
	}

	h.app.Audit.Record("auth.register", user.ID, audit.Options{
		IPAddress:    c.ClientIP(),
		ResourceType: "user",
		ResourceID:   user.ID,
	})

	response.Created(c, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the login reply.
type LoginResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	ExpiresAt int64  `json:"expires_at"`
}

// Login authenticates credentials and issues a JWT. Attempts are
// throttled per client IP and per username; the response for a
// throttled request never reveals which key tripped.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	ipKey := fmt.Sprintf("login:ip:%s", c.ClientIP())
	userKey := fmt.Sprintf("login:user:%s", req.Username)
	maxAttempts := h.app.Config.RateLimit.MaxAttempts
	window := time.Duration(h.app.Config.RateLimit.WindowSeconds) * time.Second

	if h.app.Limiter.Check(ipKey, maxAttempts, window) || h.app.Limiter.Check(userKey, maxAttempts, window) {
		metrics.LoginThrottled.Inc()
		h.app.Audit.Record("auth.login_throttled", "", audit.Options{
			IPAddress: c.ClientIP(),
			Metadata:  map[string]interface{}{"username": req.Username},
		})
		response.TooManyRequests(c, "Too many attempts, try again later")
		return
	}

	user, err := h.app.DB.DB.SQLite.GetUserByUsername(req.Username)
	if err != nil {
		logger.Error("failed to look up user", zap.String("username", req.Username), zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}

	if user == nil || !user.Enabled ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		h.app.Limiter.RecordAttempt(ipKey)
		h.app.Limiter.RecordAttempt(userKey)
		metrics.LoginFailures.Inc()
		h.app.Audit.Record("auth.login_failed", "", audit.Options{
			IPAddress: c.ClientIP(),
			Metadata:  map[string]interface{}{"username": req.Username},
		})
		response.Unauthorized(c, "Invalid username or password")
		return
	}

	h.app.Limiter.RecordSuccess(ipKey)
	h.app.Limiter.RecordSuccess(userKey)

	token, err := middleware.GenerateJWT(
		user.ID, user.Username, user.Role,
		h.app.Config.Auth.JWTSecret, h.app.Config.Auth.JWTExpiration,
	)
	if err != nil {
		response.InternalError(c, "Failed to generate token")
		return
	}

	_ = h.app.DB.DB.SQLite.UpdateUserLastLogin(user.ID)

	h.app.Audit.Record("auth.login", user.ID, audit.Options{IPAddress: c.ClientIP()})

	expiresAt := time.Now().Add(time.Duration(h.app.Config.Auth.JWTExpiration) * time.Hour)
	response.Success(c, LoginResponse{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: expiresAt.Unix(),
	})
}

// Logout drops the cached session when Redis is present. Tokens
// themselves stay valid until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	if h.app.DB.HasCache() {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			_ = h.app.DB.Cache.Redis.DeleteSession(authHeader[7:])
		}
	}

	if subject := middleware.CurrentSubject(c); subject != nil {
		h.app.Audit.Record("auth.logout", subject.ID, audit.Options{IPAddress: c.ClientIP()})
	}

	response.SuccessWithMessage(c, "Logged out successfully", nil)
}
