package middleware

import (
	"inkwell/cms/internal/api/response"
	"inkwell/cms/internal/authz"
	"inkwell/cms/internal/metrics"

	"github.com/gin-gonic/gin"
)

// RequireRole admits subjects holding at least the given role. Route
// groups use this as a coarse gate; handlers still call the engine with
// the loaded resource for the fine-grained decision.
func RequireRole(required authz.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := CurrentSubject(c)
		if !authz.HasRole(subject, required) {
			Deny(c, subject, "")
			return
		}
		c.Next()
	}
}

// AdminAuth is the admin-only gate.
func AdminAuth() gin.HandlerFunc {
	return RequireRole(authz.RoleAdmin)
}

// Deny aborts the request with a 403 and counts the denial.
func Deny(c *gin.Context, subject *authz.Subject, kind authz.Kind) {
	role := "guest"
	if subject != nil {
		role = string(subject.Role)
	}
	metrics.AuthzDenials.WithLabelValues(role, string(kind)).Inc()
	response.Forbidden(c, "Insufficient permissions")
	c.Abort()
}
