package middleware

import (
	"strings"
	"time"

	"inkwell/cms/db"
	dbinit "inkwell/cms/db/init"
	"inkwell/cms/internal/authz"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the token payload: identity plus role.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuth authenticates the request from a Bearer token. When Redis is
// available, parsed sessions are cached by token to skip re-parsing.
func JWTAuth(secret string, dbManager *db.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(401, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}
		tokenString := parts[1]

		if dbManager.HasCache() {
			session, err := dbManager.Cache.Redis.GetSession(tokenString)
			if err == nil && session != nil && time.Now().Before(session.ExpiresAt) {
				c.Set("user_id", session.UserID)
				c.Set("username", session.Username)
				c.Set("role", session.Role)
				c.Next()
				return
			}
		}

		token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(401, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*JWTClaims)
		if !ok {
			c.JSON(401, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)

		if dbManager.HasCache() {
			session := &dbinit.Session{
				Token:     tokenString,
				UserID:    claims.UserID,
				Username:  claims.Username,
				Role:      claims.Role,
				CreatedAt: time.Now(),
				ExpiresAt: claims.ExpiresAt.Time,
			}
			_ = dbManager.Cache.Redis.SetSession(tokenString, session, time.Until(claims.ExpiresAt.Time))
		}

		c.Next()
	}
}

// GenerateJWT signs a token for the given identity.
func GenerateJWT(userID, username, role, secret string, expirationHours int) (string, error) {
	claims := JWTClaims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// CurrentSubject resolves the authenticated principal from the request
// context, nil for guests. This is the single bridge between the HTTP
// layer and the authorization engine.
func CurrentSubject(c *gin.Context) *authz.Subject {
	userID, ok := c.Get("user_id")
	if !ok {
		return nil
	}
	role, ok := c.Get("role")
	if !ok {
		return nil
	}
	return &authz.Subject{
		ID:   userID.(string),
		Role: authz.Role(role.(string)),
	}
}
