package middleware

import (
	"strings"

	"sajilo_backend/internal/auth"
	"sajilo_backend/internal/logger"
	"sajilo_backend/internal/models"
	"sajilo_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "userID"
	roleKey   = "role"
)

// AccessParser validates access tokens. Implemented by *auth.TokenManager.
type AccessParser interface {
	ParseAccess(token string) (*auth.Claims, error)
}

// AuthMiddleware requires a valid bearer access token: missing gives 401, invalid gives 403.
func AuthMiddleware(tokens AccessParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authenticate(c, tokens) {
			c.Next()
		}
	}
}

// AdminMiddleware is AuthMiddleware followed by RoleMiddleware(admin).
func AdminMiddleware(tokens AccessParser) gin.HandlerFunc {
	requireAdmin := RoleMiddleware(models.UserRoleAdmin)
	return func(c *gin.Context) {
		if authenticate(c, tokens) {
			requireAdmin(c)
		}
	}
}

func authenticate(c *gin.Context, tokens AccessParser) bool {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Access token missing"))
		return false
	}

	claims, err := tokens.ParseAccess(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "rejected access token", "error", err.Error())
		apperrors.HandleError(c, apperrors.NewForbiddenError("Invalid or expired access token"))
		return false
	}

	c.Set(userIDKey, claims.UserID)
	c.Set(roleKey, models.UserRole(claims.Role))
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
	return true
}

// RoleMiddleware must run after AuthMiddleware.
func RoleMiddleware(required models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(roleKey)
		if r, ok := role.(models.UserRole); !ok || r != required {
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied: insufficient permissions"))
			return
		}
		c.Next()
	}
}

// SelfMiddleware rejects tokens whose subject differs from the :id path parameter.
func SelfMiddleware(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) != c.Param(param) {
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied"))
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated subject, or "".
func GetUserID(c *gin.Context) string {
	id, _ := c.Get(userIDKey)
	s, _ := id.(string)
	return s
}
