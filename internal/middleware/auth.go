package middleware

import (
	"net/http"
	"strings"

	"tierraalta/internal/domain"
	"tierraalta/internal/pkg/jwt"
	"tierraalta/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// JWTAuth requires a valid bearer token and stores the principal in the
// context under "user_id" and "role".
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		principal := claims.Principal()
		if !principal.Role.Valid() {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Unknown role in token")
			c.Abort()
			return
		}

		SetPrincipal(c, principal)
		c.Next()
	}
}

// SetPrincipal stores the authenticated caller in the context.
func SetPrincipal(c *gin.Context, p domain.Principal) {
	c.Set(ctxUserID, p.ID)
	c.Set(ctxRole, string(p.Role))
}

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	id := c.GetInt64(ctxUserID)
	if id == 0 {
		return domain.Principal{}, false
	}
	return domain.Principal{ID: id, Role: domain.UserRole(c.GetString(ctxRole))}, true
}
