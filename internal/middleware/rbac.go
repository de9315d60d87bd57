package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/eduportal-api/internal/models"
	appErrors "github.com/noah-isme/eduportal-api/pkg/errors"
	"github.com/noah-isme/eduportal-api/pkg/response"
)

// RequireRoles allows the request only when the authenticated user holds one
// of the given roles. It must run after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		v, ok := c.Get(ContextUserKey)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := v.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
