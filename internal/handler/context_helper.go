package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/eduportal-api/internal/middleware"
	"github.com/noah-isme/eduportal-api/internal/models"
)

// claimsFromContext reads the JWT claims set by the auth middleware.
// Handlers on public routes get nil.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	v, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*models.JWTClaims)
	return claims
}
