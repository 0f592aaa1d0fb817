package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ethics-case-api/internal/middleware"
	"github.com/noah-isme/ethics-case-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorFromContext returns the caller identity, false when the route ran
// without authentication.
func actorFromContext(c *gin.Context) (models.Actor, bool) {
	claims := claimsFromContext(c)
	if claims == nil || claims.UserID == "" {
		return models.Actor{}, false
	}
	return models.ActorFromClaims(claims), true
}
