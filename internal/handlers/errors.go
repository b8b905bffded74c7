package handlers

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/ridewellhq/chauffeur-backend/internal/domain"
)

// RespondDomainError translates a service error into an HTTP response. Every
// handler funnels service failures through here so the status mapping stays
// in one place.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		c.JSON(400, gin.H{"error": err.Error()})
	case domain.IsUnauthorized(err):
		c.JSON(403, gin.H{"error": err.Error()})
	case domain.IsNotFound(err):
		c.JSON(404, gin.H{"error": err.Error()})
	case domain.IsConflict(err):
		c.JSON(409, gin.H{"error": err.Error()})
	case domain.IsState(err):
		c.JSON(422, gin.H{"error": err.Error()})
	case domain.IsProcessor(err):
		// The attempt is recorded; the client gets the gateway's reason.
		c.JSON(402, gin.H{"error": err.Error()})
	default:
		log.Printf("Internal error: %v", err)
		c.JSON(500, gin.H{"error": "Internal server error"})
	}
}
