package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/ridewellhq/chauffeur-backend/internal/middleware"
	"github.com/ridewellhq/chauffeur-backend/internal/services"
)

// WebSocketHandler upgrades a staff session into a dispatch-board stream.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.GetActor(c)
		if !actor.IsStaff() {
			c.JSON(403, gin.H{"error": "Staff access required"})
			return
		}

		services.HandleWebSocket(hub, c.Writer, c.Request, actor.UserID, actor.CompanyID)
	}
}
