package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ridewellhq/chauffeur-backend/internal/domain"
	"github.com/ridewellhq/chauffeur-backend/pkg/utils"
)

// actorFromToken rebuilds the request actor from validated claims.
func actorFromToken(claims jwt.MapClaims) (domain.Actor, bool) {
	id, ok := claims["id"].(float64)
	if !ok {
		return domain.Actor{}, false
	}
	role, ok := claims["role"].(string)
	if !ok {
		return domain.Actor{}, false
	}
	companyID, _ := claims["companyId"].(float64)

	actor := domain.Actor{
		Role:      domain.Role(role),
		CompanyID: uint(companyID),
	}
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleDispatcher:
		actor.UserID = uint(id)
	case domain.RoleCustomer:
		actor.CustomerID = uint(id)
	default:
		return domain.Actor{}, false
	}
	return actor, true
}

func extractToken(c *gin.Context) string {
	// First try to get token from Authorization header
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	// If not found in header, try query parameter (for WebSocket)
	return c.Query("token")
}

func resolveActor(c *gin.Context, tokenString string) (domain.Actor, bool) {
	token, err := utils.ValidateToken(tokenString)
	if err != nil || !token.Valid {
		return domain.Actor{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Actor{}, false
	}
	return actorFromToken(claims)
}

// AuthMiddleware requires a valid token and stores the resulting actor on the
// context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.JSON(401, gin.H{"error": "Authorization header or token query parameter required"})
			c.Abort()
			return
		}

		actor, ok := resolveActor(c, tokenString)
		if !ok {
			c.JSON(401, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("actor", actor)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves an actor when a token is present but lets
// anonymous requests through as guests. Guest-reachable endpoints (booking
// create, guest booking access) do their own access-token checks.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString != "" {
			if actor, ok := resolveActor(c, tokenString); ok {
				c.Set("actor", actor)
				c.Next()
				return
			}
			c.JSON(401, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("actor", domain.Actor{
			Role:        domain.RoleGuest,
			AccessToken: c.Query("access_token"),
		})
		c.Next()
	}
}

// StaffOnly rejects actors that are not company staff. Must run after
// AuthMiddleware.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if !actor.IsStaff() {
			c.JSON(403, gin.H{"error": "Staff access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetActor returns the actor stored by the auth middlewares, or a bare guest
// when none was set.
func GetActor(c *gin.Context) domain.Actor {
	if v, exists := c.Get("actor"); exists {
		if actor, ok := v.(domain.Actor); ok {
			return actor
		}
	}
	return domain.Actor{Role: domain.RoleGuest, AccessToken: c.Query("access_token")}
}
