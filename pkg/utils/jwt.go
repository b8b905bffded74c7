package utils

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is what the API layer needs to rebuild an actor: who the
// principal is, its role, and the company it belongs to.
type TokenClaims struct {
	ID        uint
	Role      string
	CompanyID uint
	Email     string
}

func GenerateToken(claims TokenClaims) (string, error) {
	mapClaims := jwt.MapClaims{
		"id":        claims.ID,
		"role":      claims.Role,
		"companyId": claims.CompanyID,
		"email":     claims.Email,
		"exp":       time.Now().Add(time.Hour * 24 * 7).Unix(), // 7 days
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
}
