package middlewares

import (
	"net/http"
	"strings"

	"SMARTATTEND/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

func parseToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found || tokenString == "" {
		return "", false
	}

	claims := &config.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return config.JWT_KEY, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}
	return claims.Email, true
}

// RequireAuth rejects the request unless a valid bearer token is present.
// The user's email ends up in the context as "currentUser".
func RequireAuth(c *gin.Context) {
	email, ok := parseToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing token"})
		return
	}
	c.Set("currentUser", email)
	c.Next()
}

// OptionalAuth sets "currentUser" when a valid token is present but lets
// anonymous requests through (dashboard widgets shown pre-login).
func OptionalAuth(c *gin.Context) {
	if email, ok := parseToken(c); ok {
		c.Set("currentUser", email)
	}
	c.Next()
}
