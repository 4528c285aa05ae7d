package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/silverbackhw/portal-sync/internal/models"
	"github.com/silverbackhw/portal-sync/internal/repository"
)

const userKey = "user"

// RequireAdmin authenticates the platform-issued HS256 token and admits admins only
func RequireAdmin(secret string, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		email, err := emailFromToken(strings.TrimPrefix(authHeader, "Bearer "), secret)
		if err != nil {
			log.Printf("[auth] Rejected token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		user, err := users.GetByEmail(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user", "details": err.Error()})
			return
		}

		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: Admin access required"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func emailFromToken(tokenString string, secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("no signing secret configured")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid claims type")
	}

	email, _ := claims["email"].(string)
	if strings.TrimSpace(email) == "" {
		return "", fmt.Errorf("missing email claim")
	}
	return email, nil
}

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
