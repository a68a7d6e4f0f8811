package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/honda-dealer/services"
	"github.com/yeremiapane/honda-dealer/utils"
)

const (
	sessionKey = "session"
	tokenKey   = "token"
)

// AuthMiddleware validates the bearer token and stores the caller's Session on the context.
// Browsers cannot set headers on websocket upgrades, so ?token= is accepted too.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString)
		if err != nil || claims == nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
			c.Abort()
			return
		}

		if claims.UserID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid user ID in token"))
			c.Abort()
			return
		}

		c.Set(sessionKey, services.Session{
			UserID: claims.UserID,
			Name:   claims.Name,
			Email:  claims.Email,
			Phone:  claims.Phone,
			Role:   claims.Role,
		})
		c.Set(tokenKey, tokenString)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("token")
}

// SessionFrom returns the session set by AuthMiddleware, or the zero Session.
func SessionFrom(c *gin.Context) services.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(services.Session); ok {
			return s
		}
	}
	return services.Session{}
}

// TokenFrom returns the raw token of the request.
func TokenFrom(c *gin.Context) string {
	return c.GetString(tokenKey)
}
