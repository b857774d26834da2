package middleware

import (
	"net/http"
	"strings"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

const (
	ctxUserID   = "userID"
	ctxUsername = "username"
)

// Auth validates the bearer token and stores the caller's identity in the
// gin context. Browsers cannot set headers on a websocket handshake, so the
// token may also arrive as the "token" query parameter.
func Auth(tokens *utils.TokenManager, authCache *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token format"})
				return
			}
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		var claims *utils.Claims
		if cached, found := authCache.Get(tokenString); found {
			claims = cached.(*utils.Claims)
		} else {
			var err error
			claims, err = tokens.Validate(tokenString)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
				return
			}
			if ttl := utils.AuthCacheTTL(claims); ttl > 0 {
				authCache.Set(tokenString, claims, ttl)
			}
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)
		c.Next()
	}
}

// UserID returns the authenticated caller, or 0 outside Auth.
func UserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

func Username(c *gin.Context) string {
	return c.GetString(ctxUsername)
}
