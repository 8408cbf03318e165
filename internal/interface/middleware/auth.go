package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/satriadika/go-auth-service/pkg/helpers"
	"github.com/satriadika/go-auth-service/pkg/response"
)

// Context keys set on successful authentication.
const (
	CtxUserIDKey   = "userID"
	CtxRoleKey     = "userRole"
	CtxDeviceIDKey = "deviceID"
)

// Auth validates the access token from the Authorization header or the
// access_token cookie. Validity is purely the JWT signature and expiry; the
// relational store is the single source of truth for refresh revocation, so
// no session cache is consulted here.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxRoleKey, claims.Role)
		c.Set(CtxDeviceIDKey, claims.DeviceID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
	}
	if t, err := c.Cookie("access_token"); err == nil {
		return t
	}
	return ""
}
