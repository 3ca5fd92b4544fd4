package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"peermarket/pkg/config"
	tokenstore "peermarket/pkg/token"
)

const (
	ContextUserIDKey   = "current_user_id"
	ContextUsernameKey = "current_username"
	ContextJTIKey      = "current_jti"
)

// ParseToken validates a signed token string and returns (userID, username,
// jti). Shared by the bearer middleware and the websocket handshake, which
// carries the token as a query parameter instead of a header.
func ParseToken(tokenStr string) (string, string, string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// only accept HMAC signing
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", "", "", jwt.ErrTokenUnverifiable
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", "", jwt.ErrTokenInvalidClaims
	}

	jti, _ := claims["jti"].(string)
	if tokenstore.IsRevoked(jti) {
		return "", "", "", jwt.ErrTokenExpired
	}

	var userID string
	if sub, ok := claims["sub"].(string); ok {
		userID = sub
	} else if subf, ok := claims["sub"].(float64); ok {
		// jwt lib may parse numeric as float64
		userID = strconv.Itoa(int(subf))
	}
	username, _ := claims["name"].(string)
	if userID == "" || username == "" {
		return "", "", "", jwt.ErrTokenInvalidClaims
	}
	return userID, username, jti, nil
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing authorization header"})
			return
		}
		parts := strings.Fields(auth)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid authorization header"})
			return
		}

		userID, username, jti, err := ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid token"})
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextUsernameKey, username)
		c.Set(ContextJTIKey, jti)
		c.Next()
	}
}

// CurrentUsername returns the authenticated username set by AuthMiddleware.
func CurrentUsername(c *gin.Context) string {
	v, _ := c.Get(ContextUsernameKey)
	s, _ := v.(string)
	return s
}
