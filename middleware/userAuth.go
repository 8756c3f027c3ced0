package middleware

import (
	"net/http"
	"strings"

	"toltimed/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": msg,
		"code":  0,
	})
}

// JWTAuthUserMiddleware authenticates the bearer token and stores the user ID
// under "userID". Tokens whose hash is present in the revocation list are
// rejected. A nil authCache skips the revocation check.
func JWTAuthUserMiddleware(authCache redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := zap.L()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			unauthorized(c, "Insufficient authorization")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			unauthorized(c, "Insufficient authorization")
			return
		}

		userID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil || userID == "" {
			unauthorized(c, "Insufficient authorization")
			return
		}

		if authCache != nil {
			key := utils.RevokedTokenPrefix + utils.HashToken(tokenString)
			n, err := authCache.Exists(c.Request.Context(), key).Result()
			switch {
			case err != nil:
				// Cache outage should not lock every user out.
				logger.Warn("auth cache lookup failed", zap.Error(err))
			case n > 0:
				unauthorized(c, "Token revoked")
				return
			}
		}

		c.Set("userID", userID)
		c.Next()
	}
}
