package middleware

import (
	"strings"

	"fashionstudio/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware accepts a studio session token and stores its subject as "uid".
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, utils.NewError(utils.KindUnauthorized, "missing bearer token"))
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		uid, err := utils.ExtractIDFromToken(tokenString)
		if err != nil {
			utils.RespondError(c, utils.WrapError(utils.KindUnauthorized, err, ""))
			return
		}

		c.Set("uid", uid)
		c.Next()
	}
}
