package handlers

import (
	"fashionstudio/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves the request-scoped Zap logger from the Gin context or falls back to the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// currentUID returns the uid set by the auth middleware.
func currentUID(c *gin.Context) (string, bool) {
	uid := c.GetString("uid")
	if uid == "" {
		utils.RespondError(c, utils.NewError(utils.KindUnauthorized, ""))
		return "", false
	}
	return uid, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		getLogger(c).Debug("Invalid request body", zap.Error(err))
		utils.RespondError(c, utils.WrapError(utils.KindInvalidInput, err, "request body is missing required fields"))
		return false
	}
	return true
}
