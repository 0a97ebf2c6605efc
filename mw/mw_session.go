package mw

import (
	"net/http"

	"yolo-lab-api/constants"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var GIN_CONTEXT_SESSION_ID = "SessionID"

// WrapSessionID takes the workspace id from the path, falling back to the
// X-Session-ID header, and stores it in the gin context.
func WrapSessionID(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param(constants.ParamSessionID)
		if sessionID == "" {
			sessionID = c.GetHeader(constants.HeaderSessionID)
		}
		if sessionID == "" {
			logger.Debug("request without session id", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		c.Set(GIN_CONTEXT_SESSION_ID, sessionID)
		c.Next()
	}
}

func GetSessionIDFromGin(c *gin.Context) string {
	return c.GetString(GIN_CONTEXT_SESSION_ID)
}
