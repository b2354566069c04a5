package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/leave-dashboard-api/pkg/middleware/requestid"
)

// Audit logs who performed action once the request has succeeded.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}
		fields := []zap.Field{
			zap.String("action", action),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("request_id", requestid.Value(c)),
		}
		if session, ok := CurrentSession(c); ok {
			fields = append(fields, zap.String("user_id", session.UserID), zap.Bool("admin", session.IsAdmin))
		}
		logger.Info("audit", fields...)
	}
}
