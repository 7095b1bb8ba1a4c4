package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery はハンドラのパニックを回復し、エンベロープ形式の500を返すGinミドルウェアを返す。
// ログにはリクエストIDと認証済みユーザーのIDを含め、クライアント側のログと突き合わせられるようにする。
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			fields := []zap.Field{
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", r),
				zap.Stack("stack"),
			}
			if id := c.GetHeader("X-Request-ID"); id != "" {
				fields = append(fields, zap.String("request_id", id))
			}
			if userID := GetUserID(c); userID != 0 {
				fields = append(fields, zap.Int64("user_id", userID))
			}
			logger.Error("パニックから回復", fields...)
			Fail(c, http.StatusInternalServerError, "Internal server error")
		}()
		c.Next()
	}
}
