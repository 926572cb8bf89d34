package web

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const msgInternalError = "Something went wrong, please try again later."

// HandleErrors はハンドラーが c.Error で積んだエラーをログに出し、
// まだ何も書き込まれていなければ 500 のエラービューを返すミドルウェアです。
func HandleErrors(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		for _, ginErr := range c.Errors {
			logger.ErrorContext(c.Request.Context(), "request failed",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", ginErr.Err,
			)
		}
		if c.Writer.Written() {
			return
		}
		c.HTML(http.StatusInternalServerError, ErrorView, gin.H{
			"errorMessage": msgInternalError,
		})
	}
}
