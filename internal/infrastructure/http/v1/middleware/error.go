package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mobilebill/internal/core/apperror"
	"mobilebill/pkg/logger"
)

// ErrorHandler renders the last error attached with c.Error as JSON.
//
// Not found is {"error":"Not found"}; internal errors are
// {"error":"Internal Server Error","details":<message>}; other AppErrors use
// their message as "error".
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		ctx := c.Request.Context()

		appErr, ok := apperror.AsAppError(err)
		if !ok {
			appErr = apperror.NewInternal(err)
		}

		switch appErr.HTTPStatus {
		case http.StatusNotFound:
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not found",
				"code":    appErr.Code,
				"details": appErr.Details,
			})
		case http.StatusInternalServerError:
			message := appErr.Message
			if appErr.Err != nil {
				message = appErr.Err.Error()
			}
			logger.Error(ctx, "request failed",
				"code", appErr.Code,
				"error", message,
				"path", c.FullPath())
			body := gin.H{
				"error":   "Internal Server Error",
				"code":    appErr.Code,
				"details": message,
			}
			if len(appErr.Details) > 0 {
				body["context"] = appErr.Details
			}
			c.JSON(http.StatusInternalServerError, body)
		default:
			if appErr.Err != nil {
				logger.Warn(ctx, "request rejected", "code", appErr.Code, "cause", appErr.Err)
			}
			c.JSON(appErr.HTTPStatus, gin.H{
				"error":   appErr.Message,
				"code":    appErr.Code,
				"details": appErr.Details,
			})
		}
	}
}
