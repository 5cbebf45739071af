package middleware

import (
	"errors"
	"net/http"

	"go-ideadaily-backend/internal/delivery/http/response"
	"go-ideadaily-backend/pkg/apperror"
	"go-ideadaily-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler maps errors appended to the context onto the standard
// response shape. Validation and auth failures reach the client with their
// message so forms can render inline; anything else is logged server-side
// and replaced with a generic message.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Kind == apperror.KindInternal {
				logger.Log.Error("internal error", "error", appErr.Err)
			}
			response.Error(c, appErr.Code, appErr.Message, string(appErr.Kind))
			return
		}

		logger.Log.Error("unhandled error", "error", err)
		response.Error(c, http.StatusInternalServerError,
			"An unexpected error occurred. Please try again later.", nil)
	}
}
