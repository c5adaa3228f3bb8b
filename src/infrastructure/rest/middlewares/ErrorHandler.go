package middlewares

import (
	"errors"
	"net/http"

	domainErrors "condo-notify-api/src/domain/errors"

	"github.com/gin-gonic/gin"
)

// ErrorHandler maps AppError kinds attached to the gin context to HTTP
// status codes. Controllers push errors with ctx.Error and return.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		var appErr *domainErrors.AppError
		if !errors.As(err, &appErr) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		switch appErr.Type {
		case domainErrors.NotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": appErr.Error()})
		case domainErrors.ValidationError:
			c.JSON(http.StatusBadRequest, gin.H{"error": appErr.Error()})
		case domainErrors.NotAuthenticated:
			c.JSON(http.StatusUnauthorized, gin.H{"error": appErr.Error()})
		case domainErrors.NotAuthorized:
			c.JSON(http.StatusForbidden, gin.H{"error": appErr.Error()})
		case domainErrors.UnprocessableError:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": appErr.Error()})
		case domainErrors.ConflictError:
			c.JSON(http.StatusConflict, gin.H{"error": appErr.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": appErr.Error()})
		}
	}
}
