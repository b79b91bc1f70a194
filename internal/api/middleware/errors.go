package middleware

import (
	"errors"
	"net/http"

	"pc-inventory/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusByKind = map[services.Kind]int{
	services.KindUnauthenticated: http.StatusUnauthorized,
	services.KindForbidden:       http.StatusForbidden,
	services.KindNotFound:        http.StatusNotFound,
	services.KindValidation:      http.StatusBadRequest,
	services.KindConflict:        http.StatusConflict,
	services.KindNotifierFailure: http.StatusBadGateway,
	services.KindInternal:        http.StatusInternalServerError,
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	return statusByKind[services.KindOf(err)]
}

func errorBody(err error) gin.H {
	kind := services.KindOf(err)
	message := err.Error()
	if kind == services.KindInternal {
		message = "internal server error"
	}
	return gin.H{"error": message, "kind": kind}
}

// RespondError writes err as {"error", "kind"} and records it on the context
// for the request logger.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(StatusFor(err), errorBody(err))
}

// AbortWithError is RespondError for middleware.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(StatusFor(err), errorBody(err))
}

// ErrorHandler turns panics into internal error responses.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		AbortWithError(c, errors.New("panic"))
	})
}
