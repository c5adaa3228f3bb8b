package middlewares

import (
	"bytes"

	logger "condo-notify-api/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxLoggedBody caps how much of a response body lands in the log.
const maxLoggedBody = 2048

type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyLogWriter) Write(b []byte) (int, error) {
	if w.body.Len() < maxLoggedBody {
		w.body.Write(b[:min(len(b), maxLoggedBody-w.body.Len())])
	}
	return w.ResponseWriter.Write(b)
}

// GinBodyLogMiddleware captures response bodies of failed requests so they can
// be diagnosed from the server log without client cooperation.
func GinBodyLogMiddleware(loggerInstance *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		blw := &bodyLogWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = blw

		c.Next()

		if c.Writer.Status() >= 400 {
			loggerInstance.Warn("Request failed",
				zap.Int("status", c.Writer.Status()),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("responseBody", blw.body.String()))
		}
	}
}
