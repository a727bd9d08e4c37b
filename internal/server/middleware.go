package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader = "X-Request-ID"
	loggerCtxKey    = "logger"
)

// requestLogger tags each request with an id and a child logger, then logs
// the outcome once the handler chain has finished.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		log := s.logger.With().
			Str("request_id", requestID).
			Logger()
		c.Set(loggerCtxKey, log)

		start := time.Now()
		c.Next()

		event := log.Info()
		switch status := c.Writer.Status(); {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("handled request")
	}
}

func requestLogger(c *gin.Context, fallback zerolog.Logger) *zerolog.Logger {
	if v, ok := c.Get(loggerCtxKey); ok {
		if log, ok := v.(zerolog.Logger); ok {
			return &log
		}
	}
	return &fallback
}
