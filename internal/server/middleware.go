package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/plotwise/garden/internal/config"
)

const healthPath = "/healthz"

// httpsRedirect sends plain-http requests seen by the TLS-terminating proxy to
// their https URL. It is a no-op unless running in production with
// force_https set.
func httpsRedirect(cfg config.ServerConfig) gin.HandlerFunc {
	header := cfg.TrustedProxyHeader
	enabled := cfg.Production() && cfg.ForceHTTPS && header != ""
	return func(c *gin.Context) {
		if !enabled || c.Request.URL.Path == healthPath {
			c.Next()
			return
		}
		if !strings.EqualFold(strings.TrimSpace(c.GetHeader(header)), "http") {
			c.Next()
			return
		}
		c.Redirect(http.StatusMovedPermanently, "https://"+c.Request.Host+c.Request.URL.RequestURI())
		c.Abort()
	}
}

func requestLogger(logger *zap.Logger, metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.observeRequest(c.Request.Method, route, status)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}
