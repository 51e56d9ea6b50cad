package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/cleberrangel/orcamento-sst-api/internal/logger"
	"github.com/cleberrangel/orcamento-sst-api/internal/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware registra contagem e latência das requisições
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start).Milliseconds()
		statusCode := c.Writer.Status()
		metrics.Get().IncrementRequests(statusCode < 400, latency)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metrics.Get().TrackEndpoint(path, c.Request.Method, statusCode, latency)
	}
}

// AuditMiddleware audita as operações que alteram estado
func AuditMiddleware() gin.HandlerFunc {
	prefixos := []string{
		"/admin/",
		"/orcamentos/gerar",
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		if c.Request.Method != http.MethodPost {
			return
		}
		for _, p := range prefixos {
			if strings.HasPrefix(path, p) {
				logger.AuditRequest(
					c.Request.Context(),
					c.Request.Method,
					path,
					c.Writer.Status(),
					time.Since(start).Milliseconds(),
					c.ClientIP(),
				)
				return
			}
		}
	}
}
