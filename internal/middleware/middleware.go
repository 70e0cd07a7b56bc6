// Package middleware holds the gin middleware the core's thin HTTP
// wiring needs: request-context establishment, request logging, and
// CORS. Auth and rate limiting are the surrounding HTTP layer's
// concern, not this module's.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/slotwise/scheduling-core/internal/apikey"
	"github.com/slotwise/scheduling-core/internal/reqctx"
	"github.com/slotwise/scheduling-core/pkg/logger"
)

// RequestContext establishes the per-request context
// before any handler runs, so every core call on this request's
// goroutine — and every continuation it schedules before returning —
// observes the same RequestContext. Auth middleware registered after
// this one (out of this module's scope) is expected to call
// reqctx.From(c.Request.Context()) and populate SetUser/SetOrganization/
// SetAPIKey once it resolves identity.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)

		rc := reqctx.New(requestID, c.ClientIP(), c.Request.UserAgent())
		_ = reqctx.Run(c.Request.Context(), rc, func(ctx context.Context) error {
			c.Request = c.Request.WithContext(ctx)
			c.Set("requestContext", rc)
			c.Next()
			return nil
		})
	}
}

// APIKeyContext stamps the request's RequestContext with the identity
// behind an X-API-Key header, when present and valid, so downstream
// audit entries and booking.source reflect the calling API key instead
// of an anonymous WEB actor. It never rejects a request: a missing or
// invalid key just leaves the request unstamped, since key-based
// authorization is a concern for the surrounding gateway, not this
// module.
func APIKeyContext(mgr *apikey.Manager, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		plaintext := c.GetHeader("X-API-Key")
		if plaintext == "" {
			c.Next()
			return
		}

		rc, ok := reqctx.From(c.Request.Context())
		if !ok {
			c.Next()
			return
		}

		record, err := mgr.Verify(c.Request.Context(), plaintext)
		if err != nil {
			log.Warn("api key verification failed", "error", err)
			c.Next()
			return
		}

		rc.SetAPIKey(record.ID)
		rc.SetOrganization(record.OrganizationID)
		c.Next()
	}
}

// Logger logs one structured line per request, using pkg/logger instead
// of a raw slog.Logger.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		fields := []any{
			"method", method,
			"path", path,
			"status", status,
			"durationMs", duration.Milliseconds(),
			"clientIp", c.ClientIP(),
		}
		if requestID := c.Writer.Header().Get("X-Request-ID"); requestID != "" {
			fields = append(fields, "requestId", requestID)
		}
		switch {
		case status >= 500:
			log.Error("request completed with server error", fields...)
		case status >= 400:
			log.Warn("request completed with client error", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}

// corsAllowedMethods and corsAllowedHeaders list what this API surface
// exposes.
var (
	corsAllowedMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}, ", ")
	corsAllowedHeaders = strings.Join([]string{
		"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-API-Key",
	}, ", ")
)

// CORS is a permissive-origin CORS middleware suitable for the core's
// own exercised routes; a production deployment fronting this module
// with its own gateway may replace it entirely.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
		}
		c.Header("Access-Control-Allow-Methods", corsAllowedMethods)
		c.Header("Access-Control-Allow-Headers", corsAllowedHeaders)
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
