/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/suparena/dashboard/errors"
	"github.com/suparena/dashboard/internal/logger"
	"github.com/suparena/dashboard/internal/metrics"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// RequestID propagates the caller's request id, or assigns one, and stores it in
// the request context for logging.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		ctx := logger.WithRequestID(c.Request.Context(), id)
		if name := c.Param("name"); name != "" {
			ctx = logger.WithPage(ctx, name)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Logger logs one entry per request.
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ctx := c.Request.Context()
		switch {
		case status >= 500:
			log.Errorf(ctx, "%s %s -> %d in %s", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
		case status >= 400:
			log.Warnf(ctx, "%s %s -> %d in %s", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
		default:
			log.Infof(ctx, "%s %s -> %d in %s", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
		}
	}
}

// Metrics counts requests per page.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if name := c.Param("name"); name != "" {
			m.ObserveRequest(name, c.Writer.Status())
		}
	}
}

// ErrorHandler maps errors attached with c.Error to responses: not found is 404,
// invalid input 400, and everything else, unsupported capabilities included, 500.
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		ctx := c.Request.Context()

		if c.Writer.Written() {
			// Streaming responses cannot change status once started.
			log.Errorf(ctx, "error after response started: %v", err)
			return
		}

		switch {
		case errors.IsNotFound(err):
			NotFound(c, err.Error())
		case errors.IsValidationError(err):
			BadRequest(c, err.Error())
		case errors.IsUnsupported(err):
			log.Errorf(ctx, "page configuration error: %v", err)
			InternalError(c, "configuration error: "+err.Error())
		default:
			log.Errorf(ctx, "request failed: %v", err)
			InternalError(c, "internal error")
		}
	}
}
