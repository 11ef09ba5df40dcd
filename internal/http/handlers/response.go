// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response utilities shared by all endpoints. Service
// results travel as domain.Messenger envelopes whose code is used verbatim
// as the HTTP status. Failures that never reach a service (malformed path
// parameters, unreadable bodies, unknown routes) use ErrorResponse instead.
//
// Example envelope:
//
//	HTTP/1.1 404 Not Found
//	{ "code": 404, "message": "diary emotion not found" }
//
// Example transport error:
//
//	HTTP/1.1 400 Bad Request
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "bad_request",
//	  "message": "diary id must be a positive integer"
//	}
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/diary-emotion-backend/internal/domain"
	"github.com/tbourn/diary-emotion-backend/internal/http/middleware"
)

// ErrorResponse is the transport-level error body.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"bad_request"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"invalid JSON body"`
}

// fail aborts the request with an ErrorResponse. 5xx are logged with the
// request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail, used by the router for NoRoute and
// NoMethod.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// respond writes a service envelope, using its code as the HTTP status.
func respond(c *gin.Context, m domain.Messenger) {
	status := m.Code
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
	}
	middleware.ObserveEnvelope(c, m.Code)
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("message", m.Message).
			Msg("service error")
	}
	c.JSON(status, m)
}

// pathID parses a numeric path parameter. Zero and negative values are
// passed through so the service can reject them with its own envelope.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" must be an integer")
		return 0, false
	}
	return id, true
}
