/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every JSON response except page renders, which
// return the render document unwrapped.
type Response struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data,omitempty"`
}

type Meta struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Success writes a 200 envelope around data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Meta: Meta{Code: http.StatusOK, Message: "OK", RequestID: c.GetString(requestIDKey)},
		Data: data,
	})
}

// Error writes an error envelope and aborts the chain.
func Error(c *gin.Context, httpCode int, message string) {
	c.AbortWithStatusJSON(httpCode, Response{
		Meta: Meta{Code: httpCode, Message: message, RequestID: c.GetString(requestIDKey)},
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
