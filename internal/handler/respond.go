// Package handler contains the HTTP layer: gin handlers, middleware and the
// response envelope. Handlers bind and translate; business rules live in the
// service layer.
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/amarthakur0/go-api-template/internal/apperr"
)

// Envelope is the uniform response body. Every endpoint, success or failure,
// returns this shape.
type Envelope struct {
	Error     bool        `json:"error"`
	ErrorCode int         `json:"errorCode"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
}

// respondOK writes a success envelope.
func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{
		Error:     false,
		ErrorCode: apperr.CodeNone,
		Message:   message,
		Data:      data,
	})
}

// respondError writes a failure envelope and aborts the chain so no later
// middleware or handler runs.
func respondError(c *gin.Context, status int, code int, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Error:     true,
		ErrorCode: code,
		Message:   message,
		Data:      nil,
	})
}

// respondAppError translates a classified error into its envelope. The
// underlying cause, if any, never reaches the client.
func respondAppError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	if appErr.Err != nil {
		_ = c.Error(appErr.Err)
	}
	respondError(c, appErr.Kind.HTTPStatus(), appErr.Code, appErr.Message)
}
