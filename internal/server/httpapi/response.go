// Package httpapi exposes the authentication service over HTTP: JSON
// routes under /api/users/, bearer and cookie token transport, CORS and
// request logging, served by a gin engine.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// SendSuccess writes a 200 envelope.
func SendSuccess(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SendError writes a failed envelope with statusCode and stops the
// handler chain.
func SendError(c *gin.Context, message string, statusCode int) {
	c.AbortWithStatusJSON(statusCode, Response{
		Success: false,
		Message: message,
	})
}
