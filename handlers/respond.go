// Package handlers exposes the HTTP surface: request binding, session
// resolution and response shaping. Business rules live in the service layer.
package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"quickpoll-backend/apperrors"
)

// respondOK writes the success envelope with the given payload.
func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError maps a service error onto the error envelope. Taxonomy
// errors keep their status, code and message; anything else becomes a 500
// with the detail logged server-side only.
func respondError(c *gin.Context, err error) {
	if appErr, ok := apperrors.As(err); ok {
		c.JSON(appErr.Status, gin.H{
			"success": false,
			"error":   appErr.Message,
			"code":    appErr.Code,
		})
		return
	}

	log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "Internal server error",
		"code":    apperrors.CodeInternal,
	})
}

// respondBadRequest is for binding failures before the service is reached.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   message,
		"code":    apperrors.CodeInvalidArgument,
	})
}
