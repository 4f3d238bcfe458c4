package response

import (
	"atelier/internal/pkg/apperr"

	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// Fail writes err through the apperr translation table and aborts the chain.
// Internal causes are attached to the context for the ErrorLogger and never
// reach the client.
func Fail(c *gin.Context, err error) {
	appErr := apperr.From(err)
	if appErr.Kind == apperr.KindInternal || appErr.Cause != nil {
		_ = c.Error(err)
	}
	Error(c, apperr.StatusOf(appErr.Kind), string(appErr.Kind), appErr.Message)
	c.Abort()
}
