// Package response defines the JSON envelope every handler replies with:
// {"success": true, "data": ...} on success, {"success": false, "error":
// {"code", "message"}} on failure. Error codes are machine-readable and
// stable; messages are for humans.
package response

import "github.com/gin-gonic/gin"

// Success writes the data envelope with the given status code.
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

// Error writes the error envelope.
func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// ErrorWithDetails is Error with a free-form details payload, used for
// field-level validation failures.
func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
