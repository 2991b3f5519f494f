package response

import (
	"net/http"

	"tierraalta/internal/pkg/apperror"
	"tierraalta/internal/pkg/validator"

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

// BindError answers a request that failed to bind. Field errors are listed
// under details; anything else, such as malformed JSON, gets a generic message.
func BindError(c *gin.Context, err error) {
	if fields := validator.Fields(err); len(fields) > 0 {
		ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.Describe(fields), fields)
		return
	}
	Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
}

// FromError writes the envelope for a classified error. Conflicts are reported
// as 400 with their own code so clients can tell them from malformed input.
// Internal errors are attached to the context for the logger and answered with
// a generic message.
func FromError(c *gin.Context, err error) {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		Error(c, http.StatusBadRequest, "VALIDATION_ERROR", apperror.Message(err))
	case apperror.KindConflict:
		Error(c, http.StatusBadRequest, "CONFLICT", apperror.Message(err))
	case apperror.KindNotFound:
		Error(c, http.StatusNotFound, "NOT_FOUND", apperror.Message(err))
	case apperror.KindForbidden:
		Error(c, http.StatusForbidden, "FORBIDDEN", apperror.Message(err))
	case apperror.KindUnauthorized:
		Error(c, http.StatusUnauthorized, "UNAUTHORIZED", apperror.Message(err))
	default:
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", apperror.Message(err))
	}
}
