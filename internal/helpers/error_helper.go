package helpers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arintala/wanderplan/internal/validation"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func HTTPStatusText(code int) string {
	return http.StatusText(code)
}

func RespondWithError(c *gin.Context, statusCode int, customMessage string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   HTTPStatusText(statusCode),
		Message: customMessage,
	})
}

// RespondWithValidationErrors reports accumulated field-keyed messages as a 400.
func RespondWithValidationErrors(c *gin.Context, errs validation.Errors) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
}
