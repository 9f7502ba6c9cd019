package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bedrock-kb-api/internal/pkg/errors"
)

// ErrorResponse is the body returned for every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// OK writes the payload as-is with a 200 status. Endpoint payloads are
// returned at the top level, not wrapped in an envelope.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error writes an error body with the given status
func Error(c *gin.Context, httpStatus int, detail string) {
	c.JSON(httpStatus, ErrorResponse{Detail: detail})
}

// BadRequest 400 error
func BadRequest(c *gin.Context, detail string) {
	Error(c, http.StatusBadRequest, detail)
}

// NotFound 404 error
func NotFound(c *gin.Context, detail string) {
	Error(c, http.StatusNotFound, detail)
}

// InternalError 500 error
func InternalError(c *gin.Context, detail string) {
	Error(c, http.StatusInternalServerError, detail)
}

// ServiceUnavailable 503 error
func ServiceUnavailable(c *gin.Context, detail string) {
	Error(c, http.StatusServiceUnavailable, detail)
}

// AppError writes an error response for a typed application error. Plain
// errors fall back to a 500 with their message surfaced.
func AppError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		Error(c, appErr.HTTPStatus(), appErr.Detail())
		return
	}
	InternalError(c, err.Error())
}
