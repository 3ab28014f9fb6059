package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/ssehub/errors"
	"github.com/kbukum/ssehub/logger"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondWithError writes err as the standard error envelope. AppErrors keep
// their status; anything else becomes a 500 and is logged.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("Request failed", map[string]interface{}{
			"path":            c.Request.URL.Path,
			logger.FieldError: err.Error(),
		})
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondAccepted sends a 202 response wrapping data.
func RespondAccepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, DataResponse{Data: data})
}

// NotFound answers unknown routes with a NOT_FOUND error body.
func NotFound(c *gin.Context) {
	RespondWithError(c, apperrors.NotFound("route"))
}
