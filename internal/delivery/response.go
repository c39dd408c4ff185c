package delivery

import (
	"errors"
	"net/http"

	"catalog_service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const internalErrorDetail = "Internal server error"

// ErrorBody is the shape of every error response. Detail is a string, or a
// list of field errors for validation failures.
type ErrorBody struct {
	Detail interface{} `json:"detail"`
}

func SuccessResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

func ErrorResponse(c *gin.Context, statusCode int, detail interface{}) {
	c.AbortWithStatusJSON(statusCode, ErrorBody{Detail: detail})
}

// respondError translates domain errors to status codes. Anything it does not
// recognize is logged and reported as a bare 500.
func respondError(c *gin.Context, logger logrus.FieldLogger, err error, notFoundDetail string) {
	var (
		verr *domain.ValidationError
		dup  *domain.DuplicateCategoryError
	)
	switch {
	case errors.As(err, &verr):
		ErrorResponse(c, http.StatusUnprocessableEntity, verr.Fields)
	case errors.As(err, &dup):
		ErrorResponse(c, http.StatusBadRequest, dup.Reason.Message())
	case errors.Is(err, domain.ErrCategoryNotFound):
		ErrorResponse(c, http.StatusNotFound, notFoundDetail)
	default:
		logger.WithError(err).Error("Handler Error: unexpected failure")
		ErrorResponse(c, http.StatusInternalServerError, internalErrorDetail)
	}
}
