package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/martijn/homedash/internal/api/dto"
	"github.com/martijn/homedash/internal/core/domain"
)

// respondError maps a service error to its status code. Anything unknown is
// attached to the context for logging and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var (
		validation *domain.ValidationError
		conflict   *domain.ConflictError
		authErr    *domain.AuthError
		notFound   *domain.NotFoundError
	)

	switch {
	case errors.As(err, &validation):
		badRequest(c, validation.Reason)
	case errors.As(err, &conflict):
		badRequest(c, conflict.Message)
	case errors.As(err, &authErr):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(http.StatusUnauthorized, authErr.Reason))
	case errors.As(err, &notFound):
		// only reachable while resolving the caller; never reveal which part failed
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(http.StatusUnauthorized, domain.ErrUnknownSubject.Reason))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError,
			dto.NewErrorResponse(http.StatusInternalServerError, "An unexpected error occurred"))
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, message))
}
