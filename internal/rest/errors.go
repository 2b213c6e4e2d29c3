package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/placevote/domain"
	"github.com/Guyuepp/placevote/internal/rest/middleware"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

func getStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrTargetNotFound), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidDirection),
		errors.Is(err, domain.ErrInvalidTargetKind),
		errors.Is(err, domain.ErrBadParamInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		logrus.Error(err)
		return http.StatusInternalServerError
	}
}

// abortWithError writes err with its status. Internal errors are not echoed.
func abortWithError(c *gin.Context, err error) {
	status := getStatusCode(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = domain.ErrInternalServerError.Error()
	}
	c.JSON(status, ResponseError{Message: msg})
}

// userID returns the id set by the auth middleware.
func userID(c *gin.Context) (int64, error) {
	v, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0, domain.ErrUnauthenticated
	}
	id, ok := v.(int64)
	if !ok {
		return 0, domain.ErrUnauthenticated
	}
	return id, nil
}
