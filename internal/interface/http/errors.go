package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/invest-tracker/internal/application"
	"github.com/oksasatya/invest-tracker/internal/interface/middleware"
	"github.com/oksasatya/invest-tracker/pkg/helpers"
	"github.com/oksasatya/invest-tracker/pkg/response"
	"github.com/oksasatya/invest-tracker/pkg/validation"
)

const msgInternal = "internal server error"

// writeError is the one place where service errors become status codes.
func (h *AuthHandler) writeError(c *gin.Context, err error) {
	var rej *validation.Rejection
	switch {
	case errors.As(err, &rej):
		response.Error(c, http.StatusBadRequest, rej.Message, rej.Details)
	case errors.Is(err, application.ErrEmailTaken):
		response.Error(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), nil)
	default:
		// DependencyError was already logged with its op by the service.
		if !errors.Is(err, application.ErrDependency) {
			helpers.LogError(h.Logger, "unhandled error", err, logrus.Fields{
				"request_id": c.GetString(middleware.CtxRequestIDKey),
				"path":       c.FullPath(),
			})
		}
		response.Error(c, http.StatusInternalServerError, msgInternal, nil)
	}
}
