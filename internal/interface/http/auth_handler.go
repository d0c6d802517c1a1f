package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/invest-tracker/internal/application"
	"github.com/oksasatya/invest-tracker/internal/interface/middleware"
	"github.com/oksasatya/invest-tracker/pkg/response"
	"github.com/oksasatya/invest-tracker/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

// Register creates an account and returns 201 with a token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req validation.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, validation.Malformed(err))
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req validation.Login
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, validation.Malformed(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Profile must run behind middleware.Auth.
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c.Request.Context())
	if !ok {
		response.Error(c, http.StatusUnauthorized, middleware.MsgUnauthenticated, nil)
		return
	}
	p, err := h.Svc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}
