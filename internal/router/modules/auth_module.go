package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/invest-tracker/internal/interface/http"
	"github.com/oksasatya/invest-tracker/internal/interface/middleware"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	Tokens  middleware.TokenVerifier
	Logger  *logrus.Logger
}

func NewAuthModule(h *handlers.AuthHandler, tokens middleware.TokenVerifier, logger *logrus.Logger) *AuthModule {
	return &AuthModule{Handler: h, Tokens: tokens, Logger: logger}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	g.POST("/register", m.Handler.Register)
	g.POST("/login", m.Handler.Login)

	// Protected
	g.GET("/profile", middleware.Auth(m.Tokens, m.Logger), m.Handler.Profile)
}
