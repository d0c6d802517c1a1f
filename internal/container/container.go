package container

import (
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/invest-tracker/config"
	"github.com/oksasatya/invest-tracker/internal/application"
	repo "github.com/oksasatya/invest-tracker/internal/domain/repository"
	"github.com/oksasatya/invest-tracker/pkg/helpers"
)

// Container holds the components built at startup. The router wires
// modules from it; nothing reads it through package globals.
type Container struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Users   repo.UserRepository
	JWT     *helpers.JWTManager
	Service *application.Service
}
