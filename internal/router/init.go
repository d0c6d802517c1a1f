package router

import (
	"github.com/oksasatya/invest-tracker/internal/container"
	handlers "github.com/oksasatya/invest-tracker/internal/interface/http"
	"github.com/oksasatya/invest-tracker/internal/router/modules"
)

// InitModules builds handlers from the container and registers their
// modules. Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	auth := handlers.NewAuthHandler(c.Service, c.Logger)
	health := handlers.NewHealthHandler(c.Users, c.Config.DBQueryTimeout, c.Logger)

	r.Add(modules.NewHealthModule(health))
	r.Add(modules.NewAuthModule(auth, c.JWT, c.Logger))
}
