package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/invest-tracker/pkg/helpers"
	"github.com/oksasatya/invest-tracker/pkg/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Store   Pinger
	Timeout time.Duration
	Logger  *logrus.Logger
}

func NewHealthHandler(store Pinger, timeout time.Duration, logger *logrus.Logger) *HealthHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthHandler{Store: store, Timeout: timeout, Logger: logger}
}

func (h *HealthHandler) Live(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"status": "OK", "message": "Investment Tracker API is running"})
}

// DB reports whether the credential store answers a ping in time.
func (h *HealthHandler) DB(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		helpers.LogWarn(h.Logger, "store health check failed", err, nil)
		response.Error(c, http.StatusServiceUnavailable, "database unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "OK", "time": time.Now().UTC()})
}
