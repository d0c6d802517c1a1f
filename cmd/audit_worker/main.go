package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/invest-tracker/config"
	"github.com/oksasatya/invest-tracker/internal/application"
	pginfra "github.com/oksasatya/invest-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/invest-tracker/pkg/helpers"
)

// Prefetch keeps dispatch fair across workers.
const prefetch = 16

func main() {
	if code := run(); code != 0 {
		os.Exit(code)
	}
}

func run() int {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-audit-worker", cfg.Env)
	if !cfg.AuthEventsEnabled {
		logger.Info("AUTH_EVENTS_ENABLED=false; audit worker disabled")
		return 0
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQAuthQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
		MaxConns:       4,
		MaxConnLife:    cfg.DBMaxConnLife,
		MaxConnIdle:    cfg.DBMaxConnIdle,
		ConnectTimeout: cfg.DBConnectTimeout,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQAuthQueue, prefetch)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to rabbitmq")
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries()
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	rec := application.NewAuditRecorder(pginfra.NewAuthEventRepository(pool), logger)
	logger.WithField("queue", cfg.RabbitMQAuthQueue).Info("audit worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("audit worker stopping")
			return 0
		case msg, ok := <-msgs:
			if !ok {
				logger.Error("delivery channel closed")
				return 1
			}
			qctx, qcancel := context.WithTimeout(ctx, cfg.DBQueryTimeout)
			disp := rec.Handle(qctx, msg.Body)
			qcancel()
			var ackErr error
			switch disp {
			case application.Ack:
				ackErr = msg.Ack(false)
			case application.Drop:
				ackErr = msg.Nack(false, false)
			case application.Retry:
				ackErr = msg.Nack(false, true)
			}
			if ackErr != nil {
				logger.WithError(ackErr).WithFields(logrus.Fields{"delivery_tag": msg.DeliveryTag}).Warn("ack failed")
			}
		}
	}
}
