package main

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/invest-tracker/config"
	"github.com/oksasatya/invest-tracker/internal/domain/entity"
	"github.com/oksasatya/invest-tracker/internal/domain/repository"
	pginfra "github.com/oksasatya/invest-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/invest-tracker/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2, ConnectTimeout: cfg.DBConnectTimeout})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	hasher, err := helpers.NewBcryptHasher(cfg.BcryptCost, 1)
	if err != nil {
		logger.WithError(err).Fatal("failed to init password hasher")
	}

	email := "demo@investtracker.local"
	password := "password123"
	hash, err := hasher.Hash(ctx, password)
	if err != nil {
		logger.WithError(err).Fatal("failed to hash password")
	}

	u := &entity.User{Email: email, PasswordHash: hash, Name: "Demo User"}
	err = pginfra.NewUserRepository(pool).Create(ctx, u)
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		logger.WithField("email", email).Info("demo user already exists")
	case err != nil:
		logger.WithError(err).Fatal("failed to seed user")
	default:
		logger.WithFields(logrus.Fields{"id": u.ID, "email": email, "password": password}).Info("seeded user")
	}
}
