package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/invest-tracker/config"
	"github.com/oksasatya/invest-tracker/internal/application"
	"github.com/oksasatya/invest-tracker/internal/container"
	repo "github.com/oksasatya/invest-tracker/internal/domain/repository"
	"github.com/oksasatya/invest-tracker/internal/infrastructure/cache"
	"github.com/oksasatya/invest-tracker/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/invest-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/invest-tracker/internal/router"
	"github.com/oksasatya/invest-tracker/pkg/helpers"
	"github.com/oksasatya/invest-tracker/pkg/validation"
)

func main() {
	if code := run(); code != 0 {
		os.Exit(code)
	}
}

// run returns the process exit code so deferred cleanup still happens on
// a fatal shutdown.
func run() int {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	gin.SetMode(cfg.GinMode)

	ctx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// Credential store
	var users repo.UserRepository
	var storeFatal <-chan error
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:       cfg.DBMaxConns,
			MinConns:       cfg.DBMinConns,
			MaxConnLife:    cfg.DBMaxConnLife,
			MaxConnIdle:    cfg.DBMaxConnIdle,
			ConnectTimeout: cfg.DBConnectTimeout,
		})
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to postgres")
		}
		defer pool.Close()

		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			logger.WithError(err).Fatal("migration failed")
		}

		monitor := pginfra.NewHealthMonitor(pool, cfg.DBHealthInterval, cfg.DBQueryTimeout, cfg.DBHealthFailures, logger)
		go monitor.Run(ctx)
		storeFatal = monitor.Fatal()
		users = pginfra.NewUserRepository(pool)
	case config.StoreMemory:
		logger.Warn("using in-memory credential store; data is lost on restart")
		users = memory.NewUserRepository()
	}

	hasher, err := helpers.NewBcryptHasher(cfg.BcryptCost, cfg.HashConcurrency)
	if err != nil {
		logger.WithError(err).Fatal("failed to init password hasher")
	}
	jwtManager, err := helpers.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.WithError(err).Fatal("failed to init token service")
	}

	logger.WithFields(logrus.Fields{
		"store":       cfg.StoreDriver,
		"bcrypt_cost": hasher.Cost(),
		"token_ttl":   jwtManager.TTL().String(),
	}).Info("auth configured")

	opts := []application.Option{application.WithQueryTimeout(cfg.DBQueryTimeout)}

	// Redis profile cache (optional)
	if cfg.ProfileCacheEnabled {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		opts = append(opts, application.WithCache(cache.NewProfileCache(rdb, cfg.ProfileCacheTTL)))
	}

	// RabbitMQ auth events (optional)
	if cfg.AuthEventsEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQAuthQueue)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to rabbitmq")
		}
		defer pub.Close()
		opts = append(opts, application.WithEvents(pub))
	}

	svc, err := application.NewService(ctx, users, hasher, jwtManager, validation.New(), logger, opts...)
	if err != nil {
		logger.WithError(err).Fatal("failed to init auth service")
	}

	c := &container.Container{
		Config:  cfg,
		Logger:  logger,
		Users:   users,
		JWT:     jwtManager,
		Service: svc,
	}

	r := router.NewEngine(cfg)
	reg := router.NewRegistry(r)
	router.InitModules(reg, c)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Graceful shutdown. A dead store or listener exits non-zero so the
	// orchestrator restarts the process.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	exitCode := 0
	select {
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("shutting down server")
	case err := <-storeFatal:
		logger.WithError(err).Error("credential store lost, shutting down")
		exitCode = 1
	case err := <-serveErr:
		logger.WithError(err).Error("listen failed")
		exitCode = 1
	}

	stopBackground()
	if err := shutdown(srv, logger); err != nil {
		exitCode = 1
	}
	if exitCode == 0 {
		logger.Info("server exited properly")
	}
	return exitCode
}

func shutdown(srv *http.Server, logger *logrus.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
		return err
	}
	return nil
}
