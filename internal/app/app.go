// Package app wires storage, cache and messaging into a LendingService for the binaries under cmd/.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ExpertosTI/presta-pro-sub000/internal/cache"
	"github.com/ExpertosTI/presta-pro-sub000/internal/config"
	"github.com/ExpertosTI/presta-pro-sub000/internal/notify"
	"github.com/ExpertosTI/presta-pro-sub000/internal/repository"
	"github.com/ExpertosTI/presta-pro-sub000/internal/service"
	"github.com/ExpertosTI/presta-pro-sub000/migrations"
)

type App struct {
	DB      *sqlx.DB
	Redis   *redis.Client
	Service *service.LendingService
}

// New connects to Postgres and Redis, applies migrations and builds the service.
func New(cfg *config.Config, logger *logrus.Logger) (*App, error) {
	db, err := initDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := migrations.Apply(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	redisClient := initRedis(cfg)
	store := cache.NewRedisStore(redisClient)

	deps := service.Dependencies{
		Loans:    repository.NewLoanRepository(db),
		Clients:  repository.NewClientRepository(db),
		Receipts: repository.NewReceiptRepository(db),
		Closings: repository.NewClosingRepository(db),
		Cache:    store,
		Locker:   store,
		Notifier: notify.Multi{
			notify.NewLogNotifier(logger),
			notify.NewRedisPublisher(redisClient, cfg.Redis.Channel),
		},
	}

	return &App{
		DB:      db,
		Redis:   redisClient,
		Service: service.NewLendingService(deps, cfg, logger),
	}, nil
}

// PingRedis adapts the Redis client to a context-aware ping.
func (a *App) PingRedis(ctx context.Context) error {
	return a.Redis.Ping(ctx).Err()
}

func (a *App) Close() error {
	redisErr := a.Redis.Close()
	if err := a.DB.Close(); err != nil {
		return err
	}
	return redisErr
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.GetConnMaxLifetime())

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
