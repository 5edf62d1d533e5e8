package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"codeberg.org/parley/server/internal/anonquota"
	"codeberg.org/parley/server/internal/config"
	"codeberg.org/parley/server/internal/credits"
	"codeberg.org/parley/server/internal/optimizer"
	"codeberg.org/parley/server/parley/chats"
	"codeberg.org/parley/server/parley/conversations"
	"codeberg.org/parley/server/parley/users"
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// keep the pool small for managed pooler compatibility
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// simple protocol for PgBouncer transaction mode, which cannot serve
	// prepared statements
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	redisClient := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	userRepo := users.NewRepository(db)
	chatRepo := chats.NewRepository(db)
	ledger := credits.NewLedger(credits.NewPostgresStore(db))
	quota := anonquota.NewLimiter(anonquota.NewRedisStore(redisClient))
	convos := conversations.NewManagerWithOptimizer(conversations.NewPostgresStore(db), optimizer.NewHeuristic())

	services := InitializeServices(cfg, userRepo, chatRepo, ledger, quota, convos)

	router := gin.Default()

	server := &Server{
		db:       db,
		redis:    redisClient,
		config:   cfg,
		userRepo: userRepo,
		chatRepo: chatRepo,
		ledger:   ledger,
		quota:    quota,
		convos:   convos,
		services: services,
		router:   router,
	}

	RegisterRoutes(router, server)

	return server, nil
}
