package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"codeberg.org/parley/server/internal/anonquota"
	"codeberg.org/parley/server/internal/config"
	"codeberg.org/parley/server/internal/credits"
	"codeberg.org/parley/server/internal/orchestrator"
	"codeberg.org/parley/server/internal/provider"
	"codeberg.org/parley/server/internal/titles"
	"codeberg.org/parley/server/parley/chats"
	"codeberg.org/parley/server/parley/conversations"
	"codeberg.org/parley/server/parley/users"
)

// holds all dependencies and state for the API server
type Server struct {
	db       *pgxpool.Pool
	redis    *redis.Client
	config   *config.Config
	userRepo *users.Repository
	chatRepo *chats.Repository
	ledger   *credits.Ledger
	quota    *anonquota.Limiter
	convos   *conversations.Manager
	services *Services
	router   *gin.Engine
}

// holds external service clients and the turn pipeline built on them
type Services struct {
	Provider     provider.Client
	Orchestrator *orchestrator.Orchestrator
	Titles       *titles.Service
}
