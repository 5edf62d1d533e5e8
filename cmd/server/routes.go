package main

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/parley/server/api/rest/chat"
	"codeberg.org/parley/server/api/rest/health"
	"codeberg.org/parley/server/api/rest/users"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.Use(CORSMiddleware())
	router.Use(RateLimitMiddleware(server.redis))

	router.GET("/health", health.Handler)

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)

		chat.RegisterRoutes(v1, server.services.Orchestrator)
		users.RegisterRoutes(v1, server.ledger)
	}
}
