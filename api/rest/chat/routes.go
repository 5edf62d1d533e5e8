package chat

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/parley/server/internal/auth"
	"codeberg.org/parley/server/internal/orchestrator"
)

func RegisterRoutes(router *gin.RouterGroup, orch *orchestrator.Orchestrator) {
	chatGroup := router.Group("/chat")
	chatGroup.Use(auth.OptionalAuthMiddleware())
	{
		chatGroup.POST("/turn", TurnHandler(orch))
	}
}
