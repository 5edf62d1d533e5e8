package users

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/parley/server/internal/auth"
	"codeberg.org/parley/server/internal/credits"
)

func RegisterRoutes(router *gin.RouterGroup, ledger *credits.Ledger) {
	usersGroup := router.Group("/users")
	usersGroup.Use(auth.AuthMiddleware())
	{
		usersGroup.GET("/me/credits", CreditsHandler(ledger))
	}
}
