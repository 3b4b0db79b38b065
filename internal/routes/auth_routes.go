package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/HuNTer8272/surplus2share-project/internal/controllers"
)

func AuthRoutes(api *gin.RouterGroup, deps Dependencies, requireAuth gin.HandlerFunc) {
	ac := &controllers.AuthController{Accounts: deps.Accounts, JWTSecret: deps.JWTSecret, TokenTTL: deps.TokenTTL}

	auth := api.Group("/auth")
	{
		auth.POST("/register", ac.Register)
		auth.POST("/login", ac.Login)
		auth.GET("/me", requireAuth, ac.Me)
	}
}
