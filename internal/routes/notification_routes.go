package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/HuNTer8272/surplus2share-project/internal/controllers"
)

func NotificationRoutes(api *gin.RouterGroup, deps Dependencies, requireAuth gin.HandlerFunc) {
	nc := &controllers.NotificationController{Engine: deps.Engine}
	api.GET("/notifications", requireAuth, nc.List)
}
