package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/HuNTer8272/surplus2share-project/internal/matching"
	"github.com/HuNTer8272/surplus2share-project/internal/middleware"
)

type NotificationController struct {
	Engine *matching.Engine
}

func (nc *NotificationController) List(c *gin.Context) {
	notifications, err := nc.Engine.Notifications(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err, "Failed to fetch notifications")
		return
	}
	respondList(c, notifications)
}
