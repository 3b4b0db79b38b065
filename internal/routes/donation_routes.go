package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HuNTer8272/surplus2share-project/internal/controllers"
	"github.com/HuNTer8272/surplus2share-project/internal/middleware"
)

// DonationRoutes mounts donation and request endpoints. Role checks happen in
// the matching engine, so every route only needs an authenticated caller.
func DonationRoutes(api *gin.RouterGroup, deps Dependencies, requireAuth gin.HandlerFunc) {
	dc := &controllers.DonationController{Engine: deps.Engine}
	rc := &controllers.RequestController{Engine: deps.Engine}
	limit := middleware.RateLimit(deps.Limiter, "request_create", deps.RequestRateLimit, time.Minute)

	donations := api.Group("/donations")
	donations.Use(requireAuth)
	{
		donations.POST("", dc.Create)
		donations.GET("", dc.List)
		donations.GET("/all/available", dc.Available)
		donations.GET("/all/me", dc.Mine)

		donations.GET("/requests/inbox", rc.Inbox)
		donations.GET("/requests/outbox", rc.Outbox)
		donations.GET("/requests/accepted", rc.Accepted)
		donations.PATCH("/requests/:requestId/respond", rc.Respond)

		donations.GET("/:id", dc.Get)
		donations.PATCH("/:id/cancel", dc.Cancel)
		donations.PATCH("/:id/complete", dc.Complete)
		donations.POST("/:id/request", limit, rc.Create)
		donations.DELETE("/:id/request", rc.Withdraw)
		donations.GET("/:id/request", rc.Status)
	}
}
