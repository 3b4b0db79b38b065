package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/HuNTer8272/surplus2share-project/internal/controllers"
)

func ProfileRoutes(api *gin.RouterGroup, deps Dependencies, requireAuth gin.HandlerFunc) {
	pc := &controllers.ProfileController{Accounts: deps.Accounts}

	donor := api.Group("/donor", requireAuth)
	{
		donor.GET("/profile", pc.Donor)
		donor.PUT("/profile", pc.UpdateDonor)
	}

	receiver := api.Group("/receiver", requireAuth)
	{
		receiver.GET("/profile", pc.Receiver)
		receiver.PUT("/profile", pc.UpdateReceiver)
	}
}
