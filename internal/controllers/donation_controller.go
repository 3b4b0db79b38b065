package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HuNTer8272/surplus2share-project/internal/matching"
	"github.com/HuNTer8272/surplus2share-project/internal/middleware"
)

type DonationController struct {
	Engine *matching.Engine
}

func (dc *DonationController) Create(c *gin.Context) {
	var input matching.DonationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	donation, err := dc.Engine.CreateDonation(c.Request.Context(), middleware.CallerFrom(c), input)
	if err != nil {
		respondError(c, err, "Server error while creating donation")
		return
	}
	respondData(c, http.StatusCreated, "Donation created successfully", donation)
}

func (dc *DonationController) List(c *gin.Context) {
	filter := matching.ListFilter{Status: c.Query("status"), FoodType: c.Query("foodType")}
	donations, err := dc.Engine.ListDonations(c.Request.Context(), middleware.CallerFrom(c), filter)
	if err != nil {
		respondError(c, err, "Server error while fetching donations")
		return
	}
	respondList(c, donations)
}

func (dc *DonationController) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "Donation not found")
	if !ok {
		return
	}
	donation, err := dc.Engine.GetDonation(c.Request.Context(), middleware.CallerFrom(c), id)
	if err != nil {
		respondError(c, err, "Server error while fetching donation")
		return
	}
	respondData(c, http.StatusOK, "", donation)
}

func (dc *DonationController) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id", "Donation not found")
	if !ok {
		return
	}
	donation, err := dc.Engine.CancelDonation(c.Request.Context(), middleware.CallerFrom(c), id)
	if err != nil {
		respondError(c, err, "Server error while cancelling donation")
		return
	}
	respondData(c, http.StatusOK, "Donation cancelled successfully", donation)
}

func (dc *DonationController) Complete(c *gin.Context) {
	id, ok := pathID(c, "id", "Donation not found")
	if !ok {
		return
	}
	donation, err := dc.Engine.CompleteDonation(c.Request.Context(), middleware.CallerFrom(c), id)
	if err != nil {
		respondError(c, err, "Server error while completing donation")
		return
	}
	respondData(c, http.StatusOK, "Donation marked as completed", donation)
}

func (dc *DonationController) Available(c *gin.Context) {
	donations, err := dc.Engine.ListAvailable(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err, "Server error while fetching available donations")
		return
	}
	respondList(c, donations)
}

func (dc *DonationController) Mine(c *gin.Context) {
	donations, err := dc.Engine.ListMine(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err, "Server error while fetching your donations")
		return
	}
	respondList(c, donations)
}
