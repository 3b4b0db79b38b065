package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HuNTer8272/surplus2share-project/internal/accounts"
	"github.com/HuNTer8272/surplus2share-project/internal/middleware"
)

type ProfileController struct {
	Accounts *accounts.Service
}

func (pc *ProfileController) Donor(c *gin.Context) {
	donor, err := pc.Accounts.DonorProfile(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err, "Server error while fetching donor profile")
		return
	}
	respondData(c, http.StatusOK, "Donor profile retrieved successfully", donor)
}

func (pc *ProfileController) UpdateDonor(c *gin.Context) {
	var input accounts.ProfileUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	donor, err := pc.Accounts.UpdateDonorProfile(c.Request.Context(), middleware.CallerFrom(c), input)
	if err != nil {
		respondError(c, err, "Server error while updating donor profile")
		return
	}
	respondData(c, http.StatusOK, "Donor profile updated successfully", donor)
}

func (pc *ProfileController) Receiver(c *gin.Context) {
	receiver, err := pc.Accounts.ReceiverProfile(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err, "Server error while fetching receiver profile")
		return
	}
	respondData(c, http.StatusOK, "Receiver profile retrieved successfully", receiver)
}

func (pc *ProfileController) UpdateReceiver(c *gin.Context) {
	var input accounts.ProfileUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	receiver, err := pc.Accounts.UpdateReceiverProfile(c.Request.Context(), middleware.CallerFrom(c), input)
	if err != nil {
		respondError(c, err, "Server error while updating receiver profile")
		return
	}
	respondData(c, http.StatusOK, "Receiver profile updated successfully", receiver)
}
