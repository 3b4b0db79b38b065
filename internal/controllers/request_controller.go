package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HuNTer8272/surplus2share-project/internal/matching"
	"github.com/HuNTer8272/surplus2share-project/internal/middleware"
)

type RequestController struct {
	Engine *matching.Engine
}

type createRequestInput struct {
	Message *string `json:"message"`
}

type respondInput struct {
	Action string `json:"action"`
}

func (rc *RequestController) Create(c *gin.Context) {
	id, ok := pathID(c, "id", "Donation not found")
	if !ok {
		return
	}
	var input createRequestInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "Invalid request body")
			return
		}
	}

	request, err := rc.Engine.CreateRequest(c.Request.Context(), middleware.CallerFrom(c), id, input.Message)
	if err != nil {
		respondError(c, err, "Server error while requesting donation")
		return
	}
	respondData(c, http.StatusCreated, "Donation request sent successfully", request)
}

func (rc *RequestController) Withdraw(c *gin.Context) {
	id, ok := pathID(c, "id", "Request not found or already processed")
	if !ok {
		return
	}
	if err := rc.Engine.WithdrawRequest(c.Request.Context(), middleware.CallerFrom(c), id); err != nil {
		respondError(c, err, "Server error while cancelling donation request")
		return
	}
	respondMessage(c, http.StatusOK, "Donation request cancelled successfully")
}

func (rc *RequestController) Status(c *gin.Context) {
	id, ok := pathID(c, "id", "Donation not found")
	if !ok {
		return
	}
	state, err := rc.Engine.GetRequestStatus(c.Request.Context(), middleware.CallerFrom(c), id)
	if err != nil {
		respondError(c, err, "Server error while checking donation request")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"hasRequest":    state.HasRequest,
		"requestStatus": state.Status,
		"data":          state.Request,
	})
}

func (rc *RequestController) Respond(c *gin.Context) {
	id, ok := pathID(c, "requestId", "Request not found")
	if !ok {
		return
	}
	var input respondInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid action. Must be ACCEPT or REJECT")
		return
	}
	action, err := matching.ParseAction(input.Action)
	if err != nil {
		respondError(c, err, "Invalid action. Must be ACCEPT or REJECT")
		return
	}

	request, err := rc.Engine.Respond(c.Request.Context(), middleware.CallerFrom(c), id, action)
	if err != nil {
		respondError(c, err, "Server error while responding to donation request")
		return
	}
	verb := "rejected"
	if action == matching.ActionAccept {
		verb = "accepted"
	}
	respondData(c, http.StatusOK, "Request "+verb+" successfully", request)
}

func (rc *RequestController) Inbox(c *gin.Context) {
	requests, err := rc.Engine.Inbox(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err, "Server error while fetching donation requests")
		return
	}
	respondList(c, requests)
}

func (rc *RequestController) Accepted(c *gin.Context) {
	requests, err := rc.Engine.AcceptedRequests(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err, "Server error while fetching accepted requests")
		return
	}
	respondList(c, requests)
}

func (rc *RequestController) Outbox(c *gin.Context) {
	requests, err := rc.Engine.Outbox(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err, "Server error while fetching your requests")
		return
	}
	respondList(c, requests)
}
