package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HuNTer8272/surplus2share-project/internal/accounts"
	"github.com/HuNTer8272/surplus2share-project/internal/apperror"
	"github.com/HuNTer8272/surplus2share-project/internal/middleware"
	"github.com/HuNTer8272/surplus2share-project/internal/models"
)

type AuthController struct {
	Accounts  *accounts.Service
	JWTSecret string
	TokenTTL  time.Duration
}

func (ac *AuthController) Register(c *gin.Context) {
	var input accounts.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, err := ac.Accounts.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Server error during registration")
		return
	}
	ac.respondWithToken(c, http.StatusCreated, "User registered successfully", user)
}

func (ac *AuthController) Login(c *gin.Context) {
	var input accounts.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, err := ac.Accounts.Login(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Server error during login")
		return
	}
	ac.respondWithToken(c, http.StatusOK, "Login successful", user)
}

func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.Accounts.Me(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err, "Server error while fetching profile")
		return
	}
	respondData(c, http.StatusOK, "", user)
}

func (ac *AuthController) respondWithToken(c *gin.Context, status int, message string, user *models.User) {
	token, err := middleware.GenerateToken(user.ID, user.Role, ac.JWTSecret, ac.TokenTTL)
	if err != nil {
		respondError(c, apperror.Internal("could not generate token", err), "Could not generate token")
		return
	}
	respondData(c, status, message, gin.H{"user": user, "token": token})
}
