package routes

import (
	"context"
	"io"
	"net/http"
	"time"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"github.com/HuNTer8272/surplus2share-project/internal/accounts"
	"github.com/HuNTer8272/surplus2share-project/internal/matching"
	"github.com/HuNTer8272/surplus2share-project/internal/middleware"
	"github.com/HuNTer8272/surplus2share-project/internal/store"
)

// Dependencies is everything the HTTP layer needs from main.
type Dependencies struct {
	Store    store.Repository
	Engine   *matching.Engine
	Accounts *accounts.Service

	JWTSecret string
	TokenTTL  time.Duration

	// Limiter guards request creation. Nil disables it.
	Limiter          middleware.RateLimiter
	RequestRateLimit int

	// AccessLog receives one line per request. Nil disables access logging.
	AccessLog io.Writer
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if deps.AccessLog != nil {
		r.Use(ginlog.SetLogger(
			ginlog.WithWriter(deps.AccessLog),
			ginlog.WithUTC(true),
			ginlog.WithSkipPath([]string{"/health"}),
		))
	}

	r.GET("/health", health(deps.Store))

	api := r.Group("/api")
	auth := middleware.RequireAuth(deps.JWTSecret, deps.Store.Users())

	AuthRoutes(api, deps, auth)
	DonationRoutes(api, deps, auth)
	NotificationRoutes(api, deps, auth)
	ProfileRoutes(api, deps, auth)

	return r
}

func health(repo store.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := repo.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "ok"})
	}
}
