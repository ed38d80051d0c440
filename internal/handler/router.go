package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"comparteride/api/internal/config"
	"comparteride/api/internal/handler/middleware"
	jwtpkg "comparteride/api/pkg/jwt"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	userHandler *UserHandler,
	circleHandler *CircleHandler,
	membershipHandler *MembershipHandler,
	invitationHandler *InvitationHandler,
	rideHandler *RideHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public account lifecycle
	users := r.Group("/users")
	{
		users.POST("/signup/", userHandler.SignUp)
		users.POST("/login/", userHandler.Login)
		users.POST("/verify/", userHandler.Verify)
	}

	// Protected user routes
	usersAuth := r.Group("/users")
	usersAuth.Use(middleware.JWTAuth(jwtManager))
	{
		usersAuth.GET("/:username/", userHandler.Retrieve)
		usersAuth.PATCH("/:username/", userHandler.Update)
		usersAuth.PATCH("/:username/profile/", userHandler.UpdateProfile)
	}

	// Circles, memberships and rides
	circles := r.Group("/circles")
	circles.Use(middleware.JWTAuth(jwtManager))
	{
		circles.GET("/", circleHandler.List)
		circles.POST("/", circleHandler.Create)
		circles.GET("/:slug/", circleHandler.Retrieve)
		circles.PATCH("/:slug/", circleHandler.Update)

		circles.GET("/:slug/members/", membershipHandler.List)
		circles.POST("/:slug/members/", membershipHandler.Join)
		circles.GET("/:slug/members/:username/", membershipHandler.Retrieve)
		circles.DELETE("/:slug/members/:username/", membershipHandler.Deactivate)
		circles.GET("/:slug/members/:username/invitations/", membershipHandler.Invitations)

		circles.POST("/:slug/invitations/", invitationHandler.Issue)

		circles.GET("/:slug/rides/", rideHandler.List)
		circles.POST("/:slug/rides/", rideHandler.Create)
		circles.PATCH("/:slug/rides/:id/", rideHandler.Update)
		circles.POST("/:slug/rides/:id/join/", rideHandler.Join)
		circles.POST("/:slug/rides/:id/rate/", rideHandler.Rate)
	}

	return r
}
