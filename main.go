package main

import (
	"context"

	"sparkmatch/internal/config"
	"sparkmatch/internal/database"
	"sparkmatch/internal/handlers"
	"sparkmatch/internal/middleware"
	"sparkmatch/internal/redis"
	"sparkmatch/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to Redis")
	}

	storage, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage")
	}
	if err := storage.EnsureBucket(context.Background()); err != nil {
		logrus.WithError(err).Warn("Could not ensure photo bucket")
	}

	interactions := services.NewInteractionService(db)
	invitations := services.NewInvitationService(db, interactions)
	discovery := services.NewDiscoveryService(db)

	authHandler := handlers.NewAuthHandler(db, redisClient, cfg)
	userHandler := handlers.NewUserHandler(db, redisClient, cfg, discovery, storage)
	interactionHandler := handlers.NewInteractionHandler(db, redisClient, cfg, interactions, invitations)

	router := setupRoutes(authHandler, userHandler, interactionHandler)

	logrus.WithField("port", cfg.Port).Info("Server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("Failed to start server")
	}
}

func setupRoutes(authHandler *handlers.AuthHandler, userHandler *handlers.UserHandler,
	interactionHandler *handlers.InteractionHandler) *gin.Engine {

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
		}

		users := v1.Group("/users")
		users.Use(middleware.AuthRequired())
		{
			users.GET("/profile", userHandler.GetProfile)
			users.PUT("/profile", userHandler.UpdateProfile)
			users.GET("/", userHandler.ListUsers)
			users.POST("/photos", userHandler.UploadPhoto)
			users.GET("/photos", userHandler.ListPhotos)
			users.PUT("/photos/:id/set-main", userHandler.SetMainPhoto)
		}

		authed := v1.Group("")
		authed.Use(middleware.AuthRequired())
		{
			authed.GET("/random-user", userHandler.RandomUser)
			authed.POST("/interact", interactionHandler.Interact)
			authed.GET("/view-history", interactionHandler.ViewHistory)
			authed.GET("/liked-users", interactionHandler.LikedUsers)
			authed.GET("/disliked-users", interactionHandler.DislikedUsers)
			authed.GET("/received-likes", interactionHandler.ReceivedLikes)
			authed.GET("/matches", interactionHandler.GetMatches)
			authed.DELETE("/matches/:match_id", interactionHandler.Unmatch)
			authed.GET("/date-invitations", interactionHandler.ListInvitations)
			authed.POST("/date-invitations", interactionHandler.CreateInvitation)
			authed.PUT("/date-invitations/:id/status", interactionHandler.UpdateInvitationStatus)
			authed.POST("/contact-exchange", interactionHandler.CreateContactExchange)
		}
	}

	return router
}
