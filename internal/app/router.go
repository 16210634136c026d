package app

import (
	"testprep_backend/docs"
	"testprep_backend/internal/config"
	"testprep_backend/internal/middleware"
	"testprep_backend/internal/model"
	"testprep_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/plans", c.attempt.ListPlans)

		attempts := authGroup.Group("/attempts")
		{
			attempts.POST("", c.attempt.CreateAttempt)
			attempts.GET("", c.attempt.ListAttempts)
			attempts.POST("/:id/start", c.attempt.StartAttempt)
			attempts.POST("/:id/pause", c.attempt.PauseAttempt)
			attempts.POST("/:id/resume", c.attempt.ResumeAttempt)
			attempts.POST("/:id/answers", c.attempt.SubmitAnswer)
			attempts.POST("/:id/answers/bulk", c.attempt.SubmitAllAnswers)
			attempts.POST("/:id/complete", c.attempt.CompleteAttempt)
			attempts.GET("/:id/results", c.attempt.GetResults)
		}

		progression := authGroup.Group("/progression")
		{
			progression.GET("", c.progression.GetProgress)
			progression.GET("/activity", c.progression.GetActivity)
			progression.GET("/leaderboard", c.progression.GetLeaderboard)
		}

		achievements := authGroup.Group("/achievements")
		{
			achievements.GET("", c.achievement.ListAchievements)
			achievements.POST("/:id/unlock", middleware.RoleMiddleware(model.Student), c.achievement.UnlockAchievement)
		}

		rewards := authGroup.Group("/rewards")
		{
			rewards.GET("", c.reward.ListRewards)
			rewards.POST("/:id/purchase", middleware.RoleMiddleware(model.Student), c.reward.PurchaseReward)
		}
	}
}
