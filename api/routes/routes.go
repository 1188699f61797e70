package routes

import (
	"log/slog"
	"net/http"

	"github.com/YasminCastro/malucas-awards-v2/internal/config"
	"github.com/YasminCastro/malucas-awards-v2/internal/handlers"
	"github.com/YasminCastro/malucas-awards-v2/internal/metrics"
	"github.com/YasminCastro/malucas-awards-v2/internal/middleware"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// HandlerDependencies holds everything the router wires into routes
type HandlerDependencies struct {
	AuthHandler       *handlers.AuthHandler
	UserHandler       *handlers.UserHandler
	CategoryHandler   *handlers.CategoryHandler
	VoteHandler       *handlers.VoteHandler
	ResultsHandler    *handlers.ResultsHandler
	SettingsHandler   *handlers.SettingsHandler
	SuggestionHandler *handlers.SuggestionHandler

	Authenticator middleware.Authenticator
	AdminChecker  middleware.AdminChecker
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.MetricsMiddleware(deps.Metrics))
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(middleware.AuthMiddleware(deps.Authenticator, cfg.JWT.Cookie))

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	limited := middleware.RateLimitMiddleware(limiter)

	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/check-user", deps.AuthHandler.CheckUser)
			auth.POST("/signup", limited, deps.AuthHandler.Signup)
			auth.POST("/login", limited, deps.AuthHandler.Login)
			auth.POST("/logout", deps.AuthHandler.Logout)
		}

		public.GET("/categories", deps.CategoryHandler.ListPublic)
		public.GET("/users/public", deps.UserHandler.ListPublic)
		public.GET("/settings/voting-status", deps.SettingsHandler.GetVotingStatus)

		public.GET("/results", deps.ResultsHandler.GetResults)
		public.GET("/results/:categoryId", deps.ResultsHandler.GetCategoryResults)

		suggestions := public.Group("/category-suggestions")
		{
			suggestions.GET("", deps.SuggestionHandler.List)
			suggestions.POST("", deps.SuggestionHandler.Create)
			suggestions.PUT("/:id/participants", deps.SuggestionHandler.AddParticipants)
		}
	}

	// Routes for any logged-in user
	protected := router.Group("/api/v1")
	protected.Use(middleware.RequireAuth())
	{
		protected.GET("/auth/me", deps.AuthHandler.Me)

		votes := protected.Group("/votes")
		{
			votes.POST("", limited, deps.VoteHandler.CastVotes)
			votes.GET("/me", deps.VoteHandler.GetMyVotes)
		}
	}

	// Admin routes
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.RequireAdmin(deps.AdminChecker))
	{
		categories := admin.Group("/categories")
		{
			categories.GET("", deps.CategoryHandler.List)
			categories.GET("/:id", deps.CategoryHandler.Get)
			categories.POST("", deps.CategoryHandler.Create)
			categories.PUT("/:id", deps.CategoryHandler.Update)
			categories.DELETE("/:id", deps.CategoryHandler.Delete)
		}

		users := admin.Group("/users")
		{
			users.GET("", deps.UserHandler.List)
			users.GET("/:id", deps.UserHandler.GetUserByID)
			users.POST("", deps.UserHandler.Create)
			users.PUT("/:id", deps.UserHandler.Update)
			users.POST("/:id/reset-password", deps.UserHandler.ResetPassword)
			users.DELETE("/:id", deps.UserHandler.Delete)
		}

		suggestions := admin.Group("/category-suggestions")
		{
			suggestions.GET("", deps.SuggestionHandler.AdminList)
			suggestions.PUT("/:id", deps.SuggestionHandler.UpdateStatus)
			suggestions.PATCH("/:id", deps.SuggestionHandler.Update)
			suggestions.DELETE("/:id", deps.SuggestionHandler.Delete)
		}

		admin.GET("/results", deps.ResultsHandler.GetAdminResults)
		admin.GET("/results/export", deps.ResultsHandler.ExportResults)

		admin.GET("/settings", deps.SettingsHandler.GetSettings)
		admin.PUT("/settings", deps.SettingsHandler.UpdateSettings)
	}

	return router
}
