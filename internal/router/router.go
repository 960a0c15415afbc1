package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stemsi/formfill-backend/internal/config"
	"github.com/stemsi/formfill-backend/internal/handler"
	"github.com/stemsi/formfill-backend/internal/middleware"
	"github.com/stemsi/formfill-backend/internal/model"
	"github.com/stemsi/formfill-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Form    *handler.FormHandler
	History *handler.HistoryHandler
	Admin   *handler.AdminUserHandler
	System  *handler.SystemHandler
}

// Authenticator validates tokens and loads the account behind them.
type Authenticator interface {
	middleware.TokenValidator
	middleware.UserLookup
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	auth Authenticator,
	limiter *middleware.RateLimiter,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Compress(5))

	router.GET("/health", handlers.System.Health)

	v1 := router.Group("/api/v1")

	// ─── Auth ──────────────────────────────────────────────────────────
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", limiter.Middleware(), handlers.Auth.Register)
		authGroup.POST("/login", limiter.Middleware(), handlers.Auth.Login)
		authGroup.GET("/me", middleware.RequireUserJWT(auth), handlers.Auth.Me)
	}

	// ─── Authenticated ─────────────────────────────────────────────────
	private := v1.Group("")
	private.Use(middleware.RequireUserJWT(auth), middleware.NoStore())
	{
		forms := private.Group("/forms")
		{
			forms.POST("/parse", handlers.Form.ParseText)
			forms.POST("/manual", handlers.Form.ParseManual)
			forms.POST("/scrape", limiter.Middleware(), handlers.Form.ScrapeForm)
			forms.POST("/answers", limiter.Middleware(), handlers.Form.Answer)
		}

		history := private.Group("/history")
		{
			history.GET("", handlers.History.List)
			history.GET("/:id", handlers.History.Get)
			history.DELETE("/:id", handlers.History.Delete)
		}

		private.GET("/system/status", handlers.System.Status)

		// ─── Admin ─────────────────────────────────────────────────────
		admin := private.Group("/admin")
		admin.Use(middleware.RequireRole(auth, model.RoleAdmin))
		{
			admin.GET("/users", handlers.Admin.ListUsers)
			admin.PATCH("/users/:id/role", handlers.Admin.UpdateRole)
			admin.DELETE("/users/:id", handlers.Admin.DeleteUser)
		}
	}

	return router
}
