package http

import (
	"github.com/gin-gonic/gin"

	"github.com/nearbuy/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		search := v1.Group("/search")
		{
			search.POST("/shopping", handler.SearchShopping)
			search.POST("/gas", handler.SearchGas)
		}

		v1.POST("/route", handler.GenerateRoute)

		lists := v1.Group("/lists")
		{
			lists.POST("/generate", handler.GenerateList)
			lists.POST("", handler.SaveList)
			lists.GET("", handler.ListSavedLists)
			lists.DELETE("/:id", handler.DeleteList)
		}

		searches := v1.Group("/searches")
		{
			searches.POST("", handler.SaveSearch)
			searches.GET("", handler.ListSavedSearches)
			searches.DELETE("/:id", handler.DeleteSearch)
		}
	}

	return router
}
