package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/velotrace/velotrace-backend-go/internal/config"
	"github.com/velotrace/velotrace-backend-go/internal/handler"
	"github.com/velotrace/velotrace-backend-go/internal/middleware"
)

// SetupRouter wires handlers onto the HTTP routes
func SetupRouter(cfg *config.Config, tripHandler *handler.TripHandler, routeHandler *handler.RouteHandler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(), gin.Recovery())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "VeloTrace backend is running",
		})
	})

	api := r.Group("/api/v1")
	{
		trips := api.Group("/trips")
		{
			trips.GET("", tripHandler.ListTrips)
			trips.GET("/:id/segments", tripHandler.GetTripSegments)

			// Processing mutates state: authenticated and rate limited
			protected := trips.Group("")
			protected.Use(middleware.Auth(cfg.JWTSecret), middleware.RateLimit(10, time.Minute))
			{
				protected.POST("/import", tripHandler.ImportTrips)
				protected.POST("/:id/process", tripHandler.ProcessTrip)
			}
		}

		routes := api.Group("/routes")
		{
			routes.GET("", routeHandler.GetRoutes)
			routes.GET("/summary", routeHandler.GetSummary)

			protected := routes.Group("")
			protected.Use(middleware.Auth(cfg.JWTSecret), middleware.RateLimit(10, time.Minute))
			{
				protected.POST("/aggregate", routeHandler.Aggregate)
			}
		}
	}

	return r
}
