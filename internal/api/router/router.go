package router

import (
	"net/http"

	"github.com/cuongbtq/poke-report/internal/api/handler"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	service := deps.Service
	if service == "" {
		service = "report-status-api"
	}

	r.GET("/health", func(c *gin.Context) {
		if deps.Health != nil {
			if err := deps.Health.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"service": service,
					"error":   err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": service,
		})
	})

	requestHandler := handler.NewRequestHandler(deps)

	requests := r.Group("/api/request")
	{
		requests.POST("", requestHandler.CreateRequest)
		requests.PUT("", requestHandler.UpdateRequest)
		requests.GET("", requestHandler.ListRequests)
		requests.GET("/:id", requestHandler.GetRequest)
	}

	return r
}
