// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/perfdash/backend-go/internal/api/handlers"
	"github.com/perfdash/backend-go/internal/api/middleware"
	"github.com/perfdash/backend-go/internal/service"
	"github.com/perfdash/backend-go/internal/storage"
)

func NewRouter(svc *service.AnalyticsService, archive storage.ObjectStorage, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	datasetHandler := handlers.NewDatasetHandler(svc, archive)
	datasetGroup := apiGroup.Group("/dataset")
	{
		datasetGroup.POST("/upload", datasetHandler.Upload)
		datasetGroup.DELETE("", datasetHandler.Clear)
		datasetGroup.GET("/range", datasetHandler.Info)
	}

	analyticsHandler := handlers.NewAnalyticsHandler(svc)
	analyticsGroup := apiGroup.Group("/analytics")
	{
		analyticsGroup.GET("/summary", analyticsHandler.GetSummary)
		analyticsGroup.GET("/products", analyticsHandler.GetProducts)
		analyticsGroup.GET("/products/top", analyticsHandler.GetTopProducts)
		analyticsGroup.GET("/products/bottom", analyticsHandler.GetBottomPerformers)
		analyticsGroup.GET("/products/declining", analyticsHandler.GetDecliningProducts)
		analyticsGroup.GET("/distribution", analyticsHandler.GetDistribution)
		analyticsGroup.GET("/concentration", analyticsHandler.GetConcentration)
		analyticsGroup.GET("/series", analyticsHandler.GetSeries)
		analyticsGroup.GET("/comparison_window", analyticsHandler.GetComparisonWindow)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
