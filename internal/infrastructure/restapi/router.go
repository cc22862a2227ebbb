package restapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter настраивает и возвращает экземпляр Gin роутера.
func SetupRouter(handler *Handler, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.Default() // Logger и Recovery

	router.Use(cors.New(corsConfig(handler)))

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/config", handler.GetConfigHandler)
		v1.GET("/networks", handler.ListNetworksHandler)

		v1.POST("/sessions", handler.ConnectHandler)
		v1.GET("/sessions/:id", handler.GetSessionHandler)
		v1.DELETE("/sessions/:id", handler.DisconnectHandler)
		v1.POST("/sessions/:id/network", handler.SelectNetworkHandler)
		v1.POST("/sessions/:id/refresh", handler.RefreshHandler)
		v1.GET("/sessions/:id/state", handler.GetStateHandler)
		v1.GET("/sessions/:id/events", handler.EventsHandler)
		v1.POST("/sessions/:id/claim", handler.ClaimHandler)
		v1.POST("/sessions/:id/sweep", handler.SweepHandler)

		v1.GET("/balances/:address", handler.GetBalanceHandler)
		v1.GET("/dividends/:address", handler.GetDividendsHandler)
		v1.GET("/estimate", handler.EstimateHandler)
		v1.GET("/report", handler.ReportHandler)
	}

	if cfg := handler.deps.Config; cfg != nil && cfg.Swagger.Enabled {
		// спецификация отдаётся как статический файл
		router.StaticFile("/docs/swagger.yaml", cfg.Swagger.SpecPath)
		swaggerURL := ginSwagger.URL("/docs/swagger.yaml")
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))
	}

	return router
}

func corsConfig(handler *Handler) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	var origins []string
	if handler.deps.Config != nil {
		origins = handler.deps.Config.Server.AllowedOrigins
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
