package main

import (
	"net/http"

	"estimator-service/internal/handler"
	mid "estimator-service/internal/middleware"
	"estimator-service/internal/updater"
	"estimator-service/pkg/config"
	"estimator-service/pkg/database"
	"estimator-service/pkg/inflow"
	"estimator-service/pkg/jwtutil"
	"estimator-service/pkg/logger"
	"estimator-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting estimator-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	err = database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize the inventory gateway and the update protocol on top of it
	gateway := inflow.NewClient(&appConfig.InFlow, log)
	up := updater.New(gateway, log)
	h := handler.New(gateway, up)
	log.Info("Inventory gateway initialized",
		zap.String("base_url", appConfig.InFlow.BaseURL),
		zap.String("api_version", appConfig.InFlow.AcceptVersion))

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Dashboard API routes - Apply auth middleware to validate JWT
	api := e.Group("/api", mid.AuthMiddleware)
	api.GET("/customers", h.ListCustomers)
	api.GET("/vendors", h.ListVendors)
	api.GET("/categories", h.ListCategories)
	api.GET("/products/search", h.SearchProducts)
	api.POST("/products/update", h.UpdateProduct)
	api.POST("/products/update-boms", h.UpdateBOMs)
	api.GET("/estimates", h.ListEstimates)
	api.POST("/estimates", h.CreateEstimate)
	api.DELETE("/estimates/:id", h.DeleteEstimate)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
