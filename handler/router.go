package handler

import (
	"time"

	"github.com/RaghavGalappanavar/Deployment/config"
	"github.com/RaghavGalappanavar/Deployment/middleware"
	"github.com/gin-gonic/gin"
)

// NewRouter wires middleware and routes onto a fresh engine.
func NewRouter(cfg *config.Config, contracts *ContractHandler, docs *DocsHandler) (*gin.Engine, error) {
	corsMiddleware, err := middleware.CORS(cfg.CORS)
	if err != nil {
		return nil, err
	}

	router := gin.New() // Use New() instead of Default() to avoid default middleware

	router.Use(middleware.RequestID())     // Request ID for tracing
	router.Use(middleware.TraceID())       // Optional caller trace ID
	router.Use(middleware.Recovery())      // Panic recovery
	router.Use(middleware.RequestLogger()) // Access logging
	router.Use(corsMiddleware)             // CORS per path group
	router.Use(middleware.CacheControl())  // Cache control
	router.Use(middleware.RateLimit(cfg.RateLimit.Limit(), time.Duration(cfg.RateLimit.WindowSeconds)*time.Second))
	router.Use(middleware.PayloadTrace()) // Debug-level body shape logging

	router.GET("/health", Health)

	if docs != nil {
		router.GET("/api-docs", docs.JSON)
		router.GET("/api-docs/openapi.yaml", docs.YAML)
		router.GET("/swagger-ui", docs.RedirectUI)
		router.GET(SwaggerUIPath, docs.UI)
	}

	v1 := router.Group("/v1/contracts")
	{
		v1.POST("", contracts.Create)
		v1.GET("/:id", contracts.Get)
		v1.GET("/:id/pdf", contracts.DownloadPDF)
	}

	return router, nil
}
