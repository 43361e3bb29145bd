package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mifty-dev/seo-audit/audit"
	"github.com/mifty-dev/seo-audit/config"
	"github.com/mifty-dev/seo-audit/logging"
	"github.com/mifty-dev/seo-audit/middleware"
	"github.com/mifty-dev/seo-audit/service"
	"github.com/mifty-dev/seo-audit/stats"
)

func loadEnv() {
	// Try to load .env.development first (for local development)
	if err := godotenv.Load(".env.development"); err != nil {
		// If .env.development doesn't exist, try regular .env
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	}
}

func setupGinMode(mode string) {
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
}

func main() {
	loadEnv()

	cfg, err := config.New()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	setupGinMode(cfg.Server.GinMode)

	storage, err := stats.NewStorage(cfg.Server.DataDir)
	if err != nil {
		log.Fatal("Failed to initialize stats storage: ", err)
	}

	engine := audit.New(cfg.Audit)
	auditService := service.New(engine, storage, service.Options{
		CacheSize:    cfg.Cache.Size,
		CacheTTL:     cfg.Cache.TTL,
		BatchWorkers: cfg.Batch.Workers,
	})
	rateLimiter := middleware.NewRateLimiter(middleware.Limits{
		Rate:  cfg.RateLimit.Rate,
		Burst: cfg.RateLimit.BucketSize,
	})

	requestStats := logging.Initialize(cfg.Server.DataDir)

	r := gin.Default()

	r.Use(middleware.ErrorHandler())
	r.Use(rateLimiter.RateLimit())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Request statistics tracking
	r.Use(func(c *gin.Context) {
		start := time.Now()

		requestStats.TrackVisitor(c.ClientIP())

		c.Next()

		if c.Request.URL.Path == "/api/audit" && c.Request.Method == "POST" {
			handleTime := float64(time.Since(start).Milliseconds())
			requestStats.TrackAudit(c.GetString("pageTitle"), handleTime, c.Writer.Status() >= 400)
		}

		// Periodically save statistics
		if requestStats.GetStatistics()["totalRequests"].(int)%100 == 0 {
			go requestStats.Save()
		}
	})

	handlers := newHandlers(auditService, storage, requestStats, cfg.Batch.MaxPages)

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})

		api.POST("/audit", handlers.auditPage)
		api.POST("/audit/batch", handlers.auditBatch)

		api.GET("/statistics", handlers.statistics)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%s\n", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := storage.Shutdown(); err != nil {
		log.Printf("Stats storage shutdown error: %v", err)
	}
	if err := requestStats.Save(); err != nil {
		log.Printf("Statistics save error: %v", err)
	}
}
