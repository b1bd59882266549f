package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"io.winapps.babytracker/internal/config"
	"io.winapps.babytracker/internal/db"
	"io.winapps.babytracker/internal/handlers"
	"io.winapps.babytracker/internal/logger"
	"io.winapps.babytracker/internal/metrics"
	"io.winapps.babytracker/internal/middleware"
	"io.winapps.babytracker/internal/session"
	"io.winapps.babytracker/internal/storage"
	"io.winapps.babytracker/internal/store"
	"io.winapps.babytracker/internal/uploader"
	"io.winapps.babytracker/internal/view"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	sugar := zapLogger.Sugar()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Initialize PostgreSQL
	postgresDB, err := db.InitPostgres(ctx, cfg.DB)
	if err != nil {
		sugar.Fatalw("Failed to initialize PostgreSQL", "error", err)
	}
	defer postgresDB.Close()

	applied, err := db.Migrate(ctx, postgresDB)
	if err != nil {
		sugar.Fatalw("Failed to apply migrations", "error", err)
	}
	if len(applied) > 0 {
		sugar.Infow("Applied migrations", "versions", applied)
	}

	// Initialize Redis
	redisClient, err := db.InitRedis(ctx, cfg.Redis)
	if err != nil {
		sugar.Fatalw("Failed to initialize Redis", "error", err)
	}
	defer redisClient.Close()

	// Initialize object storage
	objects, closeObjects, err := storage.Open(ctx, cfg.Storage, sugar)
	if err != nil {
		sugar.Fatalw("Failed to initialize object storage", "driver", cfg.Storage.Driver, "error", err)
	}
	defer closeObjects()
	if err := storage.EnsureBuckets(ctx, objects); err != nil {
		sugar.Fatalw("Failed to prepare buckets", "error", err)
	}

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	m.RegisterPoolStats(postgresDB)

	views := view.NewController(view.Deps{
		Milestones: store.NewMilestoneRepo(postgresDB),
		Comments:   store.NewCommentRepo(postgresDB),
		Albums:     store.NewAlbumRepo(postgresDB),
		AlbumItems: store.NewAlbumItemRepo(postgresDB),
		Uploads: uploader.New(objects, uploader.Options{
			StagingDir: cfg.Upload.StagingDir,
			MaxBytes:   cfg.Upload.MaxBytes,
			MaxFiles:   cfg.Upload.MaxStagedFiles,
			Observer:   m,
		}, sugar),
		States: view.NewRedisStateStore(redisClient, cfg.Session.TTL),
		Guard:  view.NewRedisGuard(redisClient, cfg.Session.InFlightTTL),
	}, view.Options{
		Birthday:      cfg.BabyBirthday,
		MaxFiles:      cfg.Upload.MaxStagedFiles,
		CommitTimeout: cfg.Upload.CommitTimeout,
		PreviewBase:   "/api/v1/drafts/files",
	}, sugar)

	gate := session.NewGatekeeper(cfg.SitePassword, session.NewRedisFlagStore(redisClient), cfg.Session.TTL, sugar)

	// multipart bodies may carry a full draft plus form overhead
	maxRequest := cfg.Upload.MaxBytes*int64(cfg.Upload.MaxStagedFiles) + 1<<20

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(gate, views, cfg.Session, sugar)
	viewHandler := handlers.NewViewHandler(views, maxRequest, sugar)
	entryHandler := handlers.NewEntryHandler(views, sugar)
	albumHandler := handlers.NewAlbumHandler(views, maxRequest, sugar)

	// Initialize Gin router
	router := gin.New()
	router.Use(
		middleware.RequestIDMiddleware(),
		middleware.RecoveryMiddleware(sugar),
		middleware.RequestLoggingMiddleware(sugar),
		middleware.MetricsMiddleware(m),
		middleware.SecurityHeadersMiddleware(cfg.Storage.MediaSources()),
		middleware.CORSMiddleware(cfg.CORSOrigin),
	)

	// Define routes
	v1 := router.Group("/api/v1")
	{
		sessions := v1.Group("/session")
		{
			sessions.POST("/login", sessionHandler.Login)
			sessions.POST("/logout", sessionHandler.Logout)
			sessions.GET("", sessionHandler.GetSession)
		}

		// Protected routes
		private := v1.Group("")
		private.Use(middleware.SessionMiddleware(gate, cfg.Session.CookieName))
		{
			private.GET("/view", viewHandler.GetView)
			private.POST("/view/tab", viewHandler.SwitchTab)
			private.POST("/view/filter", viewHandler.SetFilter)
			private.POST("/view/birthday", viewHandler.SetBirthday)
			private.POST("/view/albums/:id/open", viewHandler.OpenAlbum)
			private.POST("/view/albums/close", viewHandler.CloseAlbum)

			private.POST("/drafts/files", viewHandler.StageFiles)
			private.DELETE("/drafts/files/:index", viewHandler.RemoveStagedFile)
			private.GET("/drafts/files/:index", viewHandler.PreviewStagedFile)

			private.POST("/entries", entryHandler.CreateEntry)
			private.POST("/entries/:id/like", entryHandler.LikeEntry)
			private.PATCH("/entries/:id", entryHandler.UpdateEntry)
			private.DELETE("/entries/:id", entryHandler.DeleteEntry)
			private.GET("/entries/:id/comments", entryHandler.ListComments)
			private.POST("/entries/:id/comments", entryHandler.AddComment)
			private.DELETE("/entries/:id/comments/:commentId", entryHandler.DeleteComment)

			private.POST("/albums", albumHandler.CreateAlbum)
			private.PATCH("/albums/:id", albumHandler.UpdateAlbum)
			private.DELETE("/albums/:id", albumHandler.DeleteAlbum)
			private.POST("/albums/:id/items", albumHandler.AddAlbumItems)
			private.PATCH("/albums/:id/items/:itemId", albumHandler.UpdateAlbumItem)
			private.DELETE("/albums/:id/items/:itemId", albumHandler.DeleteAlbumItem)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{"status": "ok"}
		if err := postgresDB.Ping(c.Request.Context()); err != nil {
			status, body = http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()}
		} else if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			status, body = http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()}
		}
		c.JSON(status, body)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Serve media files written by the local driver
	if local, ok := objects.(*storage.LocalStore); ok {
		router.Static("/media", local.Root())
	}

	// Create HTTP server
	addr := ":" + strconv.Itoa(cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		sugar.Infow("Server starting", "addr", addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugar.Info("Shutting down server...")

	// Uploads run detached from requests, so allow them time to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Server forced to shutdown", "error", err)
	}

	sugar.Info("Server exited")
}
