// Package main is the entry point for the TechBlog server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"techblog/internal/blog"
	"techblog/internal/cache"
	"techblog/internal/config"
	"techblog/internal/database"
	"techblog/internal/handlers"
	"techblog/internal/identity"
	"techblog/internal/logging"
	"techblog/internal/media"
	"techblog/internal/middleware"
	"techblog/internal/render"
	"techblog/internal/router"
	"techblog/internal/session"
	"techblog/internal/storage"
	"techblog/internal/store"
)

// authAttemptsPerMinute bounds sign-in, sign-up and token requests per IP.
const authAttemptsPerMinute = 10

func main() {
	// Load configuration from environment variables (and .env, if present).
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON elsewhere.
	logger, logCloser := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		JSON:       !cfg.IsDev(),
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	defer logCloser.Close()
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"content_mode", cfg.ContentMode,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions, drafts, rendered bodies).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	secureCookies := cfg.SecureCookies()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Connect to S3-compatible object storage (optional: uploads fail with
	// a notification when it is missing).
	var objects media.ObjectStore
	storageClient, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3PublicURL)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		objects = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, uploads disabled")
	}

	limits := media.Limits{
		Attachment: cfg.AttachmentMaxBytes(),
		Inline:     cfg.InlineUploadMaxBytes(),
	}
	uploader := media.NewUploader(objects, cfg.S3Bucket, media.WithLimits(limits))

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	profileStore := store.NewProfileStore(db)
	categoryStore := store.NewCategoryStore(db)
	postStore := store.NewPostStore(db)

	users := identity.NewProvider(userStore, profileStore)
	tokens := identity.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	// Bodies cached by a previous run may have been rendered in the other
	// content mode.
	bodies := cache.NewBodyCache(valkeyClient, cache.DefaultBodyTTL)
	bodies.InvalidateAll(context.Background())

	format := blog.FormatFor(cfg.ContentMode)
	drafts := cache.NewDraftStore[blog.Draft](valkeyClient, cache.DefaultDraftTTL)
	listing := blog.NewListing(postStore, categoryStore)
	presentation := blog.NewPresentation(postStore, format, bodies)
	authoring := blog.NewAuthoring(postStore, categoryStore, drafts, uploader, format, blog.WithBodyCache(bodies))

	renderer, err := render.New(cfg.SiteName)
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	authLimiter := middleware.NewRateLimiter(authAttemptsPerMinute, time.Minute)
	defer authLimiter.Stop()

	r := router.New(router.Options{
		Secure:      secureCookies,
		MaxBody:     cfg.MaxRequestBytes(),
		CORSOrigins: cfg.CORSOrigins,
		AuthLimiter: authLimiter,
	}, sessionStore, tokens, router.Handlers{
		Auth:   handlers.NewAuth(renderer, sessionStore, users),
		Public: handlers.NewPublic(renderer, listing, presentation),
		Drafts: handlers.NewDrafts(renderer, authoring, listing, limits),
		API:    handlers.NewAPI(users, tokens, listing),
	})

	// WriteTimeout must accommodate large attachment uploads relayed to the
	// object store.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
