// Package main is the entry point for the news site server. It loads
// configuration, connects to services, sets up routing, and starts the
// HTTP server with graceful shutdown support.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"noticias/internal/auth"
	"noticias/internal/cache"
	"noticias/internal/config"
	"noticias/internal/database"
	"noticias/internal/handlers"
	"noticias/internal/metrics"
	"noticias/internal/render"
	"noticias/internal/router"
	"noticias/internal/service"
	"noticias/internal/session"
	"noticias/internal/storage"
	"noticias/internal/store"
	"noticias/internal/telemetry"
	"noticias/internal/upload"
)

const serviceName = "noticias"

// sessionPruneInterval is how often expired session rows are deleted.
const sessionPruneInterval = 15 * time.Minute

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: JSON in production, text in development.
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"session_backend", cfg.SessionBackend,
		"storage_driver", cfg.StorageDriver,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, serviceName, cfg.OTelDisabled)
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN(), database.Pool{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeSec) * time.Second,
	})
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

	// Seed development data (no-op if articles already exist).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Sessions live in Postgres by default, or in Valkey when configured.
	var backend session.Backend
	switch cfg.SessionBackend {
	case config.SessionBackendValkey:
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		backend = session.NewValkeyBackend(valkeyClient)
	default:
		backend = session.NewPostgresBackend(db)
	}

	secret := cfg.SessionSecret
	if secret == "" {
		secret = randomSecret()
		slog.Warn("SESSION_SECRET not set, using a random secret; sessions end on restart")
	}
	sessionStore := session.NewStore(backend, secret, cfg.IsProduction())
	sessionStore.StartPruner(ctx, sessionPruneInterval)

	credentials := auth.Credentials{Username: cfg.AdminUsername, PasswordHash: cfg.AdminPasswordHash}
	if credentials.PasswordHash == "" {
		credentials.PasswordHash, err = auth.HashPassword("admin")
		if err != nil {
			slog.Error("failed to hash development password", "error", err)
			os.Exit(1)
		}
		slog.Warn("ADMIN_PASSWORD_HASH not set, development login is admin/admin", "username", cfg.AdminUsername)
	}

	m, err := metrics.New()
	if err != nil {
		slog.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	// Object storage is optional outside production: without it the site
	// works but image uploads are refused.
	var uploads *upload.Coordinator
	if cfg.StorageConfigured() {
		objects, err := newStorage(ctx, cfg)
		if err != nil {
			slog.Error("failed to initialize object storage", "error", err)
			os.Exit(1)
		}
		uploads = upload.New(objects, upload.WithOrphanCounter(m.OrphanedObjects))
		slog.Info("object storage connected", "driver", cfg.StorageDriver, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("object storage not configured, image uploads disabled")
	}

	articles := service.NewArticleService(store.NewArticleStore(db), uploads)

	renderer, err := render.New(cfg.SiteName)
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Create handler groups with their dependencies.
	errs := handlers.NewErrors(renderer)
	publicHandlers := handlers.NewPublic(articles, renderer, errs, handlers.Contact{
		Email: cfg.ContactEmail,
		Phone: cfg.ContactPhone,
	})
	authHandlers := handlers.NewAuth(renderer, sessionStore, credentials, errs)
	adminHandlers := handlers.NewAdmin(articles, renderer, errs)

	loginLimiter := router.NewLoginLimiter()
	defer loginLimiter.Stop()

	r := router.New(router.Options{
		Sessions:      sessionStore,
		Metrics:       m,
		LoginLimiter:  loginLimiter,
		SecureCookies: cfg.IsProduction(),
		TrustProxy:    cfg.TrustProxy,
	}, errs, publicHandlers, authHandlers, adminHandlers)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           otelhttp.NewHandler(r, serviceName),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return
	}

	slog.Info("server stopped gracefully")
}

// newStorage connects the configured object storage driver.
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.StorageDriver == config.StorageDriverMinIO {
		return storage.NewMinIO(ctx, storage.MinIOConfig{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.MinIOUseSSL,
			PublicURL: cfg.S3PublicURL,
		})
	}
	return storage.NewS3(ctx, storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PublicURL: cfg.S3PublicURL,
	})
}

// randomSecret returns a throwaway HMAC key for development.
func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
