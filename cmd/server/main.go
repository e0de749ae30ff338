package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/sp-admin/auth"
	"github.com/diewo77/sp-admin/internal/config"
	"github.com/diewo77/sp-admin/internal/db"
	"github.com/diewo77/sp-admin/internal/handlers"
	"github.com/diewo77/sp-admin/internal/logger"
	"github.com/diewo77/sp-admin/internal/models"
	"github.com/diewo77/sp-admin/internal/policy"
	"github.com/diewo77/sp-admin/internal/remote"
	"github.com/diewo77/sp-admin/view"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// No logger yet.
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	dbConn, err := db.Open(cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
		log.Info("migrations completed successfully")
		return
	}

	if *seedOnlyFlag {
		if err := db.Seed(dbConn, cfg.Admin); err != nil {
			log.Fatal("seeding failed", zap.Error(err))
		}
		log.Info("seeding completed successfully")
		return
	}

	if cfg.App.Migrations {
		if err := db.Migrate(dbConn); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
		log.Info("migrations completed")
	}
	if err := db.Seed(dbConn, cfg.Admin); err != nil {
		log.Fatal("seeding failed", zap.Error(err))
	}

	view.SetDevMode(cfg.App.Dev)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(newRouterConfig(cfg, dbConn, log), log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.Bool("dev", cfg.App.Dev),
			zap.String("api", cfg.Remote.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	log.Info("server stopped gracefully")
}

// newRouterConfig builds the sessions, the remote client and every handler
// from cfg.
func newRouterConfig(cfg *config.Config, dbConn *gorm.DB, log *zap.Logger) *policy.RouterConfig {
	sessions := auth.NewSessions(cfg.Session.Secret, cfg.Session.TTL,
		auth.WithSecureCookie(cfg.Session.Secure),
		// A deleted admin loses their session on the next request.
		auth.WithVerifier(func(ctx context.Context, s auth.Session) bool {
			var count int64
			dbConn.WithContext(ctx).Model(&models.Admin{}).Where("id = ?", s.AdminID).Count(&count)
			return count > 0
		}),
	)
	client := remote.NewClient(cfg.Remote.BaseURL,
		remote.WithTimeout(cfg.Remote.Timeout),
		remote.WithBreaker(cfg.Remote.Breaker()),
		remote.WithLogger(log.Named("remote")),
	)
	return policy.NewRouterConfig(dbConn, sessions, handlers.Remote{
		Client:              client,
		UploadsBaseURL:      cfg.Remote.UploadsBaseURL,
		PlaceholderImageURL: cfg.Remote.PlaceholderImageURL,
		Logger:              log,
	})
}
