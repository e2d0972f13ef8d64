// Package main is the entry point for the student registry server binary.
// It dispatches three subcommands (serve, migrate, version) via a simple
// switch on os.Args so the binary's full CLI surface is readable in one place
// without requiring a cobra dependency. The serve command runs auto-migration
// on startup so freshly deployed containers never need a separate migration
// step.
package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/student-registry/student-registry/internal/api"
	"github.com/student-registry/student-registry/internal/audit"
	"github.com/student-registry/student-registry/internal/auth"
	"github.com/student-registry/student-registry/internal/config"
	"github.com/student-registry/student-registry/internal/db"
	"github.com/student-registry/student-registry/internal/db/models"
	"github.com/student-registry/student-registry/internal/db/repositories"
	"github.com/student-registry/student-registry/internal/telemetry"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v\n", err)
	}
}

func run() error {
	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch command {
	case "serve":
		return serve(cfg)
	case "migrate":
		if len(os.Args) < 3 {
			return fmt.Errorf("usage: %s migrate <up|down>", os.Args[0])
		}
		return runMigrations(cfg, os.Args[2])
	case "version":
		fmt.Printf("Student Registry v%s\n", version)
		return nil
	default:
		return fmt.Errorf("unknown command: %s\nAvailable commands: serve, migrate, version", command)
	}
}

func serve(cfg *config.Config) error {
	// Initialise structured logging first so all subsequent output uses the
	// configured format and level.
	telemetry.SetupLogger(cfg.Logging.Format, cfg.Logging.Level)

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Fails in production if SR_JWT_SECRET is not set.
	if err := auth.ValidateJWTSecret(); err != nil {
		return fmt.Errorf("security configuration error: %w", err)
	}

	database, err := db.Connect(cfg.Database.Path, cfg.Database.BusyTimeoutMs)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()
	slog.Info("connected to database", "path", cfg.Database.Path)

	telemetry.StartDBStatsCollector(database)

	if err := db.RunMigrations(database, "up"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if v, dirty, err := db.MigrationVersion(database); err != nil {
		slog.Warn("failed to read migration version", "error", err)
	} else {
		slog.Info("database schema ready", "version", v, "dirty", dirty)
	}

	if err := bootstrapAdmin(cfg, database); err != nil {
		slog.Warn("bootstrap admin handling failed", "error", err)
	}

	shipper, err := audit.NewShipper(cfg.Audit.Shippers)
	if err != nil {
		return fmt.Errorf("failed to configure audit shippers: %w", err)
	}

	// Serve Prometheus metrics on a dedicated port so the scrape path is not
	// reachable through the public API ingress.
	if cfg.Telemetry.MetricsEnabled {
		metricsAddr := fmt.Sprintf(":%d", cfg.Telemetry.MetricsPort)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			slog.Info("starting Prometheus metrics server", "addr", metricsAddr)
			srv := &http.Server{
				Addr:         metricsAddr,
				Handler:      mux,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 10 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	router, bgServices := api.NewRouter(cfg, database, shipper)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	bgServices.Shutdown()

	slog.Info("server stopped gracefully")
	return nil
}

func runMigrations(cfg *config.Config, direction string) error {
	telemetry.SetupLogger(cfg.Logging.Format, cfg.Logging.Level)

	database, err := db.Connect(cfg.Database.Path, cfg.Database.BusyTimeoutMs)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, direction); err != nil {
		return fmt.Errorf("migration %s failed: %w", direction, err)
	}
	slog.Info("migrations completed", "direction", direction)
	return nil
}

// bootstrapAdmin creates an initial admin account when the users table is
// empty. The generated password is printed to the log exactly once; only its
// salted hash is stored.
func bootstrapAdmin(cfg *config.Config, database *sql.DB) error {
	if cfg.Auth.BootstrapAdmin == "" {
		return nil
	}

	ctx := context.Background()
	userRepo := repositories.NewUserRepository(database)

	count, err := userRepo.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	passwordBytes := make([]byte, 16)
	if _, err := rand.Read(passwordBytes); err != nil {
		return fmt.Errorf("failed to generate bootstrap password: %w", err)
	}
	password := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(passwordBytes)

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	user := &models.User{
		Username:     cfg.Auth.BootstrapAdmin,
		PasswordHash: hash,
		FullName:     "Administrator",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := userRepo.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	log.Println("")
	log.Println("══════════════════════════════════════════════════════════════════")
	log.Printf("  Created initial admin account %q", user.Username)
	log.Printf("  Password: %s", password)
	log.Println("  This password is shown once. Change it after first login.")
	log.Println("══════════════════════════════════════════════════════════════════")
	log.Println("")

	return nil
}
