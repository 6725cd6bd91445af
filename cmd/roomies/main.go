package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/roomiesapp/roomies/internal/backup"
	"github.com/roomiesapp/roomies/internal/database"
	"github.com/roomiesapp/roomies/internal/email"
	"github.com/roomiesapp/roomies/internal/logging"
	"github.com/roomiesapp/roomies/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("ROOMIES_LOG_LEVEL"))

	port := os.Getenv("ROOMIES_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("ROOMIES_DB_PATH")
	if dbPath == "" {
		dbPath = "roomies.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	emailClient := email.NewClient(os.Getenv("ROOMIES_POSTMARK_TOKEN"), os.Getenv("ROOMIES_FROM_EMAIL"))

	cfg := server.Config{
		EmailClient:     emailClient,
		VAPIDPublicKey:  os.Getenv("ROOMIES_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("ROOMIES_VAPID_PRIVATE_KEY"),
		Backup: backup.Config{
			S3: backup.S3Config{
				Bucket:    os.Getenv("ROOMIES_S3_BUCKET"),
				Region:    os.Getenv("ROOMIES_S3_REGION"),
				Endpoint:  os.Getenv("ROOMIES_S3_ENDPOINT"),
				AccessKey: os.Getenv("ROOMIES_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("ROOMIES_S3_SECRET_KEY"),
			},
			DBPath:        dbPath,
			Passphrase:    os.Getenv("ROOMIES_BACKUP_PASSPHRASE"),
			ScheduleHour:  envInt("ROOMIES_BACKUP_HOUR", 3),
			RetentionDays: envInt("ROOMIES_BACKUP_RETENTION_DAYS", 30),
		},
	}

	srv := server.New(db, cfg, logger)

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(bgCtx)
		defer sched.Stop()
	}
	if mgr := srv.BackupManager(); mgr.Enabled() {
		mgr.Start(bgCtx)
		defer mgr.Stop()
	}

	// Hourly cleanup of expired sessions, stale login codes, and rate
	// limiter buckets.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					slog.Error("cleanup expired sessions", "error", err)
				} else if n > 0 {
					slog.Info("cleaned up expired sessions", "count", n)
				}
				if n, err := srv.MagicLinkStore().DeleteExpired(); err != nil {
					slog.Error("cleanup expired codes", "error", err)
				} else if n > 0 {
					slog.Info("cleaned up expired codes", "count", n)
				}
				srv.RateLimiter().Cleanup()
			case <-bgCtx.Done():
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("roomies starting", "addr", ":"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	bgCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
