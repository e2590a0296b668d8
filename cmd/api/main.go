package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medicare-companion/internal/adapters/auth/supabase"
	"medicare-companion/internal/adapters/mail/resend"
	pg "medicare-companion/internal/adapters/storage/postgres"
	"medicare-companion/internal/config"
	"medicare-companion/internal/platform/logger"
	"medicare-companion/internal/router"
)

// @title        MediCare Companion API
// @version      1.0
// @description  Medication reminders with daily adherence tracking and caretaker notifications.
// @BasePath     /
func main() {
	cfg := config.Load()
	log := logger.NewFromEnv()

	opts := router.Options{
		NotifySecret: cfg.NotifySecret,
		Logger:       log,
	}

	// Postgres opcional: sin DATABASE_URL corre con repos in-memory.
	if cfg.DatabaseURL != "" {
		db, err := pg.Open(cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres open failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		defer db.Close()

		if err := pg.Migrate(db); err != nil {
			log.Error("migrations failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		opts.DB = db
		log.Info("postgres ready", nil)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory storage", nil)
	}

	// Auth opcional: sin Supabase el router acepta X-Debug-User-ID.
	if cfg.SupabaseURL != "" && cfg.SupabaseAnonKey != "" {
		client, err := supabase.NewClient(supabase.Config{
			BaseURL: cfg.SupabaseURL,
			AnonKey: cfg.SupabaseAnonKey,
		})
		if err != nil {
			log.Error("supabase client init failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		opts.AuthVerifier = supabase.NewVerifier(client)
		opts.Authenticator = client
		log.Info("supabase auth enabled", nil)
	} else {
		log.Warn("supabase not configured, running in dev auth mode", nil)
	}

	// Mailer opcional: sin Resend el notifier solo loguea.
	if cfg.ResendAPIKey != "" {
		mailer, err := resend.NewClient(resend.Config{
			APIKey: cfg.ResendAPIKey,
			From:   cfg.MailFrom,
		})
		if err != nil {
			log.Error("resend client init failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		opts.Mailer = mailer
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutting down", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", map[string]any{"error": err.Error()})
	}
}
