package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medicare-companion/internal/adapters/mail/resend"
	pg "medicare-companion/internal/adapters/storage/postgres"
	"medicare-companion/internal/config"
	"medicare-companion/internal/domain/notifier"
	"medicare-companion/internal/platform/logger"
	"medicare-companion/internal/ports/mail"

	"github.com/robfig/cron/v3"
)

// Runner standalone del notificador de dosis perdidas: el reemplazo del
// cron job + edge function originales. Con -once corre una vez y sale;
// sin flags queda residente corriendo el schedule de NOTIFY_SCHEDULE.
func main() {
	once := flag.Bool("once", false, "run a single pass and exit")
	flag.Parse()

	cfg := config.Load()
	log := logger.NewFromEnv()

	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required for the notifier", nil)
		os.Exit(1)
	}

	db, err := pg.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres open failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer db.Close()

	var mailer mail.Mailer
	if cfg.ResendAPIKey != "" {
		mailer, err = resend.NewClient(resend.Config{
			APIKey: cfg.ResendAPIKey,
			From:   cfg.MailFrom,
		})
		if err != nil {
			log.Error("resend client init failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	} else {
		log.Warn("RESEND_API_KEY not set, emails will only be logged", nil)
		mailer = logMailer{log: log}
	}

	svc := notifier.NewService(pg.NewMissedRepo(db), mailer, log)

	if *once {
		runPass(svc, log)
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.NotifySchedule, func() {
		runPass(svc, log)
	}); err != nil {
		log.Error("invalid NOTIFY_SCHEDULE", map[string]any{
			"schedule": cfg.NotifySchedule,
			"error":    err.Error(),
		})
		os.Exit(1)
	}
	c.Start()
	log.Info("notifier scheduler started", map[string]any{"schedule": cfg.NotifySchedule})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("stopping scheduler", nil)
	<-c.Stop().Done()
}

func runPass(svc *notifier.Service, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary, err := svc.Run(ctx)
	if err != nil {
		log.Error("notifier run failed", map[string]any{"error": err.Error()})
		return
	}
	log.Info("notifier run finished", map[string]any{
		"sent":   summary.Sent,
		"failed": summary.Failed,
		"total":  summary.Total,
	})
}

// logMailer es la variante "logs only" para correr sin proveedor de email.
type logMailer struct {
	log logger.Logger
}

func (m logMailer) Send(_ context.Context, msg mail.Message) error {
	m.log.Info("email (log only)", map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}
