package router

import (
	"database/sql"
	"net/http"

	mem "medicare-companion/internal/adapters/storage/memory"
	pg "medicare-companion/internal/adapters/storage/postgres"
	"medicare-companion/internal/domain/accounts"
	"medicare-companion/internal/domain/medications"
	"medicare-companion/internal/domain/notifier"
	"medicare-companion/internal/domain/profiles"
	"medicare-companion/internal/middleware"
	"medicare-companion/internal/platform/logger"
	"medicare-companion/internal/ports/auth"
	"medicare-companion/internal/ports/mail"

	_ "medicare-companion/docs" // registro del spec OpenAPI generado

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// AuthVerifier puede ser nil (modo dev: X-Debug-User-ID).
	AuthVerifier auth.AuthVerifier

	// Authenticator puede ser nil: /auth/* responde 503 (modo dev sin BaaS).
	Authenticator auth.Authenticator

	// DB opcional: con DB usa Postgres, sin DB repos in-memory.
	DB *sql.DB

	// Mailer puede ser nil: el trigger del notificador usa un mailer
	// que solo loguea (la variante "logs only" del job original).
	Mailer mail.Mailer

	// NotifySecret protege el trigger HTTP del notificador.
	NotifySecret string

	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Repos: Postgres si hay DB, in-memory para dev/handoff.
	var (
		medsRepo     medications.Repository
		logsRepo     medications.LogRepository
		profilesRepo profiles.Repository
		missedRepo   notifier.MissedRepository
	)

	if opts.DB != nil {
		medsRepo = pg.NewMedicationsRepo(opts.DB)
		logsRepo = pg.NewLogsRepo(opts.DB)
		profilesRepo = pg.NewProfilesRepo(opts.DB)
		missedRepo = pg.NewMissedRepo(opts.DB)
	} else {
		memMeds := mem.NewMedicationsRepo()
		memLogs := mem.NewLogsRepo()
		memProfiles := mem.NewProfilesRepo()
		medsRepo = memMeds
		logsRepo = memLogs
		profilesRepo = memProfiles
		missedRepo = mem.NewMissedRepo(memMeds, memLogs, memProfiles)
	}

	// Services por módulo
	medsSvc := medications.NewService(medsRepo, logsRepo)
	trackers := medications.NewTrackerSet(medsSvc)
	profilesSvc := profiles.NewService(profilesRepo)

	mailer := opts.Mailer
	if mailer == nil {
		mailer = logMailer{log: log}
	}
	notifierSvc := notifier.NewService(missedRepo, mailer, log)

	// Rutas por módulo
	medications.RegisterRoutes(r, trackers)
	profiles.RegisterRoutes(r, profilesSvc)
	notifier.RegisterRoutes(r, notifierSvc, opts.NotifySecret)

	if opts.Authenticator != nil {
		accountsSvc := accounts.NewService(opts.Authenticator, profilesSvc, log)
		accounts.RegisterRoutes(r, accountsSvc)
	} else {
		r.Post("/auth/signup", authUnavailableHandler)
		r.Post("/auth/login", authUnavailableHandler)
	}

	return r
}

func authUnavailableHandler(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "auth backend not configured", http.StatusServiceUnavailable)
}
