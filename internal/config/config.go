package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config agrupa toda la configuración de runtime. Se carga desde env
// (con .env opcional vía godotenv para dev local).
type Config struct {
	Port string

	// Postgres. Vacío => repos in-memory (modo dev/handoff).
	DatabaseURL string

	// BaaS de auth (Supabase/GoTrue). Vacío => modo dev con X-Debug-User-ID.
	SupabaseURL     string
	SupabaseAnonKey string

	// Email transaccional (Resend). Vacío => el notifier solo loguea.
	ResendAPIKey string
	MailFrom     string

	// Notificador de dosis perdidas.
	NotifySecret   string // protege el trigger HTTP; vacío => sin check
	NotifySchedule string // cron spec para cmd/notifier
}

// Load lee .env (si existe) y arma la Config. No valida presencia:
// cada componente decide qué hacer cuando su config está vacía.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            getenvDefault("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SupabaseURL:     strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		ResendAPIKey:    os.Getenv("RESEND_API_KEY"),
		MailFrom:        getenvDefault("MAIL_FROM", "MediCare Companion <alerts@medicare-companion.app>"),
		NotifySecret:    os.Getenv("NOTIFY_SECRET"),
		NotifySchedule:  getenvDefault("NOTIFY_SCHEDULE", "0 21 * * *"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
