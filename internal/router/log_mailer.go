package router

import (
	"context"

	"medicare-companion/internal/platform/logger"
	"medicare-companion/internal/ports/mail"
)

// logMailer es el fallback sin RESEND_API_KEY: no envía nada, deja el aviso
// en el log. Es la variante "log only" del job de dosis perdidas original.
type logMailer struct {
	log logger.Logger
}

func (m logMailer) Send(_ context.Context, msg mail.Message) error {
	m.log.Info("mailer disabled, would send", map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}
