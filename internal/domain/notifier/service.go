package notifier

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"

	"medicare-companion/internal/platform/dateutil"
	"medicare-companion/internal/platform/logger"
	"medicare-companion/internal/ports/mail"
)

// Service es el notificador de dosis perdidas. Corre stateless por
// invocación (cron externo o trigger HTTP): una query de agregación, un
// email por paciente con caretaker, y un resumen de la corrida.
type Service struct {
	missed MissedRepository
	mailer mail.Mailer
	log    logger.Logger

	todayKey     func() string
	clockMinutes func() int
}

func NewService(missed MissedRepository, mailer mail.Mailer, log logger.Logger) *Service {
	return &Service{
		missed:       missed,
		mailer:       mailer,
		log:          log,
		todayKey:     dateutil.TodayKey,
		clockMinutes: dateutil.NowClockMinutes,
	}
}

// Run procesa una corrida completa. Fan-out concurrente por paciente con
// "settle all": la falla de un envío se cuenta y no aborta el resto.
// Solo la query de agregación puede fallar la corrida entera.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	rows, err := s.missed.ListMissedToday(ctx, s.todayKey(), s.clockMinutes())
	if err != nil {
		return Summary{}, fmt.Errorf("missed aggregation: %w", err)
	}

	summary := Summary{Total: len(rows)}
	if len(rows) == 0 {
		s.log.Info("no missed medications", nil)
		return summary, nil
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, row := range rows {
		if strings.TrimSpace(row.CaretakerEmail) == "" {
			// sin caretaker configurado: se saltea (cuenta en Total)
			s.log.Info("missed doses, no caretaker configured", map[string]any{
				"patient": row.PatientEmail,
				"missed":  len(row.MissedMedications),
			})
			continue
		}

		wg.Add(1)
		go func(row MissedRow) {
			defer wg.Done()

			err := s.mailer.Send(ctx, mail.Message{
				To:      row.CaretakerEmail,
				Subject: fmt.Sprintf("Missed medications for %s", displayName(row)),
				HTML:    renderEmail(row),
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				s.log.Error("caretaker notification failed", map[string]any{
					"patient":   row.PatientEmail,
					"caretaker": row.CaretakerEmail,
					"err":       err.Error(),
				})
				return
			}
			summary.Sent++
		}(row)
	}

	wg.Wait()

	s.log.Info("missed-dose run finished", map[string]any{
		"sent":   summary.Sent,
		"failed": summary.Failed,
		"total":  summary.Total,
	})
	return summary, nil
}

func displayName(row MissedRow) string {
	if strings.TrimSpace(row.FullName) != "" {
		return row.FullName
	}
	return row.PatientEmail
}

// renderEmail arma el HTML de la notificación: un solo email por paciente
// con la lista completa de medicaciones perdidas de hoy.
func renderEmail(row MissedRow) string {
	var b strings.Builder
	b.WriteString("<h2>Missed medication alert</h2>")
	fmt.Fprintf(&b, "<p><strong>%s</strong> (%s) has not marked the following medications as taken today:</p>",
		html.EscapeString(displayName(row)), html.EscapeString(row.PatientEmail))
	b.WriteString("<ul>")
	for _, name := range row.MissedMedications {
		fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(name))
	}
	b.WriteString("</ul>")
	b.WriteString("<p>This is an automated reminder from MediCare Companion.</p>")
	return b.String()
}
