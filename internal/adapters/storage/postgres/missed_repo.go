package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"medicare-companion/internal/domain/notifier"
)

// MissedRepo es la boundary de agregación del notificador: una sola query
// server-side que agrupa por paciente las medicaciones activas sin log de
// hoy cuya hora programada ya pasó.
type MissedRepo struct {
	db *sql.DB
}

func NewMissedRepo(db *sql.DB) *MissedRepo {
	return &MissedRepo{db: db}
}

func (r *MissedRepo) ListMissedToday(ctx context.Context, dateKey string, clockMinutes int) ([]notifier.MissedRow, error) {
	// scheduled_time y notification_time son "HH:MM" validados: se comparan
	// como minutos del día. Un paciente entra recién cuando su propia hora
	// de aviso ya pasó, no solo la de la corrida.
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			p.email,
			p.caretaker_email,
			p.full_name,
			json_agg(m.name ORDER BY m.scheduled_time, m.created_at) AS missed
		FROM medications m
		JOIN profiles p ON p.id = m.user_id
		LEFT JOIN medication_logs l
			ON l.medication_id = m.id AND l.log_date = $1
		WHERE m.is_active
			AND l.id IS NULL
			AND (CAST(split_part(m.scheduled_time, ':', 1) AS int) * 60
				+ CAST(split_part(m.scheduled_time, ':', 2) AS int)) < $2
			AND (CAST(split_part(p.notification_time, ':', 1) AS int) * 60
				+ CAST(split_part(p.notification_time, ':', 2) AS int)) <= $2
		GROUP BY p.id, p.email, p.caretaker_email, p.full_name
		ORDER BY p.email
	`, dateKey, clockMinutes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notifier.MissedRow, 0)
	for rows.Next() {
		var (
			row    notifier.MissedRow
			missed []byte
		)
		if err := rows.Scan(&row.PatientEmail, &row.CaretakerEmail, &row.FullName, &missed); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(missed, &row.MissedMedications); err != nil {
			return nil, fmt.Errorf("decode missed medications: %w", err)
		}
		out = append(out, row)
	}

	return out, rows.Err()
}
