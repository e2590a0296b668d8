package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"medicare-companion/internal/domain/medications"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE de unique_violation: el insert duplicado del día se traduce a
// la señal de conflicto del dominio.
const uniqueViolation = "23505"

type LogsRepo struct {
	db *sql.DB
}

func NewLogsRepo(db *sql.DB) *LogsRepo {
	return &LogsRepo{db: db}
}

func (r *LogsRepo) Insert(ctx context.Context, l medications.MedicationLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medication_logs (
			id, medication_id, user_id,
			log_date, taken_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		l.ID,
		l.MedicationID,
		l.UserID,
		l.LogDate,
		l.TakenAt,
		l.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return medications.ErrDuplicateLog
		}
		return err
	}
	return nil
}

func (r *LogsRepo) DeleteByID(ctx context.Context, id, userID string) error {
	id = strings.TrimSpace(id)
	userID = strings.TrimSpace(userID)
	if id == "" || userID == "" {
		return medications.ErrNotFound
	}

	// scopeado por dueño: un log ajeno es indistinguible de uno inexistente
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM medication_logs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *LogsRepo) ListByUserAndDate(ctx context.Context, userID, dateKey string) ([]medications.MedicationLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, medication_id, user_id,
			log_date, taken_at, created_at
		FROM medication_logs
		WHERE user_id = $1 AND log_date = $2
	`, userID, dateKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.MedicationLog, 0)
	for rows.Next() {
		var l medications.MedicationLog
		if err := rows.Scan(
			&l.ID,
			&l.MedicationID,
			&l.UserID,
			&l.LogDate,
			&l.TakenAt,
			&l.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}

	return out, rows.Err()
}
