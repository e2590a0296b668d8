package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"medicare-companion/internal/domain/profiles"
)

type ProfilesRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewProfilesRepo(db *sql.DB) *ProfilesRepo {
	return &ProfilesRepo{db: db, now: time.Now}
}

func (r *ProfilesRepo) Create(ctx context.Context, p profiles.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (
			id, email, full_name, caretaker_email,
			timezone, notification_time,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		p.ID,
		p.Email,
		p.FullName,
		p.CaretakerEmail,
		p.Timezone,
		p.NotificationTime,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *ProfilesRepo) GetByID(ctx context.Context, id string) (profiles.Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return profiles.Profile{}, profiles.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, email, full_name, caretaker_email,
			timezone, notification_time,
			created_at, updated_at
		FROM profiles
		WHERE id = $1
	`, id)

	var p profiles.Profile
	if err := row.Scan(
		&p.ID,
		&p.Email,
		&p.FullName,
		&p.CaretakerEmail,
		&p.Timezone,
		&p.NotificationTime,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return profiles.Profile{}, profiles.ErrNotFound
		}
		return profiles.Profile{}, err
	}

	return p, nil
}

func (r *ProfilesRepo) UpdateCaretakerEmail(ctx context.Context, id, email string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET caretaker_email = $2, updated_at = $3
		WHERE id = $1
	`, id, email, r.now())
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return profiles.ErrNotFound
	}
	return nil
}
