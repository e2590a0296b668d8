package medications

import (
	"context"
	"errors"
)

var (
	// ErrDuplicateLog lo devuelve el storage cuando ya existe un log para
	// el mismo (medication, log_date). Es la señal de conflicto que el
	// service traduce a ErrAlreadyTakenToday.
	ErrDuplicateLog = errors.New("duplicate log for medication and date")

	ErrNotFound = errors.New("not found")
)

// Todas las operaciones por id van además scopeadas por dueño: acá no hay
// RLS del lado del store, así que el user_id en la query es lo que impide
// tocar filas ajenas.
type Repository interface {
	Create(ctx context.Context, m Medication) error

	// GetByUser devuelve la medicación solo si pertenece al usuario;
	// ErrNotFound tanto si no existe como si es de otro.
	GetByUser(ctx context.Context, id, userID string) (Medication, error)

	// Delete borra solo si (id, userID) matchea; ErrNotFound si no.
	Delete(ctx context.Context, id, userID string) error

	// ListActiveByUser devuelve solo medicaciones activas, ordenadas por
	// hora programada asc con desempate determinístico (created_at, id).
	ListActiveByUser(ctx context.Context, userID string) ([]Medication, error)
}

type LogRepository interface {
	// Insert rechaza duplicados por (medication_id, log_date) con ErrDuplicateLog.
	Insert(ctx context.Context, l MedicationLog) error

	// DeleteByID borra solo si el log pertenece al usuario; ErrNotFound si no.
	DeleteByID(ctx context.Context, id, userID string) error

	ListByUserAndDate(ctx context.Context, userID, dateKey string) ([]MedicationLog, error)
}
