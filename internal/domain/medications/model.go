package medications

import "time"

// Medication es una medicación activa del régimen diario de un usuario.
// No existe edición: una vez creada, nombre/dosis/hora son inmutables
// (el usuario borra y vuelve a crear).
type Medication struct {
	ID     string
	UserID string

	Name          string
	Dosage        string
	ScheduledTime string // HH:MM, 24h

	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MedicationLog registra que una medicación fue tomada un día calendario.
// Invariante: a lo sumo un log por (medication, log_date); lo garantiza
// el storage al insertar (ErrDuplicateLog).
type MedicationLog struct {
	ID           string
	MedicationID string
	UserID       string

	LogDate string // clave de día YYYY-MM-DD
	TakenAt time.Time

	CreatedAt time.Time
}

// MedicationWithStatus es el read model central de la UI: la medicación
// anotada con su adherencia de hoy. Derivado, nunca se persiste.
type MedicationWithStatus struct {
	Medication

	TakenToday bool
	TakenAt    *time.Time
	LogID      *string
}
