package notifier

import "context"

// MissedRow es lo que devuelve la agregación server-side: un paciente con
// al menos una medicación activa sin log de hoy ya pasada su hora.
type MissedRow struct {
	PatientEmail   string
	CaretakerEmail string // vacío => se saltea, no es error
	FullName       string

	MissedMedications []string
}

// MissedRepository es la boundary de agregación contra el store.
// clockMinutes es el umbral "ya pasó su hora" en minutos del día.
type MissedRepository interface {
	ListMissedToday(ctx context.Context, dateKey string, clockMinutes int) ([]MissedRow, error)
}

// Summary es el resultado de una corrida: el paciente sin caretaker cuenta
// en Total pero no en Sent ni Failed.
type Summary struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}
