package medications

import (
	"context"
	"errors"
	"strings"
	"time"

	"medicare-companion/internal/platform/dateutil"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyTakenToday es el error de dominio para el doble "marcar
	// tomada" del mismo día. Único punto de enforcement en escritura.
	ErrAlreadyTakenToday = errors.New("already marked as taken for today")
)

const defaultScheduledTime = "09:00"

type Service struct {
	repo Repository
	logs LogRepository

	now      func() time.Time
	todayKey func() string
}

func NewService(repo Repository, logs LogRepository) *Service {
	return &Service{
		repo:     repo,
		logs:     logs,
		now:      time.Now,
		todayKey: dateutil.TodayKey,
	}
}

type CreateInput struct {
	Name          string
	Dosage        string
	ScheduledTime string
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Medication, error) {
	if strings.TrimSpace(userID) == "" {
		return Medication{}, ErrInvalidInput
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 100 {
		return Medication{}, ErrInvalidInput
	}
	dosage := strings.TrimSpace(in.Dosage)
	if dosage == "" || len(dosage) > 50 {
		return Medication{}, ErrInvalidInput
	}

	scheduled := strings.TrimSpace(in.ScheduledTime)
	if scheduled == "" {
		scheduled = defaultScheduledTime
	} else {
		normalized, err := dateutil.ParseClock(scheduled)
		if err != nil {
			return Medication{}, ErrInvalidInput
		}
		scheduled = normalized
	}

	now := s.now()
	m := Medication{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          name,
		Dosage:        dosage,
		ScheduledTime: scheduled,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

func (s *Service) Remove(ctx context.Context, id, userID string) error {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(userID) == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id, userID)
}

// ListWithTodayStatus es el join de adherencia: medicaciones activas del
// usuario + logs de hoy, combinados en MedicationWithStatus. Cualquier
// error de lectura aborta todo; nunca se devuelve una vista parcial.
func (s *Service) ListWithTodayStatus(ctx context.Context, userID string) ([]MedicationWithStatus, error) {
	meds, err := s.repo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	logs, err := s.logs.ListByUserAndDate(ctx, userID, s.todayKey())
	if err != nil {
		return nil, err
	}

	// a lo sumo un log por medicación (lo garantiza el unique del storage)
	byMedID := make(map[string]MedicationLog, len(logs))
	for _, l := range logs {
		byMedID[l.MedicationID] = l
	}

	out := make([]MedicationWithStatus, 0, len(meds))
	for _, m := range meds {
		ws := MedicationWithStatus{Medication: m}
		if l, ok := byMedID[m.ID]; ok {
			takenAt := l.TakenAt
			logID := l.ID
			ws.TakenToday = true
			ws.TakenAt = &takenAt
			ws.LogID = &logID
		}
		out = append(out, ws)
	}
	return out, nil
}

// MarkTaken inserta el log de hoy para la medicación. Un duplicado del
// mismo día vuelve como ErrAlreadyTakenToday, no como error genérico.
func (s *Service) MarkTaken(ctx context.Context, medicationID, userID string) (MedicationLog, error) {
	medicationID = strings.TrimSpace(medicationID)
	if medicationID == "" || strings.TrimSpace(userID) == "" {
		return MedicationLog{}, ErrInvalidInput
	}

	// la medicación tiene que ser del usuario: sin este check cualquier
	// autenticado podría loguear tomas ajenas
	if _, err := s.repo.GetByUser(ctx, medicationID, userID); err != nil {
		return MedicationLog{}, err
	}

	now := s.now()
	l := MedicationLog{
		ID:           uuid.NewString(),
		MedicationID: medicationID,
		UserID:       userID,
		LogDate:      s.todayKey(),
		TakenAt:      now,
		CreatedAt:    now,
	}

	if err := s.logs.Insert(ctx, l); err != nil {
		if errors.Is(err, ErrDuplicateLog) {
			return MedicationLog{}, ErrAlreadyTakenToday
		}
		return MedicationLog{}, err
	}
	return l, nil
}

func (s *Service) UnmarkTaken(ctx context.Context, logID, userID string) error {
	logID = strings.TrimSpace(logID)
	if logID == "" || strings.TrimSpace(userID) == "" {
		return ErrInvalidInput
	}
	return s.logs.DeleteByID(ctx, logID, userID)
}
