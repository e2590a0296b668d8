package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"medicare-companion/internal/domain/medications"
)

type logsRepo struct {
	mu   sync.RWMutex
	byID map[string]medications.MedicationLog
}

func NewLogsRepo() *logsRepo {
	return &logsRepo{
		byID: make(map[string]medications.MedicationLog),
	}
}

func (r *logsRepo) Insert(ctx context.Context, l medications.MedicationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(l.ID) == "" {
		return errors.New("log id required")
	}

	// misma semántica que el unique de postgres
	for _, existing := range r.byID {
		if existing.MedicationID == l.MedicationID && existing.LogDate == l.LogDate {
			return medications.ErrDuplicateLog
		}
	}

	r.byID[l.ID] = l
	return nil
}

func (r *logsRepo) DeleteByID(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, exists := r.byID[id]
	if !exists || l.UserID != userID {
		return medications.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *logsRepo) ListByUserAndDate(ctx context.Context, userID, dateKey string) ([]medications.MedicationLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.MedicationLog, 0)
	for _, l := range r.byID {
		if l.UserID == userID && l.LogDate == dateKey {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *logsRepo) hasLog(medicationID, dateKey string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.byID {
		if l.MedicationID == medicationID && l.LogDate == dateKey {
			return true
		}
	}
	return false
}
