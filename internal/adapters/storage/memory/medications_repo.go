package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"medicare-companion/internal/domain/medications"
)

type medicationsRepo struct {
	mu   sync.RWMutex
	byID map[string]medications.Medication
}

func NewMedicationsRepo() *medicationsRepo {
	return &medicationsRepo{
		byID: make(map[string]medications.Medication),
	}
}

func (r *medicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("medication id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return errors.New("medication already exists")
	}
	r.byID[m.ID] = m
	return nil
}

func (r *medicationsRepo) GetByUser(ctx context.Context, id, userID string) (medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.byID[id]
	if !exists || m.UserID != userID {
		return medications.Medication{}, medications.ErrNotFound
	}
	return m, nil
}

func (r *medicationsRepo) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// misma semántica que el DELETE scopeado de postgres: ajeno == inexistente
	m, exists := r.byID[id]
	if !exists || m.UserID != userID {
		return medications.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *medicationsRepo) ListActiveByUser(ctx context.Context, userID string) ([]medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.Medication, 0)
	for _, m := range r.byID {
		if m.UserID == userID && m.IsActive {
			out = append(out, m)
		}
	}

	// mismo orden que la query real: hora asc, created_at asc, id asc
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledTime != out[j].ScheduledTime {
			return out[i].ScheduledTime < out[j].ScheduledTime
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

// allActive alimenta el MissedRepo in-memory.
func (r *medicationsRepo) allActive() []medications.Medication {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.Medication, 0, len(r.byID))
	for _, m := range r.byID {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out
}
