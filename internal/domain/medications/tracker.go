package medications

import (
	"context"
	"sync"
	"time"
)

// StatusTracker mantiene la vista cacheada de adherencia de un usuario y
// aplica mutaciones optimistas sobre ella: el cambio se ve localmente antes
// de confirmar contra el store, con rollback exacto si la escritura falla y
// reconciliación contra el estado autoritativo al asentarse (éxito o error).
//
// La cache se trata como copy-on-write: cada Apply produce un slice nuevo,
// nunca se muta in place. Así el snapshot previo queda intacto y el rollback
// es restaurar un alias, byte por byte.
//
// Las mutaciones se serializan (opMu): conceptualmente hay una sola edición
// optimista en vuelo por tracker, de modo que los snapshots de operaciones
// solapadas nunca se pisan entre sí.
type StatusTracker struct {
	svc    *Service
	userID string

	opMu sync.Mutex // serializa mutaciones completas (begin..settle)

	mu     sync.Mutex // protege cache/loaded/paused/gen
	cache  []MedicationWithStatus
	loaded bool
	paused bool   // hay una mutación en vuelo: los refresh no escriben
	gen    uint64 // invalida refreshes que arrancaron antes de una mutación

	now func() time.Time
}

func NewStatusTracker(svc *Service, userID string) *StatusTracker {
	return &StatusTracker{
		svc:    svc,
		userID: userID,
		now:    time.Now,
	}
}

// List devuelve la vista cacheada, cargándola del store la primera vez.
func (t *StatusTracker) List(ctx context.Context) ([]MedicationWithStatus, error) {
	t.mu.Lock()
	if t.loaded {
		out := t.cache
		t.mu.Unlock()
		return out, nil
	}
	t.mu.Unlock()

	return t.Refresh(ctx)
}

// Refresh resincroniza la cache con el store. Si hay una mutación optimista
// en vuelo, el refresh es un no-op y devuelve la vista optimista actual:
// un refresh de fondo nunca puede pisar una edición antes de su settle.
func (t *StatusTracker) Refresh(ctx context.Context) ([]MedicationWithStatus, error) {
	t.mu.Lock()
	if t.paused {
		out := t.cache
		t.mu.Unlock()
		return out, nil
	}
	startGen := t.gen
	t.mu.Unlock()

	fresh, err := t.svc.ListWithTodayStatus(ctx, t.userID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Si mientras tanto arrancó una mutación, descartamos este resultado:
	// el settle de la mutación traerá el estado bueno.
	if t.paused || t.gen != startGen {
		return t.cache, nil
	}
	t.cache = fresh
	t.loaded = true
	return fresh, nil
}

// MarkTaken marca la medicación como tomada hoy. Optimista: TakenToday y
// TakenAt se ven de inmediato; LogID queda provisional (nil) hasta que la
// reconciliación traiga el id real asignado por el store.
func (t *StatusTracker) MarkTaken(ctx context.Context, medicationID string) error {
	takenAt := t.now()
	return t.mutate(ctx,
		func(old []MedicationWithStatus) []MedicationWithStatus {
			out := make([]MedicationWithStatus, len(old))
			for i, m := range old {
				if m.ID == medicationID {
					m.TakenToday = true
					ta := takenAt
					m.TakenAt = &ta
					m.LogID = nil // provisional: el id real llega en el settle
				}
				out[i] = m
			}
			return out
		},
		func(ctx context.Context) error {
			_, err := t.svc.MarkTaken(ctx, medicationID, t.userID)
			return err
		},
	)
}

// UnmarkTaken revierte la toma de hoy, ubicando la entrada por su log id.
func (t *StatusTracker) UnmarkTaken(ctx context.Context, logID string) error {
	return t.mutate(ctx,
		func(old []MedicationWithStatus) []MedicationWithStatus {
			out := make([]MedicationWithStatus, len(old))
			for i, m := range old {
				if m.LogID != nil && *m.LogID == logID {
					m.TakenToday = false
					m.TakenAt = nil
					m.LogID = nil
				}
				out[i] = m
			}
			return out
		},
		func(ctx context.Context) error {
			return t.svc.UnmarkTaken(ctx, logID, t.userID)
		},
	)
}

// Remove elimina la medicación: desaparece de la vista de inmediato.
func (t *StatusTracker) Remove(ctx context.Context, medicationID string) error {
	return t.mutate(ctx,
		func(old []MedicationWithStatus) []MedicationWithStatus {
			out := make([]MedicationWithStatus, 0, len(old))
			for _, m := range old {
				if m.ID != medicationID {
					out = append(out, m)
				}
			}
			return out
		},
		func(ctx context.Context) error {
			return t.svc.Remove(ctx, medicationID, t.userID)
		},
	)
}

// Add no es optimista: la medicación aparece recién cuando el insert
// confirma y el settle refresca la vista.
func (t *StatusTracker) Add(ctx context.Context, in CreateInput) (Medication, error) {
	t.opMu.Lock()
	defer t.opMu.Unlock()

	m, err := t.svc.Create(ctx, t.userID, in)
	if err != nil {
		return Medication{}, err
	}
	t.settle(ctx)
	return m, nil
}

// mutate ejecuta la máquina Begin/Snapshot/Apply/Commit/Rollback/Settle.
func (t *StatusTracker) mutate(
	ctx context.Context,
	apply func([]MedicationWithStatus) []MedicationWithStatus,
	commit func(context.Context) error,
) error {
	t.opMu.Lock()
	defer t.opMu.Unlock()

	// Begin: pausar refreshes e invalidar los que ya estén en vuelo.
	t.mu.Lock()
	t.paused = true
	t.gen++
	snapshot := t.cache // Snapshot: COW garantiza que nadie lo muta
	t.cache = apply(snapshot)
	t.mu.Unlock()

	// Commit remoto.
	err := commit(ctx)
	if err != nil {
		// Rollback completo al estado previo exacto.
		t.mu.Lock()
		t.cache = snapshot
		t.mu.Unlock()
	}

	// Settle: reconciliar siempre, con éxito o con error. Corrige campos
	// provisionales (LogID real tras un mark) y cura divergencias.
	t.settle(ctx)
	return err
}

func (t *StatusTracker) settle(ctx context.Context) {
	fresh, err := t.svc.ListWithTodayStatus(ctx, t.userID)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = false
	t.gen++
	if err != nil {
		// El store no respondió: la vista queda como esté (optimista o
		// rollbackeada) hasta el próximo refresh que sí llegue.
		return
	}
	t.cache = fresh
	t.loaded = true
}

// TrackerSet es el registro de trackers por usuario: estado inyectado con
// vida atada a la sesión activa, en lugar de una cache global ambiente.
type TrackerSet struct {
	mu     sync.Mutex
	svc    *Service
	byUser map[string]*StatusTracker
}

func NewTrackerSet(svc *Service) *TrackerSet {
	return &TrackerSet{
		svc:    svc,
		byUser: make(map[string]*StatusTracker),
	}
}

// For devuelve el tracker del usuario, creándolo en el primer acceso.
func (s *TrackerSet) For(userID string) *StatusTracker {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byUser[userID]
	if !ok {
		t = NewStatusTracker(s.svc, userID)
		s.byUser[userID] = t
	}
	return t
}

// Drop descarta el tracker del usuario (logout / fin de sesión).
func (s *TrackerSet) Drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
}
