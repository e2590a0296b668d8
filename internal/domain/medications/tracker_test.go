package medications

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func newTestTracker(t *testing.T, repo *testRepo, logs *testLogRepo, userID string) (*Service, *StatusTracker) {
	t.Helper()
	svc := newTestService(repo, logs)
	tr := NewStatusTracker(svc, userID)
	tr.now = func() time.Time {
		return time.Date(2025, 12, 22, 10, 30, 0, 0, time.UTC)
	}
	return svc, tr
}

func TestTracker_MarkTaken_OptimisticThenReconciled(t *testing.T) {
	repo := newTestRepo()
	logs := newTestLogRepo()
	svc, tr := newTestTracker(t, repo, logs, "user-1")
	ctx := context.Background()

	a := seedMedication(t, svc, "user-1", "A", "08:00")
	seedMedication(t, svc, "user-1", "B", "20:00")

	before, err := tr.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	for _, m := range before {
		if m.TakenToday {
			t.Fatalf("expected no medication taken yet: %+v", m)
		}
	}

	if err := tr.MarkTaken(ctx, a.ID); err != nil {
		t.Fatalf("MarkTaken error: %v", err)
	}

	// tras el settle, el log id es el real asignado por el store
	after, err := tr.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	var found bool
	for _, m := range after {
		if m.ID != a.ID {
			continue
		}
		found = true
		if !m.TakenToday || m.LogID == nil {
			t.Fatalf("A should be taken with real log id: %+v", m)
		}
		if _, ok := logs.byID[*m.LogID]; !ok {
			t.Fatalf("log id %s not present in store", *m.LogID)
		}
	}
	if !found {
		t.Fatalf("medication A missing after settle")
	}
}

func TestTracker_MarkTaken_OptimisticVisibleBeforeCommit(t *testing.T) {
	repo := newTestRepo()
	logs := newTestLogRepo()
	svc, tr := newTestTracker(t, repo, logs, "user-1")
	ctx := context.Background()

	a := seedMedication(t, svc, "user-1", "A", "08:00")
	if _, err := tr.List(ctx); err != nil {
		t.Fatalf("List error: %v", err)
	}

	// capturamos la vista en pleno vuelo: el commit lee la cache (vía el
	// Refresh pausado) antes de confirmar contra el store
	var midFlight []MedicationWithStatus
	err := tr.mutate(ctx,
		func(old []MedicationWithStatus) []MedicationWithStatus {
			out := make([]MedicationWithStatus, len(old))
			for i, m := range old {
				if m.ID == a.ID {
					m.TakenToday = true
					ta := tr.now()
					m.TakenAt = &ta
					m.LogID = nil
				}
				out[i] = m
			}
			return out
		},
		func(ctx context.Context) error {
			midFlight, _ = tr.Refresh(ctx) // pausado: devuelve la vista optimista
			_, err := svc.MarkTaken(ctx, a.ID, "user-1")
			return err
		},
	)
	if err != nil {
		t.Fatalf("mutate error: %v", err)
	}

	if len(midFlight) != 1 {
		t.Fatalf("expected 1 entry mid flight, got %d", len(midFlight))
	}
	if !midFlight[0].TakenToday {
		t.Fatalf("optimistic state not visible before commit: %+v", midFlight[0])
	}
	if midFlight[0].LogID != nil {
		t.Fatalf("log id must stay provisional (nil) before settle, got %v", *midFlight[0].LogID)
	}
}

func TestTracker_MarkTaken_FailureRollsBackExactly(t *testing.T) {
	repo := newTestRepo()
	logs := newTestLogRepo()
	svc, tr := newTestTracker(t, repo, logs, "user-1")
	ctx := context.Background()

	a := seedMedication(t, svc, "user-1", "A", "08:00")
	seedMedication(t, svc, "user-1", "B", "20:00")

	before, err := tr.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}

	boom := errors.New("store down")
	logs.insertErr = boom
	logs.listErr = boom // el settle tampoco llega al store

	if err := tr.MarkTaken(ctx, a.ID); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}

	after, err := tr.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("rollback must restore the exact snapshot:\nbefore=%+v\nafter=%+v", before, after)
	}
}

func TestTracker_Unmark_RoundTripClearsStatus(t *testing.T) {
	repo := newTestRepo()
	logs := newTestLogRepo()
	svc, tr := newTestTracker(t, repo, logs, "user-1")
	ctx := context.Background()

	a := seedMedication(t, svc, "user-1", "A", "08:00")
	if _, err := tr.List(ctx); err != nil {
		t.Fatalf("List error: %v", err)
	}

	if err := tr.MarkTaken(ctx, a.ID); err != nil {
		t.Fatalf("MarkTaken error: %v", err)
	}

	cur, _ := tr.List(ctx)
	if cur[0].LogID == nil {
		t.Fatalf("expected real log id after settle")
	}

	if err := tr.UnmarkTaken(ctx, *cur[0].LogID); err != nil {
		t.Fatalf("UnmarkTaken error: %v", err)
	}

	final, _ := tr.List(ctx)
	if final[0].TakenToday || final[0].TakenAt != nil || final[0].LogID != nil {
		t.Fatalf("expected {false, nil, nil} after unmark, got %+v", final[0])
	}
}

func TestTracker_Remove_DropsEntryImmediately(t *testing.T) {
	repo := newTestRepo()
	logs := newTestLogRepo()
	svc, tr := newTestTracker(t, repo, logs, "user-1")
	ctx := context.Background()

	a := seedMedication(t, svc, "user-1", "A", "08:00")
	seedMedication(t, svc, "user-1", "B", "20:00")
	if _, err := tr.List(ctx); err != nil {
		t.Fatalf("List error: %v", err)
	}

	if err := tr.Remove(ctx, a.ID); err != nil {
		t.Fatalf("Remove error: %v", err)
	}

	out, _ := tr.List(ctx)
	if len(out) != 1 || out[0].Name != "B" {
		t.Fatalf("expected only B after delete, got %+v", out)
	}
	if _, ok := repo.byID[a.ID]; ok {
		t.Fatalf("medication A still in store after delete")
	}
}

func TestTracker_Add_NotOptimistic(t *testing.T) {
	repo := newTestRepo()
	logs := newTestLogRepo()
	_, tr := newTestTracker(t, repo, logs, "user-1")
	ctx := context.Background()

	if _, err := tr.List(ctx); err != nil {
		t.Fatalf("List error: %v", err)
	}

	m, err := tr.Add(ctx, CreateInput{Name: "C", Dosage: "5mg", ScheduledTime: "12:00"})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	out, _ := tr.List(ctx)
	if len(out) != 1 || out[0].ID != m.ID {
		t.Fatalf("expected C visible after settle, got %+v", out)
	}
}

func TestTracker_Add_InvalidInputDoesNotTouchCache(t *testing.T) {
	repo := newTestRepo()
	logs := newTestLogRepo()
	svc, tr := newTestTracker(t, repo, logs, "user-1")
	ctx := context.Background()

	seedMedication(t, svc, "user-1", "A", "08:00")
	before, _ := tr.List(ctx)

	if _, err := tr.Add(ctx, CreateInput{Name: "", Dosage: "5mg"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	after, _ := tr.List(ctx)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("failed add must not change the cached view")
	}
}

func TestTracker_RefreshDuringMutationIsNoOp(t *testing.T) {
	repo := newTestRepo()
	logs := newTestLogRepo()
	svc, tr := newTestTracker(t, repo, logs, "user-1")
	ctx := context.Background()

	a := seedMedication(t, svc, "user-1", "A", "08:00")
	if _, err := tr.List(ctx); err != nil {
		t.Fatalf("List error: %v", err)
	}

	err := tr.mutate(ctx,
		func(old []MedicationWithStatus) []MedicationWithStatus {
			out := make([]MedicationWithStatus, len(old))
			copy(out, old)
			out[0].TakenToday = true
			return out
		},
		func(ctx context.Context) error {
			// un refresh concurrente mientras la mutación está en vuelo
			got, err := tr.Refresh(ctx)
			if err != nil {
				return err
			}
			if !got[0].TakenToday {
				t.Fatalf("refresh during mutation returned stale (non-optimistic) view")
			}
			_, err = svc.MarkTaken(ctx, a.ID, "user-1")
			return err
		},
	)
	if err != nil {
		t.Fatalf("mutate error: %v", err)
	}
}

func TestTrackerSet_ScopedPerUser(t *testing.T) {
	repo := newTestRepo()
	logs := newTestLogRepo()
	svc := newTestService(repo, logs)
	set := NewTrackerSet(svc)

	t1 := set.For("user-1")
	t2 := set.For("user-2")
	if t1 == t2 {
		t.Fatalf("trackers must be per user")
	}
	if set.For("user-1") != t1 {
		t.Fatalf("same user must reuse its tracker")
	}

	set.Drop("user-1")
	if set.For("user-1") == t1 {
		t.Fatalf("Drop must discard the session tracker")
	}
}
