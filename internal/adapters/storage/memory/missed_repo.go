package memory

import (
	"context"
	"sort"

	"medicare-companion/internal/domain/notifier"
	"medicare-companion/internal/platform/dateutil"
)

// missedRepo replica en memoria la query de agregación de postgres, para
// dev mode y tests: agrupa por paciente las medicaciones activas sin log
// de hoy cuya hora ya pasó.
type missedRepo struct {
	meds     *medicationsRepo
	logs     *logsRepo
	profiles *profilesRepo
}

func NewMissedRepo(meds *medicationsRepo, logs *logsRepo, profilesRepo *profilesRepo) *missedRepo {
	return &missedRepo{
		meds:     meds,
		logs:     logs,
		profiles: profilesRepo,
	}
}

func (r *missedRepo) ListMissedToday(ctx context.Context, dateKey string, clockMinutes int) ([]notifier.MissedRow, error) {
	type bucket struct {
		row   notifier.MissedRow
		items []missedItem
	}
	byUser := map[string]*bucket{}

	for _, m := range r.meds.allActive() {
		if dateutil.ClockMinutes(m.ScheduledTime) >= clockMinutes {
			continue
		}
		if r.logs.hasLog(m.ID, dateKey) {
			continue
		}

		b, ok := byUser[m.UserID]
		if !ok {
			p, err := r.profiles.GetByID(ctx, m.UserID)
			if err != nil {
				// sin perfil no hay a quién avisar; se ignora en dev
				continue
			}
			// la hora de aviso del paciente manda: antes de ella no entra
			// en la corrida (perfil sin hora configurada entra siempre)
			if nt := dateutil.ClockMinutes(p.NotificationTime); nt > clockMinutes {
				continue
			}
			b = &bucket{row: notifier.MissedRow{
				PatientEmail:   p.Email,
				CaretakerEmail: p.CaretakerEmail,
				FullName:       p.FullName,
			}}
			byUser[m.UserID] = b
		}
		b.items = append(b.items, missedItem{
			name:      m.Name,
			scheduled: m.ScheduledTime,
			createdAt: m.CreatedAt.UnixNano(),
		})
	}

	out := make([]notifier.MissedRow, 0, len(byUser))
	for _, b := range byUser {
		sort.Slice(b.items, func(i, j int) bool {
			if b.items[i].scheduled != b.items[j].scheduled {
				return b.items[i].scheduled < b.items[j].scheduled
			}
			return b.items[i].createdAt < b.items[j].createdAt
		})
		for _, it := range b.items {
			b.row.MissedMedications = append(b.row.MissedMedications, it.name)
		}
		out = append(out, b.row)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].PatientEmail < out[j].PatientEmail
	})
	return out, nil
}

type missedItem struct {
	name      string
	scheduled string
	createdAt int64
}
