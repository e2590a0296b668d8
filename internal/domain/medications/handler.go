package medications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"medicare-companion/internal/middleware"
	"medicare-companion/internal/platform/dateutil"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, trackers *TrackerSet) {
	r.Route("/medications", func(mr chi.Router) {
		mr.Get("/", listMedicationsHandler(trackers))
		mr.Post("/", addMedicationHandler(trackers))
		mr.Delete("/{medID}", deleteMedicationHandler(trackers))

		mr.Post("/{medID}/taken", markTakenHandler(trackers))
		mr.Delete("/taken/{logID}", unmarkTakenHandler(trackers))
	})
}

type createMedicationRequest struct {
	Name          string `json:"name"`
	Dosage        string `json:"dosage"`
	ScheduledTime string `json:"scheduled_time"` // HH:MM opcional (default 09:00)
}

type medicationResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Dosage        string    `json:"dosage"`
	ScheduledTime string    `json:"scheduled_time"`
	DisplayTime   string    `json:"display_time"` // "9:00 PM", listo para la UI
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type medicationStatusResponse struct {
	medicationResponse

	TakenToday bool       `json:"taken_today"`
	TakenAt    *time.Time `json:"taken_at"`
	LogID      *string    `json:"log_id"`
}

// listMedicationsHandler godoc
// @Summary      Medicaciones del usuario con estado de adherencia de hoy
// @Tags         medications
// @Produce      json
// @Success      200 {array} medications.medicationStatusResponse
// @Failure      401 {string} string "unauthorized"
// @Router       /medications [get]
func listMedicationsHandler(trackers *TrackerSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// refresh=1 fuerza resincronizar (no-op si hay mutación en vuelo)
		tracker := trackers.For(claims.UserID)

		var (
			items []MedicationWithStatus
			err   error
		)
		if r.URL.Query().Get("refresh") == "1" {
			items, err = tracker.Refresh(r.Context())
		} else {
			items, err = tracker.List(r.Context())
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]medicationStatusResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toStatusResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// addMedicationHandler godoc
// @Summary      Alta de medicación (no optimista: aparece al confirmar)
// @Tags         medications
// @Accept       json
// @Produce      json
// @Param        medication body medications.createMedicationRequest true "medication"
// @Success      201 {object} medications.medicationResponse
// @Failure      400 {string} string "invalid input"
// @Router       /medications [post]
func addMedicationHandler(trackers *TrackerSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := trackers.For(claims.UserID).Add(r.Context(), CreateInput{
			Name:          req.Name,
			Dosage:        req.Dosage,
			ScheduledTime: req.ScheduledTime,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toMedicationResponse(m))
	}
}

// deleteMedicationHandler godoc
// @Summary      Borra una medicación (optimista, con rollback si falla)
// @Tags         medications
// @Param        medID path string true "medication id"
// @Success      204
// @Router       /medications/{medID} [delete]
func deleteMedicationHandler(trackers *TrackerSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		medID := chi.URLParam(r, "medID")
		if err := trackers.For(claims.UserID).Remove(r.Context(), medID); err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "medication not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// markTakenHandler godoc
// @Summary      Marca la medicación como tomada hoy
// @Description  El segundo intento del mismo día devuelve 409 con el error de dominio.
// @Tags         medications
// @Param        medID path string true "medication id"
// @Success      204
// @Failure      404 {string} string "medication not found"
// @Failure      409 {string} string "already marked as taken for today"
// @Router       /medications/{medID}/taken [post]
func markTakenHandler(trackers *TrackerSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		medID := chi.URLParam(r, "medID")
		if err := trackers.For(claims.UserID).MarkTaken(r.Context(), medID); err != nil {
			switch {
			case errors.Is(err, ErrAlreadyTakenToday):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				// también cubre medicaciones de otro usuario
				http.Error(w, "medication not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// unmarkTakenHandler godoc
// @Summary      Revierte la toma de hoy por log id
// @Tags         medications
// @Param        logID path string true "log id"
// @Success      204
// @Router       /medications/taken/{logID} [delete]
func unmarkTakenHandler(trackers *TrackerSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		logID := chi.URLParam(r, "logID")
		if err := trackers.For(claims.UserID).UnmarkTaken(r.Context(), logID); err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "log not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func toMedicationResponse(m Medication) medicationResponse {
	return medicationResponse{
		ID:            m.ID,
		UserID:        m.UserID,
		Name:          m.Name,
		Dosage:        m.Dosage,
		ScheduledTime: m.ScheduledTime,
		DisplayTime:   dateutil.FormatClock(m.ScheduledTime),
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toStatusResponse(m MedicationWithStatus) medicationStatusResponse {
	return medicationStatusResponse{
		medicationResponse: toMedicationResponse(m.Medication),
		TakenToday:         m.TakenToday,
		TakenAt:            m.TakenAt,
		LogID:              m.LogID,
	}
}

// writeJSON se repite en los handlers de cada módulo a propósito: todavía
// no amerita un helper compartido entre dominios.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
