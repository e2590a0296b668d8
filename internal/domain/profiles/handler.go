package profiles

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"medicare-companion/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/me/profile", func(pr chi.Router) {
		pr.Get("/", getProfileHandler(svc))
		pr.Patch("/caretaker", updateCaretakerHandler(svc))
	})
}

type profileResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	CaretakerEmail   string    `json:"caretaker_email"`
	Timezone         string    `json:"timezone"`
	NotificationTime string    `json:"notification_time"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type updateCaretakerRequest struct {
	// Vacío limpia el caretaker: el notifier deja de avisar.
	CaretakerEmail string `json:"caretaker_email"`
}

// getProfileHandler godoc
// @Summary      Perfil del usuario autenticado
// @Tags         profiles
// @Produce      json
// @Success      200 {object} profiles.profileResponse
// @Failure      404 {string} string "profile not found"
// @Router       /me/profile [get]
func getProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.Get(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "profile not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toProfileResponse(p))
	}
}

// updateCaretakerHandler godoc
// @Summary      Setea o limpia el email del caretaker
// @Tags         profiles
// @Accept       json
// @Param        body body profiles.updateCaretakerRequest true "caretaker"
// @Success      204
// @Failure      400 {string} string "invalid input"
// @Router       /me/profile/caretaker [patch]
func updateCaretakerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateCaretakerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := svc.UpdateCaretakerEmail(r.Context(), claims.UserID, req.CaretakerEmail); err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "caretaker_email must be a valid email or empty", http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "profile not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func toProfileResponse(p Profile) profileResponse {
	return profileResponse{
		ID:               p.ID,
		Email:            p.Email,
		FullName:         p.FullName,
		CaretakerEmail:   p.CaretakerEmail,
		Timezone:         p.Timezone,
		NotificationTime: p.NotificationTime,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en medications).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
