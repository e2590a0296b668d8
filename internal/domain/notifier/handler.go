package notifier

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta el trigger HTTP del notificador, el equivalente a la
// edge function original: sin payload, devuelve el resumen de la corrida.
// Con secret configurado se exige X-Notify-Secret; sin secret queda abierto
// (modo dev).
func RegisterRoutes(r chi.Router, svc *Service, secret string) {
	r.Post("/internal/notifications/run", runHandler(svc, secret))
}

// runHandler godoc
// @Summary      Corre el notificador de dosis perdidas
// @Tags         notifier
// @Produce      json
// @Success      200 {object} notifier.Summary
// @Failure      401 {string} string "unauthorized"
// @Failure      500 {object} map[string]string
// @Router       /internal/notifications/run [post]
func runHandler(svc *Service, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(secret) != "" {
			got := r.Header.Get("X-Notify-Secret")
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		summary, err := svc.Run(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "notifier run failed",
			})
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en medications).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
