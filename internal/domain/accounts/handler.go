package accounts

import (
	"encoding/json"
	"errors"
	"net/http"

	"medicare-companion/internal/platform/httpclient"
	"medicare-companion/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/auth/signup", signupHandler(svc))
	r.Post("/auth/login", loginHandler(svc))
}

type signupRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FullName       string `json:"full_name"`
	CaretakerEmail string `json:"caretaker_email"` // opcional
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
}

// signupHandler godoc
// @Summary      Alta de cuenta (delegada al BaaS) + perfil del paciente
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body accounts.signupRequest true "signup"
// @Success      201 {object} accounts.sessionResponse
// @Failure      400 {string} string "invalid input"
// @Router       /auth/signup [post]
func signupHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		session, err := svc.SignUp(r.Context(), SignUpInput{
			Email:          req.Email,
			Password:       req.Password,
			FullName:       req.FullName,
			CaretakerEmail: req.CaretakerEmail,
		})
		if err != nil {
			writeAuthError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toSessionResponse(session))
	}
}

// loginHandler godoc
// @Summary      Login por password contra el BaaS
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body accounts.loginRequest true "credentials"
// @Success      200 {object} accounts.sessionResponse
// @Failure      401 {string} string "invalid credentials"
// @Router       /auth/login [post]
func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		session, err := svc.Login(r.Context(), LoginInput{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			writeAuthError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toSessionResponse(session))
	}
}

// writeAuthError traduce errores del service/BaaS a status HTTP sin filtrar
// detalles del upstream al cliente.
func writeAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidInput) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			http.Error(w, "signup rejected", http.StatusBadRequest)
			return
		case http.StatusUnauthorized, http.StatusForbidden:
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
	}

	http.Error(w, "internal error", http.StatusInternalServerError)
}

func toSessionResponse(s auth.Session) sessionResponse {
	return sessionResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    s.ExpiresIn,
		UserID:       s.User.UserID,
		Email:        s.User.Email,
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en medications).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
