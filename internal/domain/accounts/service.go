package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"medicare-companion/internal/domain/profiles"
	"medicare-companion/internal/platform/logger"
	"medicare-companion/internal/ports/auth"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// Service delega el protocolo de auth al BaaS y mantiene el perfil local.
// Acá solo se valida el form y se coordina signup => alta de profile.
type Service struct {
	authn    auth.Authenticator
	profiles *profiles.Service
	log      logger.Logger
}

func NewService(authn auth.Authenticator, profilesSvc *profiles.Service, log logger.Logger) *Service {
	return &Service{
		authn:    authn,
		profiles: profilesSvc,
		log:      log,
	}
}

type SignUpInput struct {
	Email          string
	Password       string
	FullName       string
	CaretakerEmail string
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) (auth.Session, error) {
	email := strings.TrimSpace(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	caretaker := strings.TrimSpace(in.CaretakerEmail)

	if !validEmail(email) {
		return auth.Session{}, fmt.Errorf("%w: email", ErrInvalidInput)
	}
	if fullName == "" || len(fullName) > 100 {
		return auth.Session{}, fmt.Errorf("%w: full_name", ErrInvalidInput)
	}
	if !validPassword(in.Password) {
		return auth.Session{}, fmt.Errorf("%w: password", ErrInvalidInput)
	}
	if caretaker != "" && !validEmail(caretaker) {
		return auth.Session{}, fmt.Errorf("%w: caretaker_email", ErrInvalidInput)
	}

	session, err := s.authn.SignUp(ctx, auth.SignUpInput{
		Email:          email,
		Password:       in.Password,
		FullName:       fullName,
		CaretakerEmail: caretaker,
	})
	if err != nil {
		return auth.Session{}, err
	}

	// Alta del perfil local (el original lo resolvía con un trigger sobre
	// la metadata de auth). Si falla, la cuenta ya existe en el BaaS: se
	// loguea y el perfil se puede recrear a mano; no revertimos el signup.
	if _, err := s.profiles.Create(ctx, profiles.CreateInput{
		ID:             session.User.UserID,
		Email:          email,
		FullName:       fullName,
		CaretakerEmail: caretaker,
	}); err != nil {
		s.log.Error("profile create after signup failed", map[string]any{
			"user_id": session.User.UserID,
			"err":     err.Error(),
		})
	}

	return session, nil
}

type LoginInput struct {
	Email    string
	Password string
}

func (s *Service) Login(ctx context.Context, in LoginInput) (auth.Session, error) {
	email := strings.TrimSpace(in.Email)
	if !validEmail(email) {
		return auth.Session{}, fmt.Errorf("%w: email", ErrInvalidInput)
	}
	if len(in.Password) < 8 {
		return auth.Session{}, fmt.Errorf("%w: password", ErrInvalidInput)
	}

	return s.authn.SignIn(ctx, auth.Credentials{Email: email, Password: in.Password})
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// validPassword replica la regla del form original: mínimo 8, al menos
// una mayúscula y un dígito.
func validPassword(p string) bool {
	if len(p) < 8 {
		return false
	}
	var hasUpper, hasDigit bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasUpper && hasDigit
}
