package profiles

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

const (
	defaultTimezone         = "UTC"
	defaultNotificationTime = "21:00"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	ID             string
	Email          string
	FullName       string
	CaretakerEmail string
}

// Create da de alta el perfil en el signup (el original lo hacía con un
// trigger de DB sobre la metadata de auth).
func (s *Service) Create(ctx context.Context, in CreateInput) (Profile, error) {
	if strings.TrimSpace(in.ID) == "" || strings.TrimSpace(in.Email) == "" {
		return Profile{}, ErrInvalidInput
	}
	if in.CaretakerEmail != "" && !validEmail(in.CaretakerEmail) {
		return Profile{}, ErrInvalidInput
	}

	now := s.now()
	p := Profile{
		ID:               strings.TrimSpace(in.ID),
		Email:            strings.TrimSpace(in.Email),
		FullName:         strings.TrimSpace(in.FullName),
		CaretakerEmail:   strings.TrimSpace(in.CaretakerEmail),
		Timezone:         defaultTimezone,
		NotificationTime: defaultNotificationTime,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Profile{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateCaretakerEmail setea (o limpia, con string vacío) el caretaker.
func (s *Service) UpdateCaretakerEmail(ctx context.Context, id, email string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}

	email = strings.TrimSpace(email)
	if email != "" && !validEmail(email) {
		return ErrInvalidInput
	}

	return s.repo.UpdateCaretakerEmail(ctx, id, email)
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(strings.TrimSpace(s))
	return err == nil && addr.Address == strings.TrimSpace(s)
}
