package profiles

import "time"

// Profile es el perfil del paciente. El ID coincide con el user id del BaaS
// de auth. El caretaker es solo un email configurado acá, no una cuenta.
type Profile struct {
	ID    string
	Email string

	FullName       string
	CaretakerEmail string // vacío => sin caretaker, el notifier lo saltea

	Timezone         string
	NotificationTime string // HH:MM; umbral por paciente del notificador

	CreatedAt time.Time
	UpdatedAt time.Time
}
