package mail

import "context"

// Message es un email transaccional HTML.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer envía un email. Cualquier respuesta no exitosa del transporte
// se reporta como error; el caller decide si aísla o propaga.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
