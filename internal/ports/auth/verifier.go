package auth

import "context"

// AuthVerifier verifica un access token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// Authenticator delega el protocolo de auth al BaaS: alta de cuenta y
// login por password. El diseño del protocolo queda fuera de este servicio.
type Authenticator interface {
	SignUp(ctx context.Context, in SignUpInput) (Session, error)
	SignIn(ctx context.Context, creds Credentials) (Session, error)
}
