package auth

// Claims es la información extraída de un token verificado por el BaaS.
type Claims struct {
	UserID   string
	Email    string
	FullName string
}

// Credentials son las credenciales que el usuario entrega en login.
type Credentials struct {
	Email    string
	Password string
}

// SignUpInput es el alta de cuenta delegada al BaaS. El caretaker email y el
// full name viajan como metadata del usuario (igual que en el frontend original).
type SignUpInput struct {
	Email          string
	Password       string
	FullName       string
	CaretakerEmail string
}

// Session es el par de tokens que devuelve el BaaS tras login/signup.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	User         Claims
}
