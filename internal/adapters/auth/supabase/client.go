package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"medicare-companion/internal/platform/httpclient"
	"medicare-companion/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("supabase client not configured")
	ErrUnauthorized  = errors.New("supabase unauthorized")
)

// Config del cliente GoTrue (el auth de Supabase).
// BaseURL es la URL del proyecto; la anon key va en el header apikey.
type Config struct {
	BaseURL string
	AnonKey string
	Timeout time.Duration
}

// Client habla con los endpoints de GoTrue. El protocolo de auth vive del
// otro lado: acá solo armamos requests y traducimos respuestas.
type Client struct {
	http    *httpclient.Client
	anonKey string
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" || strings.TrimSpace(cfg.AnonKey) == "" {
		return nil, ErrNotConfigured
	}

	hc, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:    hc,
		anonKey: strings.TrimSpace(cfg.AnonKey),
	}, nil
}

// NewClientWithTransport es el constructor para tests.
func NewClientWithTransport(cfg Config, tr http.RoundTripper) (*Client, error) {
	c, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	c.http = httpclient.NewWithTransport(cfg.Timeout, tr)
	c.http.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return c, nil
}

type sessionPayload struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         userPayload `json:"user"`
}

type userPayload struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName       string `json:"full_name"`
		CaretakerEmail string `json:"caretaker_email"`
	} `json:"user_metadata"`
}

// SignUp da de alta la cuenta en GoTrue. El full name y el caretaker email
// viajan como metadata del usuario, igual que en el cliente original.
func (c *Client) SignUp(ctx context.Context, in auth.SignUpInput) (auth.Session, error) {
	body := map[string]any{
		"email":    in.Email,
		"password": in.Password,
		"data": map[string]any{
			"full_name":       in.FullName,
			"caretaker_email": in.CaretakerEmail,
		},
	}

	var out sessionPayload
	if err := c.http.DoJSON(ctx, http.MethodPost, "/auth/v1/signup", c.headers(""), body, &out); err != nil {
		return auth.Session{}, fmt.Errorf("supabase signup: %w", err)
	}
	return toSession(out), nil
}

// SignIn es el grant password de GoTrue.
func (c *Client) SignIn(ctx context.Context, creds auth.Credentials) (auth.Session, error) {
	body := map[string]string{
		"email":    creds.Email,
		"password": creds.Password,
	}

	var out sessionPayload
	err := c.http.DoJSON(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", c.headers(""), body, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusBadRequest {
			// GoTrue responde 400 a credenciales inválidas
			return auth.Session{}, fmt.Errorf("%w: %s", ErrUnauthorized, "invalid credentials")
		}
		return auth.Session{}, fmt.Errorf("supabase signin: %w", err)
	}
	return toSession(out), nil
}

// GetUser resuelve el usuario dueño de un access token.
func (c *Client) GetUser(ctx context.Context, token string) (auth.Claims, error) {
	var out userPayload
	err := c.http.DoJSON(ctx, http.MethodGet, "/auth/v1/user", c.headers(token), nil, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) &&
			(httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden) {
			return auth.Claims{}, ErrUnauthorized
		}
		return auth.Claims{}, fmt.Errorf("supabase get user: %w", err)
	}

	if strings.TrimSpace(out.ID) == "" {
		return auth.Claims{}, errors.New("supabase response missing user id")
	}
	return toClaims(out), nil
}

func (c *Client) headers(bearer string) map[string]string {
	h := map[string]string{"apikey": c.anonKey}
	if bearer == "" {
		bearer = c.anonKey
	}
	h["Authorization"] = "Bearer " + bearer
	return h
}

func toSession(p sessionPayload) auth.Session {
	return auth.Session{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresIn:    p.ExpiresIn,
		User:         toClaims(p.User),
	}
}

func toClaims(u userPayload) auth.Claims {
	return auth.Claims{
		UserID:   strings.TrimSpace(u.ID),
		Email:    strings.TrimSpace(u.Email),
		FullName: strings.TrimSpace(u.UserMetadata.FullName),
	}
}
