package resend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"medicare-companion/internal/platform/httpclient"
	"medicare-companion/internal/ports/mail"
)

const defaultBaseURL = "https://api.resend.com"

var ErrNotConfigured = errors.New("resend client not configured")

// Client implementa mail.Mailer contra la API de Resend: un POST por email,
// cualquier respuesta no-2xx es falla de ese envío.
type Client struct {
	http   *httpclient.Client
	apiKey string
	from   string
}

type Config struct {
	APIKey string
	From   string

	// BaseURL solo se pisa en tests.
	BaseURL string
	Timeout time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.From) == "" {
		return nil, ErrNotConfigured
	}

	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}

	hc, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:   hc,
		apiKey: strings.TrimSpace(cfg.APIKey),
		from:   strings.TrimSpace(cfg.From),
	}, nil
}

func (c *Client) Send(ctx context.Context, msg mail.Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("resend: recipient required")
	}

	body := map[string]any{
		"from":    c.from,
		"to":      []string{msg.To},
		"subject": msg.Subject,
		"html":    msg.HTML,
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}

	if err := c.http.DoJSON(ctx, http.MethodPost, "/emails", headers, body, nil); err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}
