package resend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"medicare-companion/internal/platform/httpclient"
	"medicare-companion/internal/ports/mail"
)

func TestClient_Send(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{
		APIKey:  "test-key",
		From:    "alerts@example.com",
		BaseURL: srv.URL,
	})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	err = c.Send(context.Background(), mail.Message{
		To:      "care@example.com",
		Subject: "Missed medications",
		HTML:    "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotBody["from"] != "alerts@example.com" || gotBody["subject"] != "Missed medications" {
		t.Fatalf("body = %+v", gotBody)
	}
}

func TestClient_Send_NonSuccessIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "k", From: "a@example.com", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	err = c.Send(context.Background(), mail.Message{To: "care@example.com"})
	if err == nil {
		t.Fatalf("expected error on non-2xx")
	}
	var httpErr *httpclient.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected HTTPError 422, got %v", err)
	}
}

func TestNewClient_RequiresConfig(t *testing.T) {
	if _, err := NewClient(Config{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
