package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nemocrk/my-wedding-app/environments"
	"github.com/nemocrk/my-wedding-app/internal/domain"
)

func newTestClient(baseURL string) *Client {
	return NewClient(environments.GatewayConfig{
		BaseURL:      baseURL,
		APIKey:       "test-key",
		Timeout:      2 * time.Second,
		GroomSession: "groom_main",
		BrideSession: "bride_main",
	})
}

func TestSendText_Success(t *testing.T) {
	var gotPayload sendTextRequest
	var gotAPIKey, gotPath, gotMethod string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("X-Api-Key")

		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode request payload: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "true_393331112222@c.us_ABCDEF"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	id, err := client.SendText(context.Background(), domain.SessionBride, "393331112222@c.us", "Ciao Giulia!")
	if err != nil {
		t.Fatalf("SendText returned error: %v", err)
	}

	if id != "true_393331112222@c.us_ABCDEF" {
		t.Errorf("unexpected message id: %q", id)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if gotPath != "/api/sendText" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotAPIKey != "test-key" {
		t.Errorf("unexpected api key header: %q", gotAPIKey)
	}
	if gotPayload.Session != "bride_main" {
		t.Errorf("expected session bride_main, got %q", gotPayload.Session)
	}
	if gotPayload.ChatID != "393331112222@c.us" {
		t.Errorf("unexpected chatId: %q", gotPayload.ChatID)
	}
	if gotPayload.Text != "Ciao Giulia!" {
		t.Errorf("unexpected text: %q", gotPayload.Text)
	}
}

func TestSendText_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	if _, err := client.SendText(context.Background(), domain.SessionGroom, "393331112222@c.us", "Ciao!"); err == nil {
		t.Fatal("expected error on 502 response, got nil")
	}
}

func TestSendText_MissingMessageID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	if _, err := client.SendText(context.Background(), domain.SessionGroom, "393331112222@c.us", "Ciao!"); err == nil {
		t.Fatal("expected error when gateway omits the message id, got nil")
	}
}

func TestSendText_UnknownSession(t *testing.T) {
	client := newTestClient("http://example.invalid")

	if _, err := client.SendText(context.Background(), domain.SessionType("caterer"), "393331112222@c.us", "Ciao!"); err == nil {
		t.Fatal("expected error for unknown session type, got nil")
	}
}

func TestSessionStatus_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/groom_main" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"name": "groom_main", "status": "WORKING"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	status, err := client.SessionStatus(context.Background(), domain.SessionGroom)
	if err != nil {
		t.Fatalf("SessionStatus returned error: %v", err)
	}
	if status != "WORKING" {
		t.Errorf("expected WORKING, got %q", status)
	}
}

func TestEventsURL(t *testing.T) {
	client := newTestClient("http://gateway.local:3000")

	if got := client.EventsURL(); got != "http://gateway.local:3000/api/events" {
		t.Errorf("unexpected events URL: %q", got)
	}
}
