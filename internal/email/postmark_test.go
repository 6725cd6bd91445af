package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendLoginCode(t *testing.T) {
	var received postmarkEmail
	var gotToken string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Postmark-Server-Token")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	defer server.Close()

	client := NewClient("test-token", "noreply@example.com", WithAPIURL(server.URL))

	if err := client.SendLoginCode("alice@example.com", "482913", "login", ""); err != nil {
		t.Fatalf("send login code: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("server token = %q, want %q", gotToken, "test-token")
	}
	if received.To != "alice@example.com" {
		t.Errorf("To = %q, want %q", received.To, "alice@example.com")
	}
	if received.From != "noreply@example.com" {
		t.Errorf("From = %q, want %q", received.From, "noreply@example.com")
	}
	if received.Subject != "Sign in to Roomies" {
		t.Errorf("Subject = %q, want %q", received.Subject, "Sign in to Roomies")
	}
	if !strings.Contains(received.TextBody, "482913") {
		t.Errorf("text body %q does not contain the code", received.TextBody)
	}
}

func TestSendLoginCodeInvite(t *testing.T) {
	var received postmarkEmail

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	defer server.Close()

	client := NewClient("test-token", "noreply@example.com", WithAPIURL(server.URL))

	if err := client.SendLoginCode("bob@example.com", "135790", "invite", "The Loft"); err != nil {
		t.Fatalf("send invite code: %v", err)
	}

	if received.Subject != "You're invited to join The Loft on Roomies" {
		t.Errorf("Subject = %q, want invite subject", received.Subject)
	}
	if !strings.Contains(received.TextBody, "The Loft") {
		t.Errorf("text body %q does not mention the household", received.TextBody)
	}
}

func TestSendLoginCodeNotConfigured(t *testing.T) {
	client := NewClient("", "noreply@example.com")

	if err := client.SendLoginCode("alice@example.com", "482913", "login", ""); err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}

func TestSendLoginCodeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient("test-token", "noreply@example.com", WithAPIURL(server.URL))

	if err := client.SendLoginCode("alice@example.com", "482913", "login", ""); err == nil {
		t.Fatal("expected error for API failure")
	}
}
