package push

import (
	"encoding/base64"
	"testing"
	"time"
)

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate VAPID keys: %v", err)
	}

	// Public key should be base64url-encoded, 65 bytes uncompressed P-256 point
	pubBytes, err := base64.RawURLEncoding.DecodeString(pub)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	if len(pubBytes) != 65 {
		t.Errorf("public key length = %d, want 65", len(pubBytes))
	}

	// Private key should be base64url-encoded, 32 bytes P-256 scalar
	privBytes, err := base64.RawURLEncoding.DecodeString(priv)
	if err != nil {
		t.Fatalf("decode private key: %v", err)
	}
	if len(privBytes) != 32 {
		t.Errorf("private key length = %d, want 32", len(privBytes))
	}

	pub2, _, _ := GenerateVAPIDKeys()
	if pub == pub2 {
		t.Error("expected different keys on second generation")
	}
}

func TestSchedulerTickOncePerDay(t *testing.T) {
	s := &Scheduler{}

	morning := time.Date(2026, 3, 10, reminderHour, 5, 0, 0, time.UTC)
	early := time.Date(2026, 3, 10, reminderHour-2, 0, 0, 0, time.UTC)

	if s.shouldSend(early) {
		t.Error("should not send before the reminder hour")
	}
	if !s.shouldSend(morning) {
		t.Error("should send at the reminder hour")
	}
	if s.shouldSend(morning.Add(time.Hour)) {
		t.Error("should not send twice in one day")
	}
	if !s.shouldSend(morning.AddDate(0, 0, 1)) {
		t.Error("should send again the next day")
	}
}
