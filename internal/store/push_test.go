package store

import (
	"testing"

	"github.com/roomiesapp/roomies/internal/database"
	"github.com/roomiesapp/roomies/internal/model"
)

func setupPushTestDB(t *testing.T) (*PushStore, int64, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hs := NewHouseholdStore(db)
	us := NewUserStore(db)
	h, err := hs.Create("The Loft")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	u, err := us.Create("alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := hs.AddMember(h.ID, u.ID, model.RoleAdmin); err != nil {
		t.Fatalf("add member: %v", err)
	}
	return NewPushStore(db), u.ID, h.ID
}

func TestPushCreateSubscription(t *testing.T) {
	ps, userID, householdID := setupPushTestDB(t)

	sub, err := ps.CreateSubscription(userID, householdID, "https://push.example.com/ep1", "p256dh-key", "auth-key", "Alice's phone")
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	if sub.Endpoint != "https://push.example.com/ep1" {
		t.Errorf("endpoint = %q", sub.Endpoint)
	}
	if sub.DeviceName != "Alice's phone" {
		t.Errorf("device_name = %q", sub.DeviceName)
	}
}

func TestPushResubscribeSameEndpoint(t *testing.T) {
	ps, userID, householdID := setupPushTestDB(t)

	if _, err := ps.CreateSubscription(userID, householdID, "https://push.example.com/ep1", "k1", "a1", "phone"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	second, err := ps.CreateSubscription(userID, householdID, "https://push.example.com/ep1", "k2", "a2", "phone")
	if err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
	if second.P256dhKey != "k2" {
		t.Errorf("p256dh = %q, want refreshed key", second.P256dhKey)
	}

	subs, err := ps.ListForUser(userID, householdID)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("subscriptions = %d, want 1 (endpoint upsert)", len(subs))
	}
}

func TestPushDeleteByEndpoint(t *testing.T) {
	ps, userID, householdID := setupPushTestDB(t)

	ps.CreateSubscription(userID, householdID, "https://push.example.com/ep1", "k", "a", "")
	if err := ps.DeleteByEndpoint("https://push.example.com/ep1"); err != nil {
		t.Fatalf("delete by endpoint: %v", err)
	}

	subs, _ := ps.ListForUser(userID, householdID)
	if len(subs) != 0 {
		t.Errorf("subscriptions = %d, want 0", len(subs))
	}
}

func TestPushPreferenceDefaultsEnabled(t *testing.T) {
	ps, userID, householdID := setupPushTestDB(t)

	enabled, err := ps.GetPreference(userID, householdID, model.NotifTypeBadgeEarned)
	if err != nil {
		t.Fatalf("get preference: %v", err)
	}
	if !enabled {
		t.Error("preference with no stored row should default to enabled")
	}
}

func TestPushSetPreference(t *testing.T) {
	ps, userID, householdID := setupPushTestDB(t)

	if err := ps.SetPreference(userID, householdID, model.NotifTypeTaskDue, false); err != nil {
		t.Fatalf("set preference: %v", err)
	}
	enabled, _ := ps.GetPreference(userID, householdID, model.NotifTypeTaskDue)
	if enabled {
		t.Error("expected preference disabled")
	}

	// Flip it back on through the same upsert path.
	if err := ps.SetPreference(userID, householdID, model.NotifTypeTaskDue, true); err != nil {
		t.Fatalf("re-enable preference: %v", err)
	}
	enabled, _ = ps.GetPreference(userID, householdID, model.NotifTypeTaskDue)
	if !enabled {
		t.Error("expected preference re-enabled")
	}

	prefs, err := ps.ListPreferences(userID, householdID)
	if err != nil {
		t.Fatalf("list preferences: %v", err)
	}
	if len(prefs) != 1 {
		t.Errorf("stored preferences = %d, want 1", len(prefs))
	}
}
