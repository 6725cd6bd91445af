package store

import (
	"testing"

	"github.com/roomiesapp/roomies/internal/database"
	"github.com/roomiesapp/roomies/internal/model"
)

func setupSessionTestDB(t *testing.T) (*SessionStore, *UserStore, *HouseholdStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionStore(db), NewUserStore(db), NewHouseholdStore(db)
}

func sessionFixtures(t *testing.T, us *UserStore, hs *HouseholdStore) (*model.User, *model.Household) {
	t.Helper()
	u, err := us.Create("alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	h, err := hs.Create("The Loft")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if _, err := hs.AddMember(h.ID, u.ID, model.RoleAdmin); err != nil {
		t.Fatalf("add member: %v", err)
	}
	return u, h
}

func TestSessionCreate(t *testing.T) {
	ss, us, hs := setupSessionTestDB(t)
	u, h := sessionFixtures(t, us, hs)

	sess, err := ss.Create(u.ID, h.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sess.Token == "" {
		t.Error("expected non-empty token")
	}
	if len(sess.Token) != 64 { // 32 bytes hex-encoded
		t.Errorf("token length = %d, want 64", len(sess.Token))
	}
	if sess.UserID != u.ID {
		t.Errorf("user_id = %d, want %d", sess.UserID, u.ID)
	}
	if sess.HouseholdID != h.ID {
		t.Errorf("household_id = %d, want %d", sess.HouseholdID, h.ID)
	}
}

func TestSessionGetByToken(t *testing.T) {
	ss, us, hs := setupSessionTestDB(t)
	u, h := sessionFixtures(t, us, hs)

	created, _ := ss.Create(u.ID, h.ID)

	sess, err := ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess == nil {
		t.Fatal("expected session, got nil")
	}
	if sess.ID != created.ID {
		t.Errorf("id = %d, want %d", sess.ID, created.ID)
	}
}

func TestSessionGetByTokenNotFound(t *testing.T) {
	ss, _, _ := setupSessionTestDB(t)

	sess, err := ss.GetByToken("nonexistent")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for nonexistent token")
	}
}

func TestSessionExpiredNotReturned(t *testing.T) {
	ss, us, hs := setupSessionTestDB(t)
	u, h := sessionFixtures(t, us, hs)

	created, _ := ss.Create(u.ID, h.ID)
	ss.db.Exec(`UPDATE sessions SET expires_at = datetime('now', '-1 day') WHERE id = ?`, created.ID)

	sess, err := ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get expired session: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for expired session")
	}
}

func TestSessionSwitchHousehold(t *testing.T) {
	ss, us, hs := setupSessionTestDB(t)
	u, h := sessionFixtures(t, us, hs)

	other, err := hs.Create("Beach House")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if _, err := hs.AddMember(other.ID, u.ID, model.RoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}

	created, _ := ss.Create(u.ID, h.ID)
	if err := ss.SwitchHousehold(created.ID, other.ID); err != nil {
		t.Fatalf("switch household: %v", err)
	}

	sess, _ := ss.GetByToken(created.Token)
	if sess == nil {
		t.Fatal("expected session after switch")
	}
	if sess.HouseholdID != other.ID {
		t.Errorf("household_id = %d, want %d", sess.HouseholdID, other.ID)
	}
	if sess.Token != created.Token {
		t.Error("token should survive a household switch")
	}
}

func TestSessionDeleteByToken(t *testing.T) {
	ss, us, hs := setupSessionTestDB(t)
	u, h := sessionFixtures(t, us, hs)

	created, _ := ss.Create(u.ID, h.ID)
	if err := ss.DeleteByToken(created.Token); err != nil {
		t.Fatalf("delete by token: %v", err)
	}

	sess, _ := ss.GetByToken(created.Token)
	if sess != nil {
		t.Error("expected session to be deleted")
	}
}

func TestSessionDeleteForUser(t *testing.T) {
	ss, us, hs := setupSessionTestDB(t)
	u, h := sessionFixtures(t, us, hs)

	first, _ := ss.Create(u.ID, h.ID)
	second, _ := ss.Create(u.ID, h.ID)

	if err := ss.DeleteForUser(u.ID); err != nil {
		t.Fatalf("delete for user: %v", err)
	}

	for _, tok := range []string{first.Token, second.Token} {
		if sess, _ := ss.GetByToken(tok); sess != nil {
			t.Error("expected all user sessions to be deleted")
		}
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	ss, us, hs := setupSessionTestDB(t)
	u, h := sessionFixtures(t, us, hs)

	stale, _ := ss.Create(u.ID, h.ID)
	fresh, _ := ss.Create(u.ID, h.ID)
	ss.db.Exec(`UPDATE sessions SET expires_at = datetime('now', '-1 hour') WHERE id = ?`, stale.ID)

	count, err := ss.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if count != 1 {
		t.Errorf("deleted = %d, want 1", count)
	}
	if sess, _ := ss.GetByToken(fresh.Token); sess == nil {
		t.Error("fresh session should survive cleanup")
	}
}
