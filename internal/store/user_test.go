package store

import (
	"testing"

	"github.com/roomiesapp/roomies/internal/database"
)

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db)
}

func TestUserCreate(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create("alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", u.Email, "alice@example.com")
	}
	if u.Name != "Alice" {
		t.Errorf("name = %q, want %q", u.Name, "Alice")
	}
	if u.HasPIN {
		t.Error("new user should have no PIN")
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.Create("alice@example.com", "Alice"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := us.Create("alice@example.com", "Other Alice"); err == nil {
		t.Error("expected error for duplicate email")
	}
}

func TestUserGetByEmail(t *testing.T) {
	us := setupUserTestDB(t)

	created, _ := us.Create("alice@example.com", "Alice")

	u, err := us.GetByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u == nil || u.ID != created.ID {
		t.Errorf("got %+v, want user %d", u, created.ID)
	}

	missing, err := us.GetByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("get unknown email: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown email")
	}
}

func TestUserUpdateProfile(t *testing.T) {
	us := setupUserTestDB(t)

	created, _ := us.Create("alice@example.com", "Alice")

	u, err := us.UpdateProfile(created.ID, "Ali", "#FF8800", "🦊")
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if u.Name != "Ali" {
		t.Errorf("name = %q, want %q", u.Name, "Ali")
	}
	if u.Color != "#FF8800" {
		t.Errorf("color = %q, want %q", u.Color, "#FF8800")
	}
	if u.AvatarEmoji != "🦊" {
		t.Errorf("avatar = %q, want 🦊", u.AvatarEmoji)
	}
}

func TestUserPINLifecycle(t *testing.T) {
	us := setupUserTestDB(t)

	created, _ := us.Create("alice@example.com", "Alice")

	if err := us.SetPINHash(created.ID, "hashed-pin"); err != nil {
		t.Fatalf("set pin hash: %v", err)
	}

	hash, err := us.GetPINHash(created.ID)
	if err != nil {
		t.Fatalf("get pin hash: %v", err)
	}
	if hash != "hashed-pin" {
		t.Errorf("hash = %q, want %q", hash, "hashed-pin")
	}

	u, _ := us.GetByID(created.ID)
	if !u.HasPIN {
		t.Error("expected has_pin after setting")
	}

	if err := us.ClearPIN(created.ID); err != nil {
		t.Fatalf("clear pin: %v", err)
	}
	u, _ = us.GetByID(created.ID)
	if u.HasPIN {
		t.Error("expected has_pin false after clearing")
	}
	if hash, _ := us.GetPINHash(created.ID); hash != "" {
		t.Error("expected empty hash after clearing")
	}
}
