package store

import (
	"testing"

	"github.com/roomiesapp/roomies/internal/database"
)

func setupMagicLinkTestDB(t *testing.T) *MagicLinkStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewMagicLinkStore(db)
}

func TestMagicLinkCreate(t *testing.T) {
	ms := setupMagicLinkTestDB(t)

	ml, err := ms.Create("alice@example.com", "login", nil)
	if err != nil {
		t.Fatalf("create code: %v", err)
	}
	if len(ml.Code) != 6 {
		t.Errorf("code length = %d, want 6", len(ml.Code))
	}
	for _, c := range ml.Code {
		if c < '0' || c > '9' {
			t.Errorf("code %q contains non-digit", ml.Code)
			break
		}
	}
	if ml.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", ml.Email, "alice@example.com")
	}
	if ml.Purpose != "login" {
		t.Errorf("purpose = %q, want %q", ml.Purpose, "login")
	}
	if ml.HouseholdID != nil {
		t.Errorf("household_id = %v, want nil", ml.HouseholdID)
	}
	if ml.Attempts != 0 {
		t.Errorf("attempts = %d, want 0", ml.Attempts)
	}
}

func TestMagicLinkCreateInvalidatesPrevious(t *testing.T) {
	ms := setupMagicLinkTestDB(t)

	first, _ := ms.Create("alice@example.com", "login", nil)
	second, err := ms.Create("alice@example.com", "login", nil)
	if err != nil {
		t.Fatalf("create second code: %v", err)
	}

	// Only the latest code should still be redeemable.
	ml, err := ms.GetByEmailAndCode("alice@example.com", first.Code)
	if err != nil {
		t.Fatalf("get first code: %v", err)
	}
	if ml != nil && ml.ID == first.ID {
		t.Error("expected first code to be invalidated")
	}

	latest, err := ms.GetLatestByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest == nil || latest.ID != second.ID {
		t.Errorf("latest = %+v, want id %d", latest, second.ID)
	}
}

func TestMagicLinkCreateWithHousehold(t *testing.T) {
	ms := setupMagicLinkTestDB(t)

	hs := NewHouseholdStore(ms.db)
	h, err := hs.Create("The Loft")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	ml, err := ms.Create("bob@example.com", "invite", &h.ID)
	if err != nil {
		t.Fatalf("create invite code: %v", err)
	}
	if ml.HouseholdID == nil || *ml.HouseholdID != h.ID {
		t.Errorf("household_id = %v, want %d", ml.HouseholdID, h.ID)
	}
}

func TestMagicLinkGetByEmailAndCode(t *testing.T) {
	ms := setupMagicLinkTestDB(t)

	created, _ := ms.Create("alice@example.com", "login", nil)

	ml, err := ms.GetByEmailAndCode("alice@example.com", created.Code)
	if err != nil {
		t.Fatalf("get by email and code: %v", err)
	}
	if ml == nil {
		t.Fatal("expected code, got nil")
	}
	if ml.ID != created.ID {
		t.Errorf("id = %d, want %d", ml.ID, created.ID)
	}

	// Wrong code for a real email returns nothing.
	wrong, err := ms.GetByEmailAndCode("alice@example.com", "000000")
	if err != nil {
		t.Fatalf("get wrong code: %v", err)
	}
	if wrong != nil {
		t.Error("expected nil for wrong code")
	}
}

func TestMagicLinkIncrementAttempts(t *testing.T) {
	ms := setupMagicLinkTestDB(t)

	created, _ := ms.Create("alice@example.com", "login", nil)

	for want := 1; want <= 3; want++ {
		got, err := ms.IncrementAttempts(created.ID)
		if err != nil {
			t.Fatalf("increment attempts: %v", err)
		}
		if got != want {
			t.Errorf("attempts = %d, want %d", got, want)
		}
	}
}

func TestMagicLinkMarkUsed(t *testing.T) {
	ms := setupMagicLinkTestDB(t)

	created, _ := ms.Create("alice@example.com", "login", nil)

	if err := ms.MarkUsed(created.ID); err != nil {
		t.Fatalf("mark used: %v", err)
	}

	ml, err := ms.GetByEmailAndCode("alice@example.com", created.Code)
	if err != nil {
		t.Fatalf("get after mark used: %v", err)
	}
	if ml != nil {
		t.Error("expected nil for used code")
	}
}

func TestMagicLinkDeleteExpired(t *testing.T) {
	ms := setupMagicLinkTestDB(t)

	created, _ := ms.Create("alice@example.com", "login", nil)
	ms.db.Exec(`UPDATE magic_links SET expires_at = datetime('now', '-1 hour') WHERE id = ?`, created.ID)

	count, err := ms.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if count != 1 {
		t.Errorf("deleted = %d, want 1", count)
	}

	ml, _ := ms.GetLatestByEmail("alice@example.com")
	if ml != nil {
		t.Error("expected expired code to be gone")
	}
}
