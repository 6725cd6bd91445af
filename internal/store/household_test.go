package store

import (
	"testing"

	"github.com/roomiesapp/roomies/internal/database"
	"github.com/roomiesapp/roomies/internal/model"
)

func setupHouseholdTestDB(t *testing.T) (*HouseholdStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewHouseholdStore(db), NewUserStore(db)
}

func TestHouseholdCreate(t *testing.T) {
	hs, _ := setupHouseholdTestDB(t)

	h, err := hs.Create("The Loft")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if h.Name != "The Loft" {
		t.Errorf("name = %q, want %q", h.Name, "The Loft")
	}
	if h.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if h.InviteCode == "" {
		t.Error("expected generated invite code")
	}
}

func TestHouseholdGetByInviteCode(t *testing.T) {
	hs, _ := setupHouseholdTestDB(t)

	created, _ := hs.Create("The Loft")

	h, err := hs.GetByInviteCode(created.InviteCode)
	if err != nil {
		t.Fatalf("get by invite code: %v", err)
	}
	if h == nil || h.ID != created.ID {
		t.Errorf("got %+v, want household %d", h, created.ID)
	}

	missing, err := hs.GetByInviteCode("not-a-code")
	if err != nil {
		t.Fatalf("get unknown code: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown invite code")
	}
}

func TestHouseholdRotateInviteCode(t *testing.T) {
	hs, _ := setupHouseholdTestDB(t)

	created, _ := hs.Create("The Loft")

	rotated, err := hs.RotateInviteCode(created.ID)
	if err != nil {
		t.Fatalf("rotate invite code: %v", err)
	}
	if rotated.InviteCode == created.InviteCode {
		t.Error("expected a new invite code after rotation")
	}

	// Old code no longer resolves.
	if h, _ := hs.GetByInviteCode(created.InviteCode); h != nil {
		t.Error("old invite code should be invalid")
	}
	if h, _ := hs.GetByInviteCode(rotated.InviteCode); h == nil {
		t.Error("new invite code should resolve")
	}
}

func TestHouseholdMembers(t *testing.T) {
	hs, us := setupHouseholdTestDB(t)

	h, _ := hs.Create("The Loft")
	alice, _ := us.Create("alice@example.com", "Alice")
	bob, _ := us.Create("bob@example.com", "Bob")

	if _, err := hs.AddMember(h.ID, alice.ID, model.RoleAdmin); err != nil {
		t.Fatalf("add admin: %v", err)
	}
	if _, err := hs.AddMember(h.ID, bob.ID, model.RoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}

	members, err := hs.ListMembers(h.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2", len(members))
	}

	m, err := hs.GetMember(h.ID, alice.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m == nil || m.Role != model.RoleAdmin {
		t.Errorf("alice role = %+v, want admin", m)
	}

	if err := hs.RemoveMember(h.ID, bob.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if m, _ := hs.GetMember(h.ID, bob.ID); m != nil {
		t.Error("expected bob to be removed")
	}
}

func TestHouseholdAddMemberTwice(t *testing.T) {
	hs, us := setupHouseholdTestDB(t)

	h, _ := hs.Create("The Loft")
	alice, _ := us.Create("alice@example.com", "Alice")

	if _, err := hs.AddMember(h.ID, alice.ID, model.RoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if _, err := hs.AddMember(h.ID, alice.ID, model.RoleMember); err == nil {
		t.Error("expected error adding the same member twice")
	}
}

func TestHouseholdListForUser(t *testing.T) {
	hs, us := setupHouseholdTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice")
	loft, _ := hs.Create("The Loft")
	beach, _ := hs.Create("Beach House")
	hs.Create("Unrelated")

	hs.AddMember(loft.ID, alice.ID, model.RoleAdmin)
	hs.AddMember(beach.ID, alice.ID, model.RoleMember)

	households, err := hs.ListForUser(alice.ID)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(households) != 2 {
		t.Errorf("households = %d, want 2", len(households))
	}

	count, err := hs.CountMembershipsForUser(alice.ID)
	if err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	if count != 2 {
		t.Errorf("membership count = %d, want 2", count)
	}
}
