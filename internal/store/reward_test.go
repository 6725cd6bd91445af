package store

import (
	"errors"
	"testing"
	"time"

	"github.com/roomiesapp/roomies/internal/database"
	"github.com/roomiesapp/roomies/internal/gamify"
	"github.com/roomiesapp/roomies/internal/model"
)

func setupRewardTestDB(t *testing.T) (*RewardStore, int64, int64) {
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
	return NewRewardStore(db), h.ID, u.ID
}

func TestRewardCreate(t *testing.T) {
	rs, householdID, userID := setupRewardTestDB(t)

	r, err := rs.Create(model.Reward{
		HouseholdID: householdID,
		Title:       "Movie night pick",
		Description: "Choose the film",
		Cost:        50,
		CreatedBy:   &userID,
	})
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}
	if r.Cost != 50 {
		t.Errorf("cost = %d, want 50", r.Cost)
	}
	if !r.Available {
		t.Error("new reward should be available")
	}
	if r.QuantityAvailable != nil {
		t.Errorf("quantity = %v, want nil (unlimited)", r.QuantityAvailable)
	}
}

func TestRewardCreateInvalidCost(t *testing.T) {
	rs, householdID, _ := setupRewardTestDB(t)

	_, err := rs.Create(model.Reward{HouseholdID: householdID, Title: "Free", Cost: 0})
	if !errors.Is(err, gamify.ErrInvalidRequirement) {
		t.Errorf("err = %v, want ErrInvalidRequirement", err)
	}
}

func TestRewardGetScopedToHousehold(t *testing.T) {
	rs, householdID, _ := setupRewardTestDB(t)

	r, _ := rs.Create(model.Reward{HouseholdID: householdID, Title: "Sleep in", Cost: 30})

	got, err := rs.GetByID(r.ID, householdID+1)
	if err != nil {
		t.Fatalf("get reward: %v", err)
	}
	if got != nil {
		t.Error("reward should not be visible from another household")
	}
}

func TestRewardListAvailableFirst(t *testing.T) {
	rs, householdID, _ := setupRewardTestDB(t)

	a, _ := rs.Create(model.Reward{HouseholdID: householdID, Title: "Afternoon off", Cost: 100})
	rs.Create(model.Reward{HouseholdID: householdID, Title: "Breakfast in bed", Cost: 40})
	if _, err := rs.SetAvailable(a.ID, householdID, false); err != nil {
		t.Fatalf("set available: %v", err)
	}

	rewards, err := rs.List(householdID)
	if err != nil {
		t.Fatalf("list rewards: %v", err)
	}
	if len(rewards) != 2 {
		t.Fatalf("len = %d, want 2", len(rewards))
	}
	if rewards[0].Title != "Breakfast in bed" {
		t.Errorf("first = %q, want the available reward first", rewards[0].Title)
	}
}

func TestRewardUpdateQuantityReenables(t *testing.T) {
	rs, householdID, _ := setupRewardTestDB(t)

	zero := 0
	r, _ := rs.Create(model.Reward{HouseholdID: householdID, Title: "Takeout", Cost: 60, QuantityAvailable: &zero})
	if _, err := rs.SetAvailable(r.ID, householdID, false); err != nil {
		t.Fatalf("set available: %v", err)
	}

	three := 3
	r, err := rs.UpdateQuantity(r.ID, householdID, &three)
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if !r.Available {
		t.Error("restocking should re-enable the reward")
	}
	if r.QuantityAvailable == nil || *r.QuantityAvailable != 3 {
		t.Errorf("quantity = %v, want 3", r.QuantityAvailable)
	}
}

func TestRewardUpdateExpirationReenables(t *testing.T) {
	rs, householdID, _ := setupRewardTestDB(t)

	r, _ := rs.Create(model.Reward{HouseholdID: householdID, Title: "Game night", Cost: 25})
	if _, err := rs.SetAvailable(r.ID, householdID, false); err != nil {
		t.Fatalf("set available: %v", err)
	}

	// An already-passed expiry must not flip the flag back on.
	past := time.Now().Add(-time.Hour)
	r, err := rs.UpdateExpiration(r.ID, householdID, &past)
	if err != nil {
		t.Fatalf("update expiration: %v", err)
	}
	if r.Available {
		t.Fatal("expired reward should stay unavailable")
	}

	future := time.Now().Add(24 * time.Hour)
	r, err = rs.UpdateExpiration(r.ID, householdID, &future)
	if err != nil {
		t.Fatalf("update expiration: %v", err)
	}
	if !r.Available {
		t.Error("extending the expiry should re-enable the reward")
	}
}
