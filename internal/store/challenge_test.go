package store

import (
	"errors"
	"testing"
	"time"

	"github.com/roomiesapp/roomies/internal/database"
	"github.com/roomiesapp/roomies/internal/gamify"
	"github.com/roomiesapp/roomies/internal/model"
)

func setupChallengeTestDB(t *testing.T) (*ChallengeStore, int64, int64) {
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
	return NewChallengeStore(db), h.ID, u.ID
}

func TestChallengeCreate(t *testing.T) {
	cs, householdID, userID := setupChallengeTestDB(t)

	c, err := cs.Create(model.Challenge{
		HouseholdID: householdID,
		Title:       "Spring Cleaning",
		PointReward: 100,
		Criteria:    model.CompletionCriteria{Type: model.CriteriaTasks, Threshold: 10},
		CreatedBy:   &userID,
	})
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	if !c.Active {
		t.Error("new challenge should be active")
	}
	if c.Criteria.Type != model.CriteriaTasks || c.Criteria.Threshold != 10 {
		t.Errorf("criteria = %+v, want tasks/10", c.Criteria)
	}
}

func TestChallengeCreateRejectsBadCriteria(t *testing.T) {
	cs, householdID, _ := setupChallengeTestDB(t)

	_, err := cs.Create(model.Challenge{
		HouseholdID: householdID,
		Title:       "Broken",
		PointReward: 50,
		Criteria:    model.CompletionCriteria{Type: "lines_of_code", Threshold: 5},
	})
	if !errors.Is(err, gamify.ErrInvalidRequirement) {
		t.Errorf("err = %v, want ErrInvalidRequirement", err)
	}
}

func TestChallengeGetScopedToHousehold(t *testing.T) {
	cs, householdID, _ := setupChallengeTestDB(t)

	c, _ := cs.Create(model.Challenge{
		HouseholdID: householdID,
		Title:       "Point Rush",
		PointReward: 50,
		Criteria:    model.CompletionCriteria{Type: model.CriteriaPoints, Threshold: 200},
	})

	got, err := cs.GetByID(c.ID, householdID+1)
	if err != nil {
		t.Fatalf("get challenge: %v", err)
	}
	if got != nil {
		t.Error("challenge should not be visible from another household")
	}
}

func TestChallengeListActiveFirst(t *testing.T) {
	cs, householdID, _ := setupChallengeTestDB(t)

	a, _ := cs.Create(model.Challenge{
		HouseholdID: householdID, Title: "Archived", PointReward: 10,
		Criteria: model.CompletionCriteria{Type: model.CriteriaStreak, Threshold: 3},
	})
	cs.Create(model.Challenge{
		HouseholdID: householdID, Title: "Current", PointReward: 20,
		Criteria: model.CompletionCriteria{Type: model.CriteriaStreak, Threshold: 7},
	})

	a.Active = false
	if _, err := cs.Update(*a); err != nil {
		t.Fatalf("deactivate challenge: %v", err)
	}

	challenges, err := cs.List(householdID)
	if err != nil {
		t.Fatalf("list challenges: %v", err)
	}
	if len(challenges) != 2 {
		t.Fatalf("len = %d, want 2", len(challenges))
	}
	if challenges[0].Title != "Current" {
		t.Errorf("first = %q, want the active challenge first", challenges[0].Title)
	}
}

func TestChallengeUpdate(t *testing.T) {
	cs, householdID, _ := setupChallengeTestDB(t)

	c, _ := cs.Create(model.Challenge{
		HouseholdID: householdID, Title: "Weekend Blitz", PointReward: 30,
		Criteria: model.CompletionCriteria{Type: model.CriteriaTasks, Threshold: 5},
	})

	due := time.Now().Add(48 * time.Hour)
	limit := 4
	c.Title = "Weekend Blitz II"
	c.PointReward = 60
	c.DueDate = &due
	c.MaxParticipants = &limit

	updated, err := cs.Update(*c)
	if err != nil {
		t.Fatalf("update challenge: %v", err)
	}
	if updated.Title != "Weekend Blitz II" || updated.PointReward != 60 {
		t.Errorf("updated = %q/%d, want Weekend Blitz II/60", updated.Title, updated.PointReward)
	}
	if updated.DueDate == nil {
		t.Error("due date should be set")
	}
	if updated.MaxParticipants == nil || *updated.MaxParticipants != 4 {
		t.Errorf("max participants = %v, want 4", updated.MaxParticipants)
	}
}

func TestChallengeDelete(t *testing.T) {
	cs, householdID, _ := setupChallengeTestDB(t)

	c, _ := cs.Create(model.Challenge{
		HouseholdID: householdID, Title: "Short-lived", PointReward: 10,
		Criteria: model.CompletionCriteria{Type: model.CriteriaTasks, Threshold: 1},
	})

	if err := cs.Delete(c.ID, householdID); err != nil {
		t.Fatalf("delete challenge: %v", err)
	}
	got, err := cs.GetByID(c.ID, householdID)
	if err != nil {
		t.Fatalf("get challenge: %v", err)
	}
	if got != nil {
		t.Error("deleted challenge should be gone")
	}
}

func TestChallengeParticipantsEmpty(t *testing.T) {
	cs, householdID, userID := setupChallengeTestDB(t)

	c, _ := cs.Create(model.Challenge{
		HouseholdID: householdID, Title: "Lonely", PointReward: 10,
		Criteria: model.CompletionCriteria{Type: model.CriteriaTasks, Threshold: 1},
	})

	p, err := cs.GetParticipant(c.ID, userID)
	if err != nil {
		t.Fatalf("get participant: %v", err)
	}
	if p != nil {
		t.Error("user has not joined, participant should be nil")
	}
	n, err := cs.CountParticipants(c.ID)
	if err != nil {
		t.Fatalf("count participants: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}
