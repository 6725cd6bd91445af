package gamify

import (
	"errors"
	"testing"

	"github.com/roomiesapp/roomies/internal/model"
)

func taskBadge(requirement int) model.Badge {
	return model.Badge{
		ID:          1,
		Name:        "Task Master",
		Type:        model.BadgeTaskCompletion,
		Rarity:      model.RarityCommon,
		Requirement: requirement,
		Active:      true,
	}
}

func TestEvaluateBadgeByType(t *testing.T) {
	stats := Stats{
		Points:              120,
		StreakDays:          7,
		TotalTasksCompleted: 50,
		HouseholdCount:      2,
		RedemptionCount:     3,
	}

	cases := []struct {
		name        string
		badgeType   model.BadgeType
		requirement int
		want        bool
	}{
		{"tasks met", model.BadgeTaskCompletion, 50, true},
		{"tasks unmet", model.BadgeTaskCompletion, 51, false},
		{"points met", model.BadgePointsEarned, 100, true},
		{"points unmet", model.BadgePointsEarned, 121, false},
		{"households met", model.BadgeHouseholdJoin, 2, true},
		{"streak met", model.BadgeStreak, 7, true},
		{"streak unmet", model.BadgeStreak, 8, false},
		{"redemptions met", model.BadgeRewardRedemption, 3, true},
		{"challenge type never earns", model.BadgeChallengeCompletion, 1, false},
		{"social type never earns", model.BadgeSocial, 1, false},
		{"special type never earns", model.BadgeSpecial, 1, false},
	}

	for _, tc := range cases {
		b := model.Badge{Type: tc.badgeType, Requirement: tc.requirement, Active: true}
		if got := EvaluateBadge(b, stats, false); got != tc.want {
			t.Errorf("%s: evaluate = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEvaluateBadgeInactive(t *testing.T) {
	b := taskBadge(1)
	b.Active = false
	if EvaluateBadge(b, Stats{TotalTasksCompleted: 100}, false) {
		t.Error("inactive badge evaluated true")
	}
}

func TestAwardIfEligibleIdempotent(t *testing.T) {
	b := taskBadge(10)
	stats := Stats{TotalTasksCompleted: 10}

	earned, entry := AwardIfEligible(b, stats, false)
	if !earned {
		t.Fatal("first award: not earned")
	}
	if entry.Type != model.ActivityBadgeEarned || entry.EntityID != b.ID {
		t.Errorf("entry = %+v", entry)
	}

	// Second call with the edge now present must not re-award.
	earned, _ = AwardIfEligible(b, stats, true)
	if earned {
		t.Error("second award: earned again")
	}
}

func TestAwardIfEligibleUnmet(t *testing.T) {
	earned, _ := AwardIfEligible(taskBadge(10), Stats{TotalTasksCompleted: 9}, false)
	if earned {
		t.Error("earned with unmet requirement")
	}
}

func TestBadgeProgressMonotonicAndClamped(t *testing.T) {
	b := model.Badge{Type: model.BadgePointsEarned, Requirement: 100, Active: true}

	prev := -1
	for _, points := range []int{0, 1, 49, 50, 99, 100, 150, 1000} {
		p := BadgeProgress(b, Stats{Points: points})
		if p.Percentage < prev {
			t.Fatalf("percentage decreased: %d -> %d at points=%d", prev, p.Percentage, points)
		}
		if p.Percentage > 100 {
			t.Fatalf("percentage above 100: %d", p.Percentage)
		}
		prev = p.Percentage
	}

	p := BadgeProgress(b, Stats{Points: 150})
	if p.Percentage != 100 {
		t.Errorf("clamped percentage = %d, want 100", p.Percentage)
	}
	p = BadgeProgress(b, Stats{Points: 49})
	if p.Percentage != 49 {
		t.Errorf("percentage = %d, want 49", p.Percentage)
	}
}

func TestBadgeProgressZeroRequirementGuarded(t *testing.T) {
	b := model.Badge{Type: model.BadgePointsEarned, Requirement: 0, Active: true}
	p := BadgeProgress(b, Stats{Points: 5})
	if p.Percentage != 100 {
		t.Errorf("percentage = %d, want 100 for zero target", p.Percentage)
	}
}

func TestBadgeProgressUnsupportedType(t *testing.T) {
	b := model.Badge{Type: model.BadgeSocial, Requirement: 5, Active: true}
	p := BadgeProgress(b, Stats{Points: 500})
	if p.Current != 0 || p.Percentage != 0 {
		t.Errorf("progress = %+v, want zero", p)
	}
	if p.Target != 5 {
		t.Errorf("target = %d, want 5", p.Target)
	}
}

func TestValidateBadge(t *testing.T) {
	if err := ValidateBadge(taskBadge(1)); err != nil {
		t.Errorf("valid badge rejected: %v", err)
	}
	if err := ValidateBadge(taskBadge(0)); !errors.Is(err, ErrInvalidRequirement) {
		t.Errorf("err = %v, want ErrInvalidRequirement", err)
	}
}
