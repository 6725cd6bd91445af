package gamify

import (
	"github.com/roomiesapp/roomies/internal/model"
)

// badgeMetric returns the stat a badge type is measured against. The second
// return is false for types with no evaluation yet (challenge_completion,
// social, special) — those never unlock.
func badgeMetric(b model.Badge, stats Stats) (int, bool) {
	switch b.Type {
	case model.BadgeTaskCompletion:
		return stats.TotalTasksCompleted, true
	case model.BadgePointsEarned:
		return stats.Points, true
	case model.BadgeHouseholdJoin:
		return stats.HouseholdCount, true
	case model.BadgeStreak:
		return stats.StreakDays, true
	case model.BadgeRewardRedemption:
		return stats.RedemptionCount, true
	default:
		return 0, false
	}
}

// EvaluateBadge reports whether the member meets an active badge's
// requirement. Inactive and already-earned badges never evaluate true.
func EvaluateBadge(b model.Badge, stats Stats, alreadyEarned bool) bool {
	if !b.Active || alreadyEarned {
		return false
	}
	current, ok := badgeMetric(b, stats)
	if !ok {
		return false
	}
	return current >= b.Requirement
}

// AwardIfEligible evaluates the badge and, when it unlocks, returns true and
// the activity entry for the award. The caller inserts the earned edge; the
// alreadyEarned flag makes repeated calls no-ops.
func AwardIfEligible(b model.Badge, stats Stats, alreadyEarned bool) (bool, ActivityEntry) {
	if !EvaluateBadge(b, stats, alreadyEarned) {
		return false, ActivityEntry{}
	}
	return true, ActivityEntry{
		Type:       model.ActivityBadgeEarned,
		Action:     "earned badge " + b.Name,
		EntityType: "badge",
		EntityID:   b.ID,
	}
}

// BadgeProgress reports progress toward a badge requirement. Unevaluated
// badge types report zero progress against their nominal target.
func BadgeProgress(b model.Badge, stats Stats) Progress {
	current, ok := badgeMetric(b, stats)
	if !ok {
		return Progress{Current: 0, Target: b.Requirement, Percentage: 0}
	}
	return progressOf(current, b.Requirement)
}

// ValidateBadge checks an admin-supplied badge definition.
func ValidateBadge(b model.Badge) error {
	if b.Requirement < 1 {
		return ErrInvalidRequirement
	}
	return nil
}
