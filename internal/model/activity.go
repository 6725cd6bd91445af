package model

import "time"

// Activity type constants
const (
	ActivityTaskCompleted      = "task_completed"
	ActivityTaskUncompleted    = "task_uncompleted"
	ActivityPointsAdjusted     = "points_adjusted"
	ActivityRewardRedeemed     = "reward_redeemed"
	ActivityBadgeEarned        = "badge_earned"
	ActivityChallengeJoined    = "challenge_joined"
	ActivityChallengeLeft      = "challenge_left"
	ActivityChallengeCompleted = "challenge_completed"
	ActivityMemberJoined       = "member_joined"
)

// Activity is an append-only audit entry. Rows are never updated or deleted.
type Activity struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	UserID      *int64    `json:"user_id"`
	Type        string    `json:"type"`
	Action      string    `json:"action"`
	PointsDelta int       `json:"points_delta"`
	EntityType  string    `json:"entity_type"`
	EntityID    int64     `json:"entity_id"`
	CreatedAt   time.Time `json:"created_at"`
}
