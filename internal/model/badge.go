package model

import "time"

type BadgeType string

const (
	BadgeTaskCompletion      BadgeType = "task_completion"
	BadgePointsEarned        BadgeType = "points_earned"
	BadgeHouseholdJoin       BadgeType = "household_join"
	BadgeStreak              BadgeType = "streak"
	BadgeChallengeCompletion BadgeType = "challenge_completion"
	BadgeRewardRedemption    BadgeType = "reward_redemption"
	BadgeSocial              BadgeType = "social"
	BadgeSpecial             BadgeType = "special"
)

// IsValid reports whether t is a known badge type.
func (t BadgeType) IsValid() bool {
	switch t {
	case BadgeTaskCompletion, BadgePointsEarned, BadgeHouseholdJoin,
		BadgeStreak, BadgeChallengeCompletion, BadgeRewardRedemption,
		BadgeSocial, BadgeSpecial:
		return true
	default:
		return false
	}
}

type BadgeRarity string

const (
	RarityCommon    BadgeRarity = "common"
	RarityUncommon  BadgeRarity = "uncommon"
	RarityRare      BadgeRarity = "rare"
	RarityEpic      BadgeRarity = "epic"
	RarityLegendary BadgeRarity = "legendary"
)

func (r BadgeRarity) IsValid() bool {
	switch r {
	case RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	default:
		return false
	}
}

// Badge is an achievement definition. Badges are seeded or admin-created and
// deactivated rather than deleted once anyone has earned them.
type Badge struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Type        BadgeType   `json:"type"`
	Rarity      BadgeRarity `json:"rarity"`
	Requirement int         `json:"requirement"`
	Active      bool        `json:"active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// EarnedBadge is the earned join row; at most one per (user, badge).
type EarnedBadge struct {
	ID       int64     `json:"id"`
	BadgeID  int64     `json:"badge_id"`
	UserID   int64     `json:"user_id"`
	EarnedAt time.Time `json:"earned_at"`
}
