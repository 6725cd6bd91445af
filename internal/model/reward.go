package model

import "time"

// Reward is a catalog item members exchange points for. QuantityAvailable and
// MaxPerUser are nil when unlimited. Available is flipped false automatically
// when a bounded quantity is exhausted; stock and expiry status are otherwise
// always derived, never stored.
type Reward struct {
	ID                int64      `json:"id"`
	HouseholdID       int64      `json:"household_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Cost              int        `json:"cost"`
	QuantityAvailable *int       `json:"quantity_available"`
	TimesRedeemed     int        `json:"times_redeemed"`
	MaxPerUser        *int       `json:"max_per_user"`
	ExpiresAt         *time.Time `json:"expires_at"`
	Available         bool       `json:"available"`
	CreatedBy         *int64     `json:"created_by"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// RewardRedemption is an immutable record of one exchange.
type RewardRedemption struct {
	ID          int64     `json:"id"`
	RewardID    int64     `json:"reward_id"`
	RedeemedBy  int64     `json:"redeemed_by"`
	PointsSpent int       `json:"points_spent"`
	RedeemedAt  time.Time `json:"redeemed_at"`
}
