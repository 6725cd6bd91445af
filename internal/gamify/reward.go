package gamify

import (
	"fmt"
	"time"

	"github.com/roomiesapp/roomies/internal/model"
)

// RewardExpired reports whether the reward's expiry has passed at now.
func RewardExpired(r model.Reward, now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// RewardInStock reports whether any quantity remains. Unlimited rewards are
// always in stock.
func RewardInStock(r model.Reward) bool {
	return r.QuantityAvailable == nil || r.TimesRedeemed < *r.QuantityAvailable
}

// CanBeRedeemed reports whether the reward itself is redeemable, ignoring any
// particular member.
func CanBeRedeemed(r model.Reward, now time.Time) bool {
	return r.Available && !RewardExpired(r, now) && RewardInStock(r)
}

// RewardStatus is the derived state of a reward; it is recomputed on every
// access and never cached.
type RewardStatus string

const (
	RewardStatusAvailable  RewardStatus = "available"
	RewardStatusOutOfStock RewardStatus = "out_of_stock"
	RewardStatusExpired    RewardStatus = "expired"
	RewardStatusDisabled   RewardStatus = "disabled"
)

func StatusOfReward(r model.Reward, now time.Time) RewardStatus {
	switch {
	case !r.Available:
		return RewardStatusDisabled
	case RewardExpired(r, now):
		return RewardStatusExpired
	case !RewardInStock(r):
		return RewardStatusOutOfStock
	default:
		return RewardStatusAvailable
	}
}

// CanUserRedeem checks both the reward and the member. userRedemptions is the
// member's prior redemption count for this reward. A nil return means the
// redemption may proceed; otherwise the error wraps ErrCannotRedeem or
// ErrInsufficientPoints with the human-readable reason.
func CanUserRedeem(r model.Reward, stats Stats, userRedemptions int, now time.Time) error {
	switch {
	case !r.Available:
		return fmt.Errorf("%w: reward no longer available", ErrCannotRedeem)
	case RewardExpired(r, now):
		return fmt.Errorf("%w: reward has expired", ErrCannotRedeem)
	case !RewardInStock(r):
		return fmt.Errorf("%w: reward is out of stock", ErrCannotRedeem)
	case r.MaxPerUser != nil && userRedemptions >= *r.MaxPerUser:
		return fmt.Errorf("%w: redemption limit reached", ErrCannotRedeem)
	case stats.Points < r.Cost:
		return fmt.Errorf("%w: %d points needed, %d available", ErrInsufficientPoints, r.Cost, stats.Points)
	}
	return nil
}

// RedemptionResult carries every mutation of one redemption. The caller must
// commit all of it atomically: the redemption record, the updated reward
// counters, the debited stats, and the activity entries.
type RedemptionResult struct {
	Reward      model.Reward
	Stats       Stats
	PointsSpent int
	Activities  []ActivityEntry
}

// Redeem validates and computes a redemption. On success the returned reward
// has its counter bumped and, if the quantity cap is now reached, Available
// flipped off. On failure nothing is mutated.
func Redeem(r model.Reward, stats Stats, userRedemptions int, now time.Time) (RedemptionResult, error) {
	if err := CanUserRedeem(r, stats, userRedemptions, now); err != nil {
		return RedemptionResult{}, err
	}

	stats, debit, err := Debit(stats, r.Cost, "redeemed "+r.Title, "reward", r.ID)
	if err != nil {
		return RedemptionResult{}, err
	}
	debit.Type = model.ActivityRewardRedeemed

	r.TimesRedeemed++
	if r.QuantityAvailable != nil && r.TimesRedeemed >= *r.QuantityAvailable {
		r.Available = false
	}
	stats.RedemptionCount++

	return RedemptionResult{
		Reward:      r,
		Stats:       stats,
		PointsSpent: r.Cost,
		Activities:  []ActivityEntry{debit},
	}, nil
}

// ApplyQuantityUpdate sets a new quantity cap (nil for unlimited) and
// re-enables the reward when stock opens back up and it is not expired.
func ApplyQuantityUpdate(r model.Reward, quantity *int, now time.Time) model.Reward {
	r.QuantityAvailable = quantity
	if RewardInStock(r) && !RewardExpired(r, now) {
		r.Available = true
	}
	return r
}

// ApplyExpirationUpdate sets a new expiry (nil for none) and re-enables the
// reward when it is unexpired and in stock.
func ApplyExpirationUpdate(r model.Reward, expiresAt *time.Time, now time.Time) model.Reward {
	r.ExpiresAt = expiresAt
	if !RewardExpired(r, now) && RewardInStock(r) {
		r.Available = true
	}
	return r
}

// ValidateReward checks an admin-supplied reward definition.
func ValidateReward(r model.Reward) error {
	if r.Cost < 1 {
		return ErrInvalidRequirement
	}
	if r.QuantityAvailable != nil && *r.QuantityAvailable < 0 {
		return ErrInvalidRequirement
	}
	if r.MaxPerUser != nil && *r.MaxPerUser < 1 {
		return ErrInvalidRequirement
	}
	return nil
}
