package gamify

import "fmt"

// Credit adds amount points and returns the updated stats with an audit entry.
// Amount must be >= 0.
func Credit(stats Stats, amount int, action, entityType string, entityID int64) (Stats, ActivityEntry, error) {
	if amount < 0 {
		return stats, ActivityEntry{}, fmt.Errorf("credit %d: %w", amount, ErrInvalidAmount)
	}
	stats.Points += amount
	return stats, ActivityEntry{
		Type:        "points_adjusted",
		Action:      action,
		PointsDelta: amount,
		EntityType:  entityType,
		EntityID:    entityID,
	}, nil
}

// Debit removes amount points. It fails with ErrInsufficientPoints when the
// balance would go negative, leaving stats unchanged.
func Debit(stats Stats, amount int, action, entityType string, entityID int64) (Stats, ActivityEntry, error) {
	if amount < 0 {
		return stats, ActivityEntry{}, fmt.Errorf("debit %d: %w", amount, ErrInvalidAmount)
	}
	if stats.Points < amount {
		return stats, ActivityEntry{}, fmt.Errorf("debit %d with balance %d: %w", amount, stats.Points, ErrInsufficientPoints)
	}
	stats.Points -= amount
	return stats, ActivityEntry{
		Type:        "points_adjusted",
		Action:      action,
		PointsDelta: -amount,
		EntityType:  entityType,
		EntityID:    entityID,
	}, nil
}
