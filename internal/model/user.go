package model

import "time"

type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	AvatarEmoji string    `json:"avatar_emoji"`
	HasPIN      bool      `json:"has_pin"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MemberStats holds one user's gamification counters within one household.
// points is the single balance of record; it is never recomputed from history.
type MemberStats struct {
	HouseholdID         int64      `json:"household_id"`
	UserID              int64      `json:"user_id"`
	Points              int        `json:"points"`
	StreakDays          int        `json:"streak_days"`
	LongestStreak       int        `json:"longest_streak"`
	TotalTasksCompleted int        `json:"total_tasks_completed"`
	LastCompletedAt     *time.Time `json:"last_completed_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
