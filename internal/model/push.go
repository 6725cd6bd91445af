package model

import "time"

// Notification types a member can opt out of individually.
const (
	NotifTypeTaskDue            = "task_due"
	NotifTypeTaskAssigned       = "task_assigned"
	NotifTypeBadgeEarned        = "badge_earned"
	NotifTypeChallengeCompleted = "challenge_completed"
	NotifTypeRewardRedeemed     = "reward_redeemed"
)

// PushSubscription is one browser/device endpoint. Endpoints are unique;
// re-subscribing the same endpoint refreshes its keys in place.
type PushSubscription struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	HouseholdID int64     `json:"household_id"`
	Endpoint    string    `json:"endpoint"`
	P256dhKey   string    `json:"p256dh_key"`
	AuthKey     string    `json:"auth_key"`
	DeviceName  string    `json:"device_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationPreference is stored only when a member changes a type from
// its default; an absent row means enabled.
type NotificationPreference struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	HouseholdID      int64     `json:"household_id"`
	NotificationType string    `json:"notification_type"`
	Enabled          bool      `json:"enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
