package store

import (
	"database/sql"
	"fmt"

	"github.com/roomiesapp/roomies/internal/model"
)

type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

const pushSubCols = `id, user_id, household_id, endpoint, p256dh_key, auth_key, device_name, created_at`

func scanPushSub(scanner interface{ Scan(...any) error }) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := scanner.Scan(
		&sub.ID, &sub.UserID, &sub.HouseholdID, &sub.Endpoint,
		&sub.P256dhKey, &sub.AuthKey, &sub.DeviceName, &sub.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateSubscription upserts by endpoint: browsers re-register the same
// endpoint with fresh keys after a service worker update.
func (s *PushStore) CreateSubscription(userID, householdID int64, endpoint, p256dh, auth, deviceName string) (*model.PushSubscription, error) {
	result, err := s.db.Exec(
		`INSERT INTO push_subscriptions (user_id, household_id, endpoint, p256dh_key, auth_key, device_name)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET p256dh_key = excluded.p256dh_key, auth_key = excluded.auth_key, device_name = excluded.device_name`,
		userID, householdID, endpoint, p256dh, auth, deviceName,
	)
	if err != nil {
		return nil, fmt.Errorf("create push subscription: %w", err)
	}
	id, _ := result.LastInsertId()

	// LastInsertId may be 0 on conflict update; re-query by endpoint
	if id == 0 {
		return s.getByEndpoint(endpoint)
	}
	row := s.db.QueryRow(`SELECT `+pushSubCols+` FROM push_subscriptions WHERE id = ?`, id)
	sub, err := scanPushSub(row)
	if err != nil {
		return nil, fmt.Errorf("get push subscription: %w", err)
	}
	return sub, nil
}

func (s *PushStore) getByEndpoint(endpoint string) (*model.PushSubscription, error) {
	row := s.db.QueryRow(`SELECT `+pushSubCols+` FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	sub, err := scanPushSub(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get push subscription by endpoint: %w", err)
	}
	return sub, nil
}

// ListForUser returns a user's subscriptions in one household.
func (s *PushStore) ListForUser(userID, householdID int64) ([]model.PushSubscription, error) {
	rows, err := s.db.Query(
		`SELECT `+pushSubCols+` FROM push_subscriptions WHERE user_id = ? AND household_id = ? ORDER BY created_at`,
		userID, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		sub, err := scanPushSub(rows)
		if err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// ListForHousehold returns every subscription in a household, used when a
// notification fans out to all members.
func (s *PushStore) ListForHousehold(householdID int64) ([]model.PushSubscription, error) {
	rows, err := s.db.Query(
		`SELECT `+pushSubCols+` FROM push_subscriptions WHERE household_id = ? ORDER BY created_at`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list household push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		sub, err := scanPushSub(rows)
		if err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// DeleteByEndpoint removes a subscription, typically after the push service
// reports it gone (404/410).
func (s *PushStore) DeleteByEndpoint(endpoint string) error {
	_, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	if err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	return nil
}

func (s *PushStore) DeleteForUser(userID, householdID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM push_subscriptions WHERE user_id = ? AND household_id = ?`,
		userID, householdID,
	)
	if err != nil {
		return fmt.Errorf("delete user push subscriptions: %w", err)
	}
	return nil
}

// SetPreference upserts one notification-type toggle for a user.
func (s *PushStore) SetPreference(userID, householdID int64, notificationType string, enabled bool) error {
	_, err := s.db.Exec(
		`INSERT INTO notification_preferences (user_id, household_id, notification_type, enabled)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, household_id, notification_type) DO UPDATE SET enabled = excluded.enabled, updated_at = datetime('now')`,
		userID, householdID, notificationType, boolToInt(enabled),
	)
	if err != nil {
		return fmt.Errorf("set notification preference: %w", err)
	}
	return nil
}

// GetPreference reports whether a notification type is enabled for a user.
// Absent rows default to enabled.
func (s *PushStore) GetPreference(userID, householdID int64, notificationType string) (bool, error) {
	var enabled int
	err := s.db.QueryRow(
		`SELECT enabled FROM notification_preferences WHERE user_id = ? AND household_id = ? AND notification_type = ?`,
		userID, householdID, notificationType,
	).Scan(&enabled)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("get notification preference: %w", err)
	}
	return enabled != 0, nil
}

// ListPreferences returns a user's stored toggles keyed by notification type.
func (s *PushStore) ListPreferences(userID, householdID int64) (map[string]bool, error) {
	rows, err := s.db.Query(
		`SELECT notification_type, enabled FROM notification_preferences WHERE user_id = ? AND household_id = ?`,
		userID, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notification preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]bool)
	for rows.Next() {
		var typ string
		var enabled int
		if err := rows.Scan(&typ, &enabled); err != nil {
			return nil, fmt.Errorf("scan notification preference: %w", err)
		}
		prefs[typ] = enabled != 0
	}
	return prefs, rows.Err()
}
