package store

import (
	"database/sql"
	"fmt"

	"github.com/roomiesapp/roomies/internal/model"
)

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns a household setting value, or the empty string when unset.
func (s *SettingsStore) Get(householdID int64, key string) (string, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM settings WHERE household_id = ? AND key = ?`,
		householdID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) Set(householdID int64, key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (household_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(household_id, key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		householdID, key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

func (s *SettingsStore) List(householdID int64) ([]model.Setting, error) {
	rows, err := s.db.Query(
		`SELECT household_id, key, value, updated_at FROM settings WHERE household_id = ? ORDER BY key`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []model.Setting
	for rows.Next() {
		var st model.Setting
		if err := rows.Scan(&st.HouseholdID, &st.Key, &st.Value, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

func (s *SettingsStore) Delete(householdID int64, key string) error {
	_, err := s.db.Exec(`DELETE FROM settings WHERE household_id = ? AND key = ?`, householdID, key)
	if err != nil {
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	return nil
}
