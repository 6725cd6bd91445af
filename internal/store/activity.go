package store

import (
	"database/sql"
	"fmt"

	"github.com/roomiesapp/roomies/internal/model"
)

type ActivityStore struct {
	db *sql.DB
}

func NewActivityStore(db *sql.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

func scanActivity(scanner interface{ Scan(...any) error }) (*model.Activity, error) {
	var a model.Activity
	var userID sql.NullInt64

	err := scanner.Scan(&a.ID, &a.HouseholdID, &userID, &a.Type, &a.Action, &a.PointsDelta, &a.EntityType, &a.EntityID, &a.CreatedAt)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		a.UserID = &userID.Int64
	}
	return &a, nil
}

const activityCols = `id, household_id, user_id, type, action, points_delta, entity_type, entity_id, created_at`

// List returns household activity newest first. beforeID of 0 starts from the
// newest entry; otherwise only entries older than beforeID are returned.
func (s *ActivityStore) List(householdID, beforeID int64, limit int) ([]model.Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `SELECT ` + activityCols + ` FROM activities WHERE household_id = ?`
	args := []any{householdID}
	if beforeID > 0 {
		query += ` AND id < ?`
		args = append(args, beforeID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []model.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

// ListByUser returns one member's activity within a household, newest first.
func (s *ActivityStore) ListByUser(householdID, userID int64, limit int) ([]model.Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT `+activityCols+` FROM activities WHERE household_id = ? AND user_id = ? ORDER BY id DESC LIMIT ?`,
		householdID, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list activities by user: %w", err)
	}
	defer rows.Close()

	var activities []model.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}
