package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/roomiesapp/roomies/internal/gamify"
	"github.com/roomiesapp/roomies/internal/model"
)

type RewardStore struct {
	db *sql.DB
}

func NewRewardStore(db *sql.DB) *RewardStore {
	return &RewardStore{db: db}
}

func scanReward(scanner interface{ Scan(...any) error }) (*model.Reward, error) {
	var r model.Reward
	var quantity, maxPerUser sql.NullInt64
	var expiresAt sql.NullTime
	var available int
	var createdBy sql.NullInt64

	err := scanner.Scan(
		&r.ID, &r.HouseholdID, &r.Title, &r.Description, &r.Cost,
		&quantity, &r.TimesRedeemed, &maxPerUser, &expiresAt, &available,
		&createdBy, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if quantity.Valid {
		q := int(quantity.Int64)
		r.QuantityAvailable = &q
	}
	if maxPerUser.Valid {
		m := int(maxPerUser.Int64)
		r.MaxPerUser = &m
	}
	if expiresAt.Valid {
		r.ExpiresAt = &expiresAt.Time
	}
	if createdBy.Valid {
		r.CreatedBy = &createdBy.Int64
	}
	r.Available = available != 0
	return &r, nil
}

const rewardCols = `id, household_id, title, description, cost, quantity_available, times_redeemed, max_per_user, expires_at, available, created_by, created_at, updated_at`

func nullIntFromInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func (s *RewardStore) Create(r model.Reward) (*model.Reward, error) {
	if err := gamify.ValidateReward(r); err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		`INSERT INTO rewards (household_id, title, description, cost, quantity_available, max_per_user, expires_at, available, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)`,
		r.HouseholdID, r.Title, r.Description, r.Cost,
		nullIntFromInt(r.QuantityAvailable), nullIntFromInt(r.MaxPerUser), nullTime(r.ExpiresAt), nullInt(r.CreatedBy),
	)
	if err != nil {
		return nil, fmt.Errorf("insert reward: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, r.HouseholdID)
}

func (s *RewardStore) GetByID(id, householdID int64) (*model.Reward, error) {
	row := s.db.QueryRow(`SELECT `+rewardCols+` FROM rewards WHERE id = ? AND household_id = ?`, id, householdID)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return r, nil
}

// List returns all of a household's rewards, available first, then by title.
func (s *RewardStore) List(householdID int64) ([]model.Reward, error) {
	rows, err := s.db.Query(
		`SELECT `+rewardCols+` FROM rewards WHERE household_id = ? ORDER BY available DESC, title ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *r)
	}
	return rewards, rows.Err()
}

func (s *RewardStore) Update(id, householdID int64, title, description string, cost int) (*model.Reward, error) {
	if cost < 1 {
		return nil, gamify.ErrInvalidRequirement
	}
	_, err := s.db.Exec(
		`UPDATE rewards SET title = ?, description = ?, cost = ?, updated_at = datetime('now')
		 WHERE id = ? AND household_id = ?`,
		title, description, cost, id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update reward: %w", err)
	}
	return s.GetByID(id, householdID)
}

// UpdateQuantity sets a new quantity cap and re-derives availability.
func (s *RewardStore) UpdateQuantity(id, householdID int64, quantity *int) (*model.Reward, error) {
	r, err := s.GetByID(id, householdID)
	if err != nil || r == nil {
		return r, err
	}

	updated := gamify.ApplyQuantityUpdate(*r, quantity, time.Now())
	_, err = s.db.Exec(
		`UPDATE rewards SET quantity_available = ?, available = ?, updated_at = datetime('now') WHERE id = ?`,
		nullIntFromInt(updated.QuantityAvailable), boolToInt(updated.Available), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update reward quantity: %w", err)
	}
	return s.GetByID(id, householdID)
}

// UpdateExpiration sets a new expiry and re-derives availability.
func (s *RewardStore) UpdateExpiration(id, householdID int64, expiresAt *time.Time) (*model.Reward, error) {
	r, err := s.GetByID(id, householdID)
	if err != nil || r == nil {
		return r, err
	}

	updated := gamify.ApplyExpirationUpdate(*r, expiresAt, time.Now())
	_, err = s.db.Exec(
		`UPDATE rewards SET expires_at = ?, available = ?, updated_at = datetime('now') WHERE id = ?`,
		nullTime(updated.ExpiresAt), boolToInt(updated.Available), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update reward expiration: %w", err)
	}
	return s.GetByID(id, householdID)
}

func (s *RewardStore) SetAvailable(id, householdID int64, available bool) (*model.Reward, error) {
	_, err := s.db.Exec(
		`UPDATE rewards SET available = ?, updated_at = datetime('now') WHERE id = ? AND household_id = ?`,
		boolToInt(available), id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("set reward availability: %w", err)
	}
	return s.GetByID(id, householdID)
}

func scanRedemption(scanner interface{ Scan(...any) error }) (*model.RewardRedemption, error) {
	var r model.RewardRedemption
	err := scanner.Scan(&r.ID, &r.RewardID, &r.RedeemedBy, &r.PointsSpent, &r.RedeemedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const redemptionCols = `id, reward_id, redeemed_by, points_spent, redeemed_at`

func (s *RewardStore) ListRedemptionsByUser(userID int64) ([]model.RewardRedemption, error) {
	rows, err := s.db.Query(
		`SELECT `+redemptionCols+` FROM reward_redemptions WHERE redeemed_by = ? ORDER BY redeemed_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list redemptions: %w", err)
	}
	defer rows.Close()

	var redemptions []model.RewardRedemption
	for rows.Next() {
		r, err := scanRedemption(rows)
		if err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		redemptions = append(redemptions, *r)
	}
	return redemptions, rows.Err()
}

func (s *RewardStore) ListRedemptionsByReward(rewardID int64) ([]model.RewardRedemption, error) {
	rows, err := s.db.Query(
		`SELECT `+redemptionCols+` FROM reward_redemptions WHERE reward_id = ? ORDER BY redeemed_at DESC`,
		rewardID,
	)
	if err != nil {
		return nil, fmt.Errorf("list redemptions by reward: %w", err)
	}
	defer rows.Close()

	var redemptions []model.RewardRedemption
	for rows.Next() {
		r, err := scanRedemption(rows)
		if err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		redemptions = append(redemptions, *r)
	}
	return redemptions, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
