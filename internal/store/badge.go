package store

import (
	"database/sql"
	"fmt"

	"github.com/roomiesapp/roomies/internal/gamify"
	"github.com/roomiesapp/roomies/internal/model"
)

type BadgeStore struct {
	db *sql.DB
}

func NewBadgeStore(db *sql.DB) *BadgeStore {
	return &BadgeStore{db: db}
}

func scanBadge(scanner interface{ Scan(...any) error }) (*model.Badge, error) {
	var b model.Badge
	var active int

	err := scanner.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &b.Type, &b.Rarity, &b.Requirement, &active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}

	b.Active = active != 0
	return &b, nil
}

const badgeCols = `id, name, description, icon, type, rarity, requirement, active, created_at, updated_at`

func (s *BadgeStore) Create(b model.Badge) (*model.Badge, error) {
	if err := gamify.ValidateBadge(b); err != nil {
		return nil, err
	}
	if !b.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown badge type %q", gamify.ErrInvalidRequirement, b.Type)
	}
	if !b.Rarity.IsValid() {
		return nil, fmt.Errorf("%w: unknown rarity %q", gamify.ErrInvalidRequirement, b.Rarity)
	}

	result, err := s.db.Exec(
		`INSERT INTO badges (name, description, icon, type, rarity, requirement, active) VALUES (?, ?, ?, ?, ?, ?, 1)`,
		b.Name, b.Description, b.Icon, b.Type, b.Rarity, b.Requirement,
	)
	if err != nil {
		return nil, fmt.Errorf("insert badge: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *BadgeStore) GetByID(id int64) (*model.Badge, error) {
	row := s.db.QueryRow(`SELECT `+badgeCols+` FROM badges WHERE id = ?`, id)
	b, err := scanBadge(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get badge: %w", err)
	}
	return b, nil
}

func (s *BadgeStore) List() ([]model.Badge, error) {
	rows, err := s.db.Query(`SELECT ` + badgeCols + ` FROM badges ORDER BY requirement ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	var badges []model.Badge
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		badges = append(badges, *b)
	}
	return badges, rows.Err()
}

func (s *BadgeStore) ListActive() ([]model.Badge, error) {
	rows, err := s.db.Query(`SELECT ` + badgeCols + ` FROM badges WHERE active = 1 ORDER BY requirement ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active badges: %w", err)
	}
	defer rows.Close()

	var badges []model.Badge
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		badges = append(badges, *b)
	}
	return badges, rows.Err()
}

func (s *BadgeStore) Update(id int64, name, description, icon string, requirement int) (*model.Badge, error) {
	if requirement < 1 {
		return nil, gamify.ErrInvalidRequirement
	}
	_, err := s.db.Exec(
		`UPDATE badges SET name = ?, description = ?, icon = ?, requirement = ?, updated_at = datetime('now') WHERE id = ?`,
		name, description, icon, requirement, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update badge: %w", err)
	}
	return s.GetByID(id)
}

// SetActive soft-disables or re-enables a badge. Badges are never deleted.
func (s *BadgeStore) SetActive(id int64, active bool) (*model.Badge, error) {
	_, err := s.db.Exec(
		`UPDATE badges SET active = ?, updated_at = datetime('now') WHERE id = ?`,
		boolToInt(active), id,
	)
	if err != nil {
		return nil, fmt.Errorf("set badge active: %w", err)
	}
	return s.GetByID(id)
}

func scanEarnedBadge(scanner interface{ Scan(...any) error }) (*model.EarnedBadge, error) {
	var e model.EarnedBadge
	err := scanner.Scan(&e.ID, &e.BadgeID, &e.UserID, &e.EarnedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *BadgeStore) ListEarnedByUser(userID int64) ([]model.EarnedBadge, error) {
	rows, err := s.db.Query(
		`SELECT id, badge_id, user_id, earned_at FROM earned_badges WHERE user_id = ? ORDER BY earned_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list earned badges: %w", err)
	}
	defer rows.Close()

	var earned []model.EarnedBadge
	for rows.Next() {
		e, err := scanEarnedBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan earned badge: %w", err)
		}
		earned = append(earned, *e)
	}
	return earned, rows.Err()
}

// EarnedSet returns the IDs of every badge the user has earned.
func (s *BadgeStore) EarnedSet(userID int64) (map[int64]bool, error) {
	rows, err := s.db.Query(`SELECT badge_id FROM earned_badges WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("earned badge set: %w", err)
	}
	defer rows.Close()

	set := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan earned badge id: %w", err)
		}
		set[id] = true
	}
	return set, rows.Err()
}
