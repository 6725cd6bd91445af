package store

import (
	"database/sql"
	"fmt"

	"github.com/roomiesapp/roomies/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var pinHash sql.NullString

	err := scanner.Scan(&u.ID, &u.Email, &u.Name, &u.Color, &u.AvatarEmoji, &pinHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	u.HasPIN = pinHash.Valid && pinHash.String != ""
	return &u, nil
}

const userCols = `id, email, name, color, avatar_emoji, pin_hash, created_at, updated_at`

func (s *UserStore) Create(email, name string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (email, name) VALUES (?, ?)`,
		email, name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) UpdateProfile(id int64, name, color, avatarEmoji string) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET name = ?, color = ?, avatar_emoji = ?, updated_at = datetime('now') WHERE id = ?`,
		name, color, avatarEmoji, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) SetPINHash(id int64, hash string) error {
	_, err := s.db.Exec(`UPDATE users SET pin_hash = ?, updated_at = datetime('now') WHERE id = ?`, hash, id)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

func (s *UserStore) GetPINHash(id int64) (string, error) {
	var hash sql.NullString
	err := s.db.QueryRow(`SELECT pin_hash FROM users WHERE id = ?`, id).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get pin hash: %w", err)
	}
	return hash.String, nil
}

func (s *UserStore) ClearPIN(id int64) error {
	_, err := s.db.Exec(`UPDATE users SET pin_hash = NULL, updated_at = datetime('now') WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("clear pin: %w", err)
	}
	return nil
}

func (s *UserStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
