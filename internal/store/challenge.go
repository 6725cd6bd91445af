package store

import (
	"database/sql"
	"fmt"

	"github.com/roomiesapp/roomies/internal/gamify"
	"github.com/roomiesapp/roomies/internal/model"
)

type ChallengeStore struct {
	db *sql.DB
}

func NewChallengeStore(db *sql.DB) *ChallengeStore {
	return &ChallengeStore{db: db}
}

func scanChallenge(scanner interface{ Scan(...any) error }) (*model.Challenge, error) {
	var c model.Challenge
	var dueDate sql.NullTime
	var maxParticipants, createdBy sql.NullInt64
	var active int

	err := scanner.Scan(
		&c.ID, &c.HouseholdID, &c.Title, &c.Description, &c.PointReward,
		&dueDate, &maxParticipants, &c.Criteria.Type, &c.Criteria.Threshold,
		&active, &createdBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		c.DueDate = &dueDate.Time
	}
	if maxParticipants.Valid {
		m := int(maxParticipants.Int64)
		c.MaxParticipants = &m
	}
	if createdBy.Valid {
		c.CreatedBy = &createdBy.Int64
	}
	c.Active = active != 0
	return &c, nil
}

const challengeCols = `id, household_id, title, description, point_reward, due_date, max_participants, criteria_type, criteria_threshold, active, created_by, created_at, updated_at`

func (s *ChallengeStore) Create(c model.Challenge) (*model.Challenge, error) {
	if err := gamify.ValidateChallenge(c); err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		`INSERT INTO challenges (household_id, title, description, point_reward, due_date, max_participants, criteria_type, criteria_threshold, active, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`,
		c.HouseholdID, c.Title, c.Description, c.PointReward,
		nullTime(c.DueDate), nullIntFromInt(c.MaxParticipants),
		c.Criteria.Type, c.Criteria.Threshold, nullInt(c.CreatedBy),
	)
	if err != nil {
		return nil, fmt.Errorf("insert challenge: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, c.HouseholdID)
}

func (s *ChallengeStore) GetByID(id, householdID int64) (*model.Challenge, error) {
	row := s.db.QueryRow(`SELECT `+challengeCols+` FROM challenges WHERE id = ? AND household_id = ?`, id, householdID)
	c, err := scanChallenge(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get challenge: %w", err)
	}
	return c, nil
}

func (s *ChallengeStore) List(householdID int64) ([]model.Challenge, error) {
	rows, err := s.db.Query(
		`SELECT `+challengeCols+` FROM challenges WHERE household_id = ? ORDER BY active DESC, due_date ASC, title ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	defer rows.Close()

	var challenges []model.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		challenges = append(challenges, *c)
	}
	return challenges, rows.Err()
}

func (s *ChallengeStore) Update(c model.Challenge) (*model.Challenge, error) {
	if err := gamify.ValidateChallenge(c); err != nil {
		return nil, err
	}
	_, err := s.db.Exec(
		`UPDATE challenges SET title = ?, description = ?, point_reward = ?, due_date = ?, max_participants = ?, criteria_type = ?, criteria_threshold = ?, active = ?, updated_at = datetime('now')
		 WHERE id = ? AND household_id = ?`,
		c.Title, c.Description, c.PointReward, nullTime(c.DueDate), nullIntFromInt(c.MaxParticipants),
		c.Criteria.Type, c.Criteria.Threshold, boolToInt(c.Active), c.ID, c.HouseholdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update challenge: %w", err)
	}
	return s.GetByID(c.ID, c.HouseholdID)
}

func (s *ChallengeStore) Delete(id, householdID int64) error {
	_, err := s.db.Exec(`DELETE FROM challenges WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	return nil
}

func scanParticipant(scanner interface{ Scan(...any) error }) (*model.ChallengeParticipant, error) {
	var p model.ChallengeParticipant
	var completedAt sql.NullTime

	err := scanner.Scan(&p.ID, &p.ChallengeID, &p.UserID, &p.JoinedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		p.CompletedAt = &completedAt.Time
	}
	return &p, nil
}

const participantCols = `id, challenge_id, user_id, joined_at, completed_at`

func (s *ChallengeStore) GetParticipant(challengeID, userID int64) (*model.ChallengeParticipant, error) {
	row := s.db.QueryRow(
		`SELECT `+participantCols+` FROM challenge_participants WHERE challenge_id = ? AND user_id = ?`,
		challengeID, userID,
	)
	p, err := scanParticipant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}

func (s *ChallengeStore) ListParticipants(challengeID int64) ([]model.ChallengeParticipant, error) {
	rows, err := s.db.Query(
		`SELECT `+participantCols+` FROM challenge_participants WHERE challenge_id = ? ORDER BY joined_at ASC`,
		challengeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []model.ChallengeParticipant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, *p)
	}
	return participants, rows.Err()
}

func (s *ChallengeStore) CountParticipants(challengeID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM challenge_participants WHERE challenge_id = ?`, challengeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return count, nil
}
