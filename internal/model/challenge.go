package model

import "time"

type CriteriaType string

const (
	CriteriaTasks  CriteriaType = "tasks"
	CriteriaPoints CriteriaType = "points"
	CriteriaStreak CriteriaType = "streak"
)

func (t CriteriaType) IsValid() bool {
	switch t {
	case CriteriaTasks, CriteriaPoints, CriteriaStreak:
		return true
	default:
		return false
	}
}

// CompletionCriteria is decoded from storage once; domain code never parses
// raw criteria blobs. A Threshold of 0 means "use the type's default".
type CompletionCriteria struct {
	Type      CriteriaType `json:"type"`
	Threshold int          `json:"threshold"`
}

type Challenge struct {
	ID              int64              `json:"id"`
	HouseholdID     int64              `json:"household_id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	PointReward     int                `json:"point_reward"`
	DueDate         *time.Time         `json:"due_date"`
	MaxParticipants *int               `json:"max_participants"`
	Criteria        CompletionCriteria `json:"criteria"`
	Active          bool               `json:"active"`
	CreatedBy       *int64             `json:"created_by"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type ChallengeParticipant struct {
	ID          int64      `json:"id"`
	ChallengeID int64      `json:"challenge_id"`
	UserID      int64      `json:"user_id"`
	JoinedAt    time.Time  `json:"joined_at"`
	CompletedAt *time.Time `json:"completed_at"`
}
