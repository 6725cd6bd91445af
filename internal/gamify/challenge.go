package gamify

import (
	"fmt"
	"time"

	"github.com/roomiesapp/roomies/internal/model"
)

// Criteria defaults used when a threshold was left at zero.
const (
	DefaultTaskCount    = 1
	DefaultPointAmount  = 100
	DefaultStreakLength = 7
)

// CriteriaThreshold resolves a challenge's effective target.
func CriteriaThreshold(c model.CompletionCriteria) int {
	if c.Threshold > 0 {
		return c.Threshold
	}
	switch c.Type {
	case model.CriteriaTasks:
		return DefaultTaskCount
	case model.CriteriaPoints:
		return DefaultPointAmount
	case model.CriteriaStreak:
		return DefaultStreakLength
	default:
		return 0
	}
}

// ChallengeExpired reports whether the due date has passed at now. Expiry is
// derived lazily on every read; there is no background sweep.
func ChallengeExpired(c model.Challenge, now time.Time) bool {
	return c.DueDate != nil && now.After(*c.DueDate)
}

// ChallengeStatus is the derived state of a challenge.
type ChallengeStatus string

const (
	ChallengeStatusActive   ChallengeStatus = "active"
	ChallengeStatusExpired  ChallengeStatus = "expired"
	ChallengeStatusFull     ChallengeStatus = "full"
	ChallengeStatusInactive ChallengeStatus = "inactive"
)

func StatusOfChallenge(c model.Challenge, participants int, now time.Time) ChallengeStatus {
	switch {
	case !c.Active:
		return ChallengeStatusInactive
	case ChallengeExpired(c, now):
		return ChallengeStatusExpired
	case c.MaxParticipants != nil && participants >= *c.MaxParticipants:
		return ChallengeStatusFull
	default:
		return ChallengeStatusActive
	}
}

// CanJoin reports whether the challenge accepts new participants.
func CanJoin(c model.Challenge, participants int, now time.Time) bool {
	return StatusOfChallenge(c, participants, now) == ChallengeStatusActive
}

// CanUserJoin checks the challenge and the member. A nil return means the
// join may proceed; otherwise the error wraps ErrCannotJoin with the reason.
func CanUserJoin(c model.Challenge, participants int, alreadyJoined bool, now time.Time) error {
	if alreadyJoined {
		return fmt.Errorf("%w: already participating", ErrCannotJoin)
	}
	switch StatusOfChallenge(c, participants, now) {
	case ChallengeStatusInactive:
		return fmt.Errorf("%w: challenge is not active", ErrCannotJoin)
	case ChallengeStatusExpired:
		return fmt.Errorf("%w: challenge has ended", ErrCannotJoin)
	case ChallengeStatusFull:
		return fmt.Errorf("%w: challenge is full", ErrCannotJoin)
	}
	return nil
}

// challengeMetric returns the stat a challenge's criteria is measured
// against. Criteria are evaluated against live stats, never snapshots.
func challengeMetric(c model.Challenge, stats Stats) (int, bool) {
	switch c.Criteria.Type {
	case model.CriteriaTasks:
		return stats.TasksCompletedThisWeek, true
	case model.CriteriaPoints:
		return stats.Points, true
	case model.CriteriaStreak:
		return stats.StreakDays, true
	default:
		return 0, false
	}
}

// CheckCompletion reports whether a participant currently meets the
// challenge's completion criteria. Unrecognized criteria never complete.
func CheckCompletion(c model.Challenge, stats Stats) bool {
	current, ok := challengeMetric(c, stats)
	if !ok {
		return false
	}
	return current >= CriteriaThreshold(c.Criteria)
}

// ChallengeProgress reports a participant's progress toward completion.
func ChallengeProgress(c model.Challenge, stats Stats) Progress {
	current, ok := challengeMetric(c, stats)
	if !ok {
		return Progress{Current: 0, Target: CriteriaThreshold(c.Criteria), Percentage: 0}
	}
	return progressOf(current, CriteriaThreshold(c.Criteria))
}

// ValidateChallenge checks an admin-supplied challenge definition.
func ValidateChallenge(c model.Challenge) error {
	if c.PointReward < 1 {
		return ErrInvalidRequirement
	}
	if !c.Criteria.Type.IsValid() {
		return fmt.Errorf("%w: unknown criteria type %q", ErrInvalidRequirement, c.Criteria.Type)
	}
	if c.Criteria.Threshold < 0 {
		return ErrInvalidRequirement
	}
	if c.MaxParticipants != nil && *c.MaxParticipants < 1 {
		return ErrInvalidRequirement
	}
	return nil
}
