package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/roomiesapp/roomies/internal/gamify"
	"github.com/roomiesapp/roomies/internal/model"
)

// GamifyStore runs the compound gamification operations. Each operation loads
// current state, applies the pure rules from the gamify package, and commits
// every resulting mutation — counters, records, and activity entries — in a
// single transaction. A rejection rolls back and leaves no partial state.
type GamifyStore struct {
	db *sql.DB
}

func NewGamifyStore(db *sql.DB) *GamifyStore {
	return &GamifyStore{db: db}
}

// CompletionOutcome reports everything one task completion changed, for
// broadcasting and notifications.
type CompletionOutcome struct {
	Completion          *model.TaskCompletion `json:"completion"`
	NewBalance          int                   `json:"new_balance"`
	StreakDays          int                   `json:"streak_days"`
	EarnedBadges        []model.Badge         `json:"earned_badges"`
	CompletedChallenges []model.Challenge     `json:"completed_challenges"`
}

// RedemptionOutcome reports the result of one successful redemption.
type RedemptionOutcome struct {
	Redemption   *model.RewardRedemption `json:"redemption"`
	Reward       *model.Reward           `json:"reward"`
	NewBalance   int                     `json:"new_balance"`
	EarnedBadges []model.Badge           `json:"earned_badges"`
}

// CompleteTask records a completion, credits the task's points, advances the
// streak, then re-checks the member's joined challenges and badge thresholds.
func (s *GamifyStore) CompleteTask(householdID, taskID, userID int64) (*CompletionOutcome, error) {
	now := time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var task model.Task
	err = tx.QueryRow(
		`SELECT id, household_id, title, points FROM tasks WHERE id = ? AND household_id = ?`,
		taskID, householdID,
	).Scan(&task.ID, &task.HouseholdID, &task.Title, &task.Points)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	result, err := tx.Exec(
		`INSERT INTO task_completions (task_id, completed_by, points_earned, completed_at) VALUES (?, ?, ?, ?)`,
		task.ID, userID, task.Points, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}
	completionID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	stats, lastCompleted, err := s.statsTx(tx, householdID, userID)
	if err != nil {
		return nil, err
	}

	stats, creditEntry, err := gamify.Credit(stats, task.Points, "completed "+task.Title, "task", task.ID)
	if err != nil {
		return nil, err
	}
	creditEntry.Type = model.ActivityTaskCompleted

	stats.StreakDays = gamify.StreakOnCompletion(stats.StreakDays, lastCompleted, now)
	if stats.StreakDays > stats.LongestStreak {
		stats.LongestStreak = stats.StreakDays
	}
	// The weekly count already includes the completion inserted above.
	stats.TotalTasksCompleted++

	if err := insertActivityTx(tx, householdID, &userID, creditEntry); err != nil {
		return nil, err
	}

	completed, stats, err := s.checkChallengesTx(tx, householdID, userID, stats, now)
	if err != nil {
		return nil, err
	}

	earned, err := s.awardBadgesTx(tx, householdID, userID, stats)
	if err != nil {
		return nil, err
	}

	if err := writeStatsTx(tx, householdID, userID, stats, &now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &CompletionOutcome{
		Completion: &model.TaskCompletion{
			ID:           completionID,
			TaskID:       task.ID,
			CompletedBy:  userID,
			PointsEarned: task.Points,
			CompletedAt:  now,
		},
		NewBalance:          stats.Points,
		StreakDays:          stats.StreakDays,
		EarnedBadges:        earned,
		CompletedChallenges: completed,
	}, nil
}

// UncompleteTask undoes a completion: the record is deleted, the points are
// debited, and the task counter is decremented. It fails with
// ErrInsufficientPoints when the member has already spent the points. The
// streak is not retroactively recomputed.
func (s *GamifyStore) UncompleteTask(householdID, completionID, userID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var c model.TaskCompletion
	err = tx.QueryRow(
		`SELECT c.id, c.task_id, c.completed_by, c.points_earned
		 FROM task_completions c JOIN tasks t ON t.id = c.task_id
		 WHERE c.id = ? AND t.household_id = ?`,
		completionID, householdID,
	).Scan(&c.ID, &c.TaskID, &c.CompletedBy, &c.PointsEarned)
	if err == sql.ErrNoRows {
		return sql.ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("get completion: %w", err)
	}

	stats, _, err := s.statsTx(tx, householdID, c.CompletedBy)
	if err != nil {
		return err
	}

	stats, debitEntry, err := gamify.Debit(stats, c.PointsEarned, "undid a task completion", "task", c.TaskID)
	if err != nil {
		return err
	}
	debitEntry.Type = model.ActivityTaskUncompleted

	if stats.TotalTasksCompleted > 0 {
		stats.TotalTasksCompleted--
	}

	if _, err := tx.Exec(`DELETE FROM task_completions WHERE id = ?`, c.ID); err != nil {
		return fmt.Errorf("delete completion: %w", err)
	}
	if err := insertActivityTx(tx, householdID, &userID, debitEntry); err != nil {
		return err
	}
	if err := writeStatsTx(tx, householdID, c.CompletedBy, stats, nil); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RedeemReward validates and executes a redemption atomically: the redemption
// record, the reward counters, the debit, and the activity entries all commit
// together or not at all.
func (s *GamifyStore) RedeemReward(householdID, rewardID, userID int64) (*RedemptionOutcome, error) {
	now := time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+rewardCols+` FROM rewards WHERE id = ? AND household_id = ?`, rewardID, householdID)
	reward, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}

	var userRedemptions int
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM reward_redemptions WHERE reward_id = ? AND redeemed_by = ?`,
		rewardID, userID,
	).Scan(&userRedemptions)
	if err != nil {
		return nil, fmt.Errorf("count user redemptions: %w", err)
	}

	stats, _, err := s.statsTx(tx, householdID, userID)
	if err != nil {
		return nil, err
	}

	res, err := gamify.Redeem(*reward, stats, userRedemptions, now)
	if err != nil {
		return nil, err
	}

	result, err := tx.Exec(
		`INSERT INTO reward_redemptions (reward_id, redeemed_by, points_spent, redeemed_at) VALUES (?, ?, ?, ?)`,
		reward.ID, userID, res.PointsSpent, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert redemption: %w", err)
	}
	redemptionID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE rewards SET times_redeemed = ?, available = ?, updated_at = datetime('now') WHERE id = ?`,
		res.Reward.TimesRedeemed, boolToInt(res.Reward.Available), reward.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update reward counters: %w", err)
	}

	for _, entry := range res.Activities {
		if err := insertActivityTx(tx, householdID, &userID, entry); err != nil {
			return nil, err
		}
	}

	earned, err := s.awardBadgesTx(tx, householdID, userID, res.Stats)
	if err != nil {
		return nil, err
	}

	if err := writeStatsTx(tx, householdID, userID, res.Stats, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &RedemptionOutcome{
		Redemption: &model.RewardRedemption{
			ID:          redemptionID,
			RewardID:    reward.ID,
			RedeemedBy:  userID,
			PointsSpent: res.PointsSpent,
			RedeemedAt:  now,
		},
		Reward:       &res.Reward,
		NewBalance:   res.Stats.Points,
		EarnedBadges: earned,
	}, nil
}

// JoinChallenge adds the member as a participant after re-deriving the
// challenge's join state.
func (s *GamifyStore) JoinChallenge(householdID, challengeID, userID int64) (*model.ChallengeParticipant, error) {
	now := time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+challengeCols+` FROM challenges WHERE id = ? AND household_id = ?`, challengeID, householdID)
	challenge, err := scanChallenge(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get challenge: %w", err)
	}

	var participants int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM challenge_participants WHERE challenge_id = ?`, challengeID).Scan(&participants); err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}

	var joined int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM challenge_participants WHERE challenge_id = ? AND user_id = ?`, challengeID, userID).Scan(&joined); err != nil {
		return nil, fmt.Errorf("check participant: %w", err)
	}

	if err := gamify.CanUserJoin(*challenge, participants, joined > 0, now); err != nil {
		return nil, err
	}

	result, err := tx.Exec(
		`INSERT INTO challenge_participants (challenge_id, user_id, joined_at) VALUES (?, ?, ?)`,
		challengeID, userID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert participant: %w", err)
	}
	participantID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	entry := gamify.ActivityEntry{
		Type:       model.ActivityChallengeJoined,
		Action:     "joined " + challenge.Title,
		EntityType: "challenge",
		EntityID:   challenge.ID,
	}
	if err := insertActivityTx(tx, householdID, &userID, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &model.ChallengeParticipant{
		ID:          participantID,
		ChallengeID: challengeID,
		UserID:      userID,
		JoinedAt:    now,
	}, nil
}

// LeaveChallenge removes an uncompleted participation.
func (s *GamifyStore) LeaveChallenge(householdID, challengeID, userID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var title string
	err = tx.QueryRow(`SELECT title FROM challenges WHERE id = ? AND household_id = ?`, challengeID, householdID).Scan(&title)
	if err == sql.ErrNoRows {
		return sql.ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("get challenge: %w", err)
	}

	result, err := tx.Exec(
		`DELETE FROM challenge_participants WHERE challenge_id = ? AND user_id = ? AND completed_at IS NULL`,
		challengeID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	entry := gamify.ActivityEntry{
		Type:       model.ActivityChallengeLeft,
		Action:     "left " + title,
		EntityType: "challenge",
		EntityID:   challengeID,
	}
	if err := insertActivityTx(tx, householdID, &userID, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// AdjustmentOutcome reports the result of one manual point adjustment.
type AdjustmentOutcome struct {
	NewBalance          int               `json:"new_balance"`
	EarnedBadges        []model.Badge     `json:"earned_badges"`
	CompletedChallenges []model.Challenge `json:"completed_challenges"`
}

// AdjustPoints applies a manual admin credit (delta > 0) or debit (delta < 0).
// A credit can push the member over a points-criteria challenge threshold, so
// joined challenges are re-checked just as after a task completion.
func (s *GamifyStore) AdjustPoints(householdID, userID int64, delta int, reason string) (*AdjustmentOutcome, error) {
	now := time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stats, _, err := s.statsTx(tx, householdID, userID)
	if err != nil {
		return nil, err
	}

	var entry gamify.ActivityEntry
	if delta >= 0 {
		stats, entry, err = gamify.Credit(stats, delta, reason, "user", userID)
	} else {
		stats, entry, err = gamify.Debit(stats, -delta, reason, "user", userID)
	}
	if err != nil {
		return nil, err
	}
	entry.Type = model.ActivityPointsAdjusted

	if err := insertActivityTx(tx, householdID, &userID, entry); err != nil {
		return nil, err
	}

	var completed []model.Challenge
	if delta > 0 {
		completed, stats, err = s.checkChallengesTx(tx, householdID, userID, stats, now)
		if err != nil {
			return nil, err
		}
	}

	earned, err := s.awardBadgesTx(tx, householdID, userID, stats)
	if err != nil {
		return nil, err
	}

	if err := writeStatsTx(tx, householdID, userID, stats, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &AdjustmentOutcome{
		NewBalance:          stats.Points,
		EarnedBadges:        earned,
		CompletedChallenges: completed,
	}, nil
}

// RecordMemberJoined initializes the new member's stats row, logs the join,
// and awards any membership badges.
func (s *GamifyStore) RecordMemberJoined(householdID, userID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stats, _, err := s.statsTx(tx, householdID, userID)
	if err != nil {
		return err
	}

	entry := gamify.ActivityEntry{
		Type:       model.ActivityMemberJoined,
		Action:     "joined the household",
		EntityType: "household",
		EntityID:   householdID,
	}
	if err := insertActivityTx(tx, householdID, &userID, entry); err != nil {
		return err
	}

	if _, err := s.awardBadgesTx(tx, householdID, userID, stats); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// StatsFor loads a member's live stats snapshot outside a transaction, for
// progress and leaderboard reads.
func (s *GamifyStore) StatsFor(householdID, userID int64) (gamify.Stats, error) {
	stats, lastCompleted, err := s.loadStats(s.db, householdID, userID)
	if err != nil {
		return gamify.Stats{}, err
	}
	stats.StreakDays = gamify.CurrentStreak(stats.StreakDays, lastCompleted, time.Now())
	return stats, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func (s *GamifyStore) statsTx(tx *sql.Tx, householdID, userID int64) (gamify.Stats, *time.Time, error) {
	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO member_stats (household_id, user_id) VALUES (?, ?)`,
		householdID, userID,
	); err != nil {
		return gamify.Stats{}, nil, fmt.Errorf("ensure stats row: %w", err)
	}
	return s.loadStats(tx, householdID, userID)
}

func (s *GamifyStore) loadStats(q querier, householdID, userID int64) (gamify.Stats, *time.Time, error) {
	var stats gamify.Stats
	var lastCompleted sql.NullTime

	err := q.QueryRow(
		`SELECT points, streak_days, longest_streak, total_tasks_completed, last_completed_at
		 FROM member_stats WHERE household_id = ? AND user_id = ?`,
		householdID, userID,
	).Scan(&stats.Points, &stats.StreakDays, &stats.LongestStreak, &stats.TotalTasksCompleted, &lastCompleted)
	if err != nil && err != sql.ErrNoRows {
		return gamify.Stats{}, nil, fmt.Errorf("get member stats: %w", err)
	}

	if err := q.QueryRow(`SELECT COUNT(*) FROM household_members WHERE user_id = ?`, userID).Scan(&stats.HouseholdCount); err != nil {
		return gamify.Stats{}, nil, fmt.Errorf("count memberships: %w", err)
	}
	if err := q.QueryRow(`SELECT COUNT(*) FROM reward_redemptions WHERE redeemed_by = ?`, userID).Scan(&stats.RedemptionCount); err != nil {
		return gamify.Stats{}, nil, fmt.Errorf("count redemptions: %w", err)
	}

	weekStart := startOfWeek(time.Now())
	err = q.QueryRow(
		`SELECT COUNT(*) FROM task_completions c JOIN tasks t ON t.id = c.task_id
		 WHERE c.completed_by = ? AND t.household_id = ? AND c.completed_at >= ?`,
		userID, householdID, weekStart,
	).Scan(&stats.TasksCompletedThisWeek)
	if err != nil {
		return gamify.Stats{}, nil, fmt.Errorf("count weekly completions: %w", err)
	}

	var last *time.Time
	if lastCompleted.Valid {
		last = &lastCompleted.Time
	}
	return stats, last, nil
}

func writeStatsTx(tx *sql.Tx, householdID, userID int64, stats gamify.Stats, lastCompleted *time.Time) error {
	if lastCompleted != nil {
		_, err := tx.Exec(
			`UPDATE member_stats SET points = ?, streak_days = ?, longest_streak = ?, total_tasks_completed = ?, last_completed_at = ?, updated_at = datetime('now')
			 WHERE household_id = ? AND user_id = ?`,
			stats.Points, stats.StreakDays, stats.LongestStreak, stats.TotalTasksCompleted, *lastCompleted, householdID, userID,
		)
		if err != nil {
			return fmt.Errorf("write member stats: %w", err)
		}
		return nil
	}
	_, err := tx.Exec(
		`UPDATE member_stats SET points = ?, streak_days = ?, longest_streak = ?, total_tasks_completed = ?, updated_at = datetime('now')
		 WHERE household_id = ? AND user_id = ?`,
		stats.Points, stats.StreakDays, stats.LongestStreak, stats.TotalTasksCompleted, householdID, userID,
	)
	if err != nil {
		return fmt.Errorf("write member stats: %w", err)
	}
	return nil
}

func insertActivityTx(tx *sql.Tx, householdID int64, userID *int64, entry gamify.ActivityEntry) error {
	_, err := tx.Exec(
		`INSERT INTO activities (household_id, user_id, type, action, points_delta, entity_type, entity_id) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		householdID, nullInt(userID), entry.Type, entry.Action, entry.PointsDelta, entry.EntityType, entry.EntityID,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// awardBadgesTx evaluates every active badge against the member's stats and
// inserts the earned edges. The UNIQUE(badge_id, user_id) constraint backs up
// the idempotence the earned-set check already provides.
func (s *GamifyStore) awardBadgesTx(tx *sql.Tx, householdID, userID int64, stats gamify.Stats) ([]model.Badge, error) {
	rows, err := tx.Query(`SELECT ` + badgeCols + ` FROM badges WHERE active = 1`)
	if err != nil {
		return nil, fmt.Errorf("list active badges: %w", err)
	}
	var badges []model.Badge
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		badges = append(badges, *b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	earnedSet := make(map[int64]bool)
	rows, err = tx.Query(`SELECT badge_id FROM earned_badges WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("earned set: %w", err)
	}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan earned id: %w", err)
		}
		earnedSet[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var earned []model.Badge
	for _, b := range badges {
		ok, entry := gamify.AwardIfEligible(b, stats, earnedSet[b.ID])
		if !ok {
			continue
		}
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO earned_badges (badge_id, user_id) VALUES (?, ?)`,
			b.ID, userID,
		); err != nil {
			return nil, fmt.Errorf("insert earned badge: %w", err)
		}
		if err := insertActivityTx(tx, householdID, &userID, entry); err != nil {
			return nil, err
		}
		earned = append(earned, b)
	}
	return earned, nil
}

// checkChallengesTx re-evaluates the member's uncompleted participations in
// this household's active challenges, marking completions and crediting their
// point rewards.
func (s *GamifyStore) checkChallengesTx(tx *sql.Tx, householdID, userID int64, stats gamify.Stats, now time.Time) ([]model.Challenge, gamify.Stats, error) {
	rows, err := tx.Query(
		`SELECT `+prefixedChallengeCols+`
		 FROM challenges c JOIN challenge_participants p ON p.challenge_id = c.id
		 WHERE c.household_id = ? AND c.active = 1 AND p.user_id = ? AND p.completed_at IS NULL`,
		householdID, userID,
	)
	if err != nil {
		return nil, stats, fmt.Errorf("list joined challenges: %w", err)
	}
	var candidates []model.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			rows.Close()
			return nil, stats, fmt.Errorf("scan challenge: %w", err)
		}
		candidates = append(candidates, *c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, stats, err
	}

	var completed []model.Challenge
	for _, c := range candidates {
		if gamify.ChallengeExpired(c, now) {
			continue
		}
		if !gamify.CheckCompletion(c, stats) {
			continue
		}

		if _, err := tx.Exec(
			`UPDATE challenge_participants SET completed_at = ? WHERE challenge_id = ? AND user_id = ?`,
			now, c.ID, userID,
		); err != nil {
			return nil, stats, fmt.Errorf("mark challenge complete: %w", err)
		}

		var entry gamify.ActivityEntry
		stats, entry, err = gamify.Credit(stats, c.PointReward, "completed "+c.Title, "challenge", c.ID)
		if err != nil {
			return nil, stats, err
		}
		entry.Type = model.ActivityChallengeCompleted
		if err := insertActivityTx(tx, householdID, &userID, entry); err != nil {
			return nil, stats, err
		}
		completed = append(completed, c)
	}
	return completed, stats, nil
}

const prefixedChallengeCols = `c.id, c.household_id, c.title, c.description, c.point_reward, c.due_date, c.max_participants, c.criteria_type, c.criteria_threshold, c.active, c.created_by, c.created_at, c.updated_at`

// startOfWeek returns Monday 00:00 UTC of the week containing t. Weeks are
// UTC weeks, matching the UTC calendar days the streak rules use.
func startOfWeek(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}
