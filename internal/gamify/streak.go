package gamify

import "time"

// StreakOnCompletion returns the streak after a task completion at now, given
// the streak before it and the time of the member's previous completion (nil
// if they have never completed a task).
//
// A completion on the day after the previous one extends the streak. A second
// completion on the same day leaves it unchanged. Any gap of a full calendar
// day or more breaks the streak and starts a new one at 1.
func StreakOnCompletion(prev int, lastCompleted *time.Time, now time.Time) int {
	if lastCompleted == nil {
		return 1
	}
	switch {
	case sameDay(*lastCompleted, now):
		if prev < 1 {
			return 1
		}
		return prev
	case sameDay(*lastCompleted, now.AddDate(0, 0, -1)):
		return prev + 1
	default:
		return 1
	}
}

// CurrentStreak decays a stored streak for display: once a member has gone a
// full calendar day without completing anything, the streak reads as 0 even
// though the stored value is only rewritten on the next completion.
func CurrentStreak(stored int, lastCompleted *time.Time, now time.Time) int {
	if lastCompleted == nil {
		return 0
	}
	if sameDay(*lastCompleted, now) || sameDay(*lastCompleted, now.AddDate(0, 0, -1)) {
		return stored
	}
	return 0
}

// Calendar days are UTC days. Timestamps round-trip through sqlite in UTC,
// so comparing in the server's local zone would bucket completions near
// midnight into the wrong day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
