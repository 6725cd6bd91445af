// Package gamify implements the points, streak, badge, reward, and challenge
// rules. Everything here is pure computation over values the caller loads;
// nothing is persisted. Each mutating function returns the updated values plus
// the activity entries the caller must commit in the same transaction.
package gamify

// Stats is a snapshot of one member's counters at evaluation time.
type Stats struct {
	Points                 int
	StreakDays             int
	LongestStreak          int
	TotalTasksCompleted    int
	HouseholdCount         int
	RedemptionCount        int
	TasksCompletedThisWeek int
}

// ActivityEntry describes one state change for the audit log. The caller fills
// in household and user scope when persisting.
type ActivityEntry struct {
	Type        string
	Action      string
	PointsDelta int
	EntityType  string
	EntityID    int64
}

// Progress reports how far a member is toward a badge or challenge target.
// Percentage is floored and clamped to [0, 100].
type Progress struct {
	Current    int `json:"current"`
	Target     int `json:"target"`
	Percentage int `json:"percentage"`
}

func progressOf(current, target int) Progress {
	p := Progress{Current: current, Target: target}
	if target <= 0 {
		// Misconfigured definition; report complete rather than divide by zero.
		p.Percentage = 100
		return p
	}
	pct := current * 100 / target
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	p.Percentage = pct
	return p
}
