package model

import "time"

// Session is a device login. The token is the cookie value; the household
// is whichever one the device last switched to.
type Session struct {
	ID          int64     `json:"id"`
	Token       string    `json:"token"`
	UserID      int64     `json:"user_id"`
	HouseholdID int64     `json:"household_id"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// MagicLink is a pending email verification. Code is the 6-digit number the
// user types back; Purpose distinguishes register, login and invite flows.
// Attempts counts failed guesses so the code can be burned after too many.
type MagicLink struct {
	ID          int64      `json:"id"`
	Code        string     `json:"code"`
	Email       string     `json:"email"`
	Purpose     string     `json:"purpose"`
	HouseholdID *int64     `json:"household_id"`
	ExpiresAt   time.Time  `json:"expires_at"`
	UsedAt      *time.Time `json:"used_at"`
	Attempts    int        `json:"attempts"`
	CreatedAt   time.Time  `json:"created_at"`
}
