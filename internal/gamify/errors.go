package gamify

import "errors"

// Rejections are terminal per-call outcomes. None of them leave partial
// state behind and none are retried.
var (
	ErrInsufficientPoints = errors.New("not enough points")
	ErrCannotRedeem       = errors.New("reward cannot be redeemed")
	ErrAlreadyEarned      = errors.New("badge already earned")
	ErrCannotJoin         = errors.New("cannot join challenge")
	ErrInvalidRequirement = errors.New("requirement must be at least 1")
	ErrInvalidAmount      = errors.New("amount must not be negative")
)
