package domain

import (
	"strings"
	"time"
	"unicode"
)

// Account is the canonical identity aggregate shared by the web and chat
// front ends. It keeps the lockout counters inline because the identity
// store is their single owner.
type Account struct {
	ID              string
	Username        string
	PasswordHash    string
	CreationOrigin  string
	LinkedChannelID string
	FailedAttempts  int
	LockedUntil     time.Time
	CreatedAt       time.Time
}

// Locked reports whether the account is inside an active lockout window.
func (a Account) Locked(now time.Time) bool {
	return a.LockedUntil.After(now)
}

// LockRemaining returns the time left on an active lockout, zero otherwise.
func (a Account) LockRemaining(now time.Time) time.Duration {
	if !a.Locked(now) {
		return 0
	}
	return a.LockedUntil.Sub(now)
}

// Session models the single active login session for an account.
// At most one session exists per account; a fresh authentication replaces it.
type Session struct {
	AccountID string
	Token     string
	Origin    string
	CreatedAt time.Time
}

// ValidateChannelHandle checks the numeric-identifier format used by the
// external chat channel. Handles are decimal digit strings without sign or
// leading zero padding beyond a single digit.
func ValidateChannelHandle(handle string) error {
	handle = strings.TrimSpace(handle)
	if handle == "" || len(handle) > 20 {
		return ErrInvalidChannelHandle
	}
	for _, r := range handle {
		if !unicode.IsDigit(r) {
			return ErrInvalidChannelHandle
		}
	}
	if len(handle) > 1 && handle[0] == '0' {
		return ErrInvalidChannelHandle
	}
	return nil
}
