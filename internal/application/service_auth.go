package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geniusbot/core/internal/domain"
)

// Authenticate verifies the account's password and mints a fresh session,
// silently invalidating any prior one. Lockout state is checked first and
// the failed-attempt counter is maintained on every outcome, so the
// account record stays the single source of truth for brute-force policy.
func (s *Service) Authenticate(ctx context.Context, accountID, password, origin string) (string, error) {
	return s.authenticate(ctx, strings.TrimSpace(accountID), password, origin)
}

// AuthenticateByUsername is the web login path: resolve the username, then
// run the same authentication flow.
func (s *Service) AuthenticateByUsername(ctx context.Context, username, password, origin string) (domain.Account, string, error) {
	account, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Account{}, "", domain.ErrInvalidCredentials
		}
		return domain.Account{}, "", err
	}
	token, err := s.authenticate(ctx, account.ID, password, origin)
	if err != nil {
		return domain.Account{}, "", err
	}
	return account, token, nil
}

// authenticate runs in three phases so the password hash comparison never
// holds identityMu: fetch and lockout check under the lock, the compare
// outside it, then the counter or session write back under the lock
// against a re-read account.
func (s *Service) authenticate(ctx context.Context, accountID, password, origin string) (string, error) {
	s.identityMu.Lock()
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		s.identityMu.Unlock()
		return "", err
	}
	now := s.nowFn()
	if account.Locked(now) {
		s.identityMu.Unlock()
		return "", fmt.Errorf("%w: retry in %s", domain.ErrAccountLocked, account.LockRemaining(now).Round(time.Second))
	}
	s.identityMu.Unlock()

	compareErr := s.hasher.Compare(account.PasswordHash, password)

	s.identityMu.Lock()
	defer s.identityMu.Unlock()

	// The counter may have moved while the hash ran.
	account, err = s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	if compareErr != nil {
		if lockErr := s.recordFailedAttemptLocked(ctx, account, s.nowFn()); lockErr != nil {
			return "", lockErr
		}
		return "", domain.ErrInvalidCredentials
	}

	// Success clears lockout bookkeeping before the new session is installed.
	if account.FailedAttempts != 0 || !account.LockedUntil.IsZero() {
		if err := s.accounts.SetLockState(ctx, account.ID, 0, time.Time{}); err != nil {
			return "", err
		}
	}
	return s.startSessionLocked(ctx, account.ID, origin)
}

// startSessionLocked mints a token and supersedes any prior session.
func (s *Service) startSessionLocked(ctx context.Context, accountID, origin string) (string, error) {
	token := newSessionToken()
	session := domain.Session{
		AccountID: accountID,
		Token:     token,
		Origin:    origin,
		CreatedAt: s.nowFn(),
	}
	if err := s.sessions.Replace(ctx, session); err != nil {
		return "", err
	}
	return token, nil
}

// recordFailedAttemptLocked increments the counter and arms the lockout
// window at the threshold, resetting the counter as the original policy does.
func (s *Service) recordFailedAttemptLocked(ctx context.Context, account domain.Account, now time.Time) error {
	failed := account.FailedAttempts + 1
	lockedUntil := account.LockedUntil
	if failed >= s.cfg.FailedThreshold {
		lockedUntil = now.Add(s.cfg.LockWindow)
		failed = 0
	}
	return s.accounts.SetLockState(ctx, account.ID, failed, lockedUntil)
}

// Validate reports whether token is the account's single active session
// token. Any mismatch, including no active session at all, is false; this
// is what makes only the most recent login stay valid.
func (s *Service) Validate(ctx context.Context, accountID, token string) bool {
	if strings.TrimSpace(accountID) == "" || token == "" {
		return false
	}
	session, err := s.sessions.GetByAccount(ctx, accountID)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(session.Token), []byte(token)) == 1
}

// Invalidate removes the active session unconditionally (logout).
func (s *Service) Invalidate(ctx context.Context, accountID string) error {
	s.identityMu.Lock()
	defer s.identityMu.Unlock()
	return s.sessions.Delete(ctx, strings.TrimSpace(accountID))
}
