package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/geniusbot/core/internal/domain"
)

// RecoverByChannel re-binds the account linked to channelHandle onto the
// requesting origin and opens a fresh session for it. Recovery is refused
// until the account is older than the cooldown window; without that guard a
// fresh registration could be hijacked through the recovery path.
func (s *Service) RecoverByChannel(ctx context.Context, channelHandle, origin string) (domain.Account, string, error) {
	if err := domain.ValidateChannelHandle(channelHandle); err != nil {
		return domain.Account{}, "", err
	}

	s.identityMu.Lock()
	defer s.identityMu.Unlock()

	account, err := s.accounts.GetByChannel(ctx, strings.TrimSpace(channelHandle))
	if err != nil {
		return domain.Account{}, "", err
	}
	return s.recoverLocked(ctx, account, origin)
}

// RecoverByOrigin locates the account historically bound to origin and
// re-binds it to that same requesting origin.
func (s *Service) RecoverByOrigin(ctx context.Context, origin string) (domain.Account, string, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return domain.Account{}, "", fmt.Errorf("%w: origin is required", domain.ErrInvalidInput)
	}

	s.identityMu.Lock()
	defer s.identityMu.Unlock()

	account, err := s.accounts.GetByOrigin(ctx, origin)
	if err != nil {
		return domain.Account{}, "", err
	}
	return s.recoverLocked(ctx, account, origin)
}

func (s *Service) recoverLocked(ctx context.Context, account domain.Account, origin string) (domain.Account, string, error) {
	now := s.nowFn()
	age := now.Sub(account.CreatedAt)
	if age < s.cfg.RecoveryCooldown {
		remaining := (s.cfg.RecoveryCooldown - age).Round(time.Minute)
		return domain.Account{}, "", fmt.Errorf("%w: available in %s", domain.ErrRecoveryTooSoon, remaining)
	}

	// Recovery wins over registration: the origin binding moves to the
	// recovered account in one write, and any later Register on a bound
	// origin fails DuplicateOrigin regardless of how the binding arose.
	if err := s.accounts.RebindOrigin(ctx, account.ID, strings.TrimSpace(origin)); err != nil {
		return domain.Account{}, "", err
	}
	account.CreationOrigin = strings.TrimSpace(origin)

	token, err := s.startSessionLocked(ctx, account.ID, account.CreationOrigin)
	if err != nil {
		return domain.Account{}, "", err
	}
	return account, token, nil
}
