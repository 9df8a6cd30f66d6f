package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geniusbot/core/internal/domain"
	"github.com/geniusbot/core/internal/observability"
)

// Balance returns the account's credit balance, initializing it with the
// first-touch grant when the account has never used credits before.
func (s *Service) Balance(ctx context.Context, accountID string) (domain.CreditBalance, error) {
	s.creditsMu.Lock()
	defer s.creditsMu.Unlock()
	return s.balanceLocked(ctx, strings.TrimSpace(accountID))
}

func (s *Service) balanceLocked(ctx context.Context, accountID string) (domain.CreditBalance, error) {
	balance, err := s.ledger.GetBalance(ctx, accountID)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.CreditBalance{}, err
	}

	// Unknown balance, not unknown account: credits are the only state that
	// first-touch initializes, so the account itself must already exist.
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return domain.CreditBalance{}, err
	}
	return s.ledger.Init(ctx, accountID, s.cfg.InitialCredits, s.nowFn())
}

// Spend atomically decrements the balance by amount when it covers the
// amount, and makes no change otherwise. No partial spend, never negative.
func (s *Service) Spend(ctx context.Context, accountID string, amount int) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("%w: spend amount must be positive", domain.ErrInvalidInput)
	}

	s.creditsMu.Lock()
	defer s.creditsMu.Unlock()

	balance, err := s.balanceLocked(ctx, strings.TrimSpace(accountID))
	if err != nil {
		return false, err
	}
	if balance.Credits < amount {
		return false, nil
	}
	if _, err := s.ledger.ApplyDelta(ctx, balance.AccountID, -amount, domain.LedgerReasonSpend, s.nowFn()); err != nil {
		if errors.Is(err, domain.ErrInsufficientCredits) {
			// Another process won the race between our read and the write.
			return false, nil
		}
		return false, err
	}
	observability.CreditsSpent.Add(float64(amount))
	return true, nil
}

// Grant increments the balance and records the reason. It fails only when
// the account does not exist; the rollback grant after a failed download
// rides this same path.
func (s *Service) Grant(ctx context.Context, accountID string, amount int, reason string) error {
	if amount <= 0 {
		return fmt.Errorf("%w: grant amount must be positive", domain.ErrInvalidInput)
	}
	if reason == "" {
		reason = domain.LedgerReasonAdmin
	}

	s.creditsMu.Lock()
	defer s.creditsMu.Unlock()

	balance, err := s.balanceLocked(ctx, strings.TrimSpace(accountID))
	if err != nil {
		return err
	}
	if _, err := s.ledger.ApplyDelta(ctx, balance.AccountID, amount, reason, s.nowFn()); err != nil {
		return err
	}
	observability.CreditsGranted.Add(float64(amount))
	return nil
}

// LedgerHistory returns the append-only audit trail for an account.
func (s *Service) LedgerHistory(ctx context.Context, accountID string) ([]domain.LedgerEntry, error) {
	return s.ledger.Entries(ctx, strings.TrimSpace(accountID))
}
