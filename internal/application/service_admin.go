package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/geniusbot/core/internal/domain"
)

// Stats is the admin dashboard aggregate.
type Stats struct {
	Accounts         int64
	TotalCredits     int64
	PendingPurchases int64
}

// AdminStats aggregates the account, credit and pending-purchase counters.
func (s *Service) AdminStats(ctx context.Context) (Stats, error) {
	accounts, err := s.accounts.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	credits, err := s.ledger.TotalCredits(ctx)
	if err != nil {
		return Stats{}, err
	}
	pending, err := s.purchases.CountPending(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Accounts: accounts, TotalCredits: credits, PendingPurchases: pending}, nil
}

// AddCredits is the manual admin grant, with the owner notified.
func (s *Service) AddCredits(ctx context.Context, accountID string, amount int) error {
	accountID = strings.TrimSpace(accountID)
	if err := s.Grant(ctx, accountID, amount, domain.LedgerReasonAdmin); err != nil {
		return err
	}
	if account, err := s.accounts.GetByID(ctx, accountID); err == nil {
		s.notifier.Notify(ctx, account, domain.NotifyCredits, fmt.Sprintf("+%d credits added by the administrator.", amount))
	}
	return nil
}

// Broadcast routes an administrator message to every known account. Each
// delivery degrades independently, so one dead channel cannot stall the
// rest; the returned count is how many accounts were targeted.
func (s *Service) Broadcast(ctx context.Context, message string) (int, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return 0, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}

	ids, err := s.accounts.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, id := range ids {
		account, err := s.accounts.GetByID(ctx, id)
		if err != nil {
			continue
		}
		s.notifier.Notify(ctx, account, domain.NotifyAdmin, message)
		sent++
	}
	return sent, nil
}
