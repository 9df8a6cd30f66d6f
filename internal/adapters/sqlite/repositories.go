package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geniusbot/core/internal/domain"
	"github.com/geniusbot/core/internal/ports"
	"gorm.io/gorm"
)

// Repositories bundles every store bound to one shared database handle.
type Repositories struct {
	Accounts      ports.AccountRepository
	Sessions      ports.SessionRepository
	Ledger        ports.LedgerRepository
	Purchases     ports.PurchaseRepository
	Notifications ports.NotificationRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Accounts:      &accountRepository{db: db},
		Sessions:      &sessionRepository{db: db},
		Ledger:        &ledgerRepository{db: db},
		Purchases:     &purchaseRepository{db: db},
		Notifications: &notificationRepository{db: db},
	}
}

// withWriteRetry retries a failed store write once before surfacing the
// caller-facing StorageUnavailable sentinel. Transient SQLITE_BUSY under
// cross-process contention is the case the retry exists for.
func withWriteRetry(ctx context.Context, operation string, fn func() error) error {
	err := fn()
	if err == nil || isDomainError(err) {
		return err
	}
	slog.Default().WarnContext(ctx, "store write failed, retrying once",
		"module", "sqlite",
		"layer", "adapter",
		"operation", operation,
		"outcome", "retry",
		"error", err,
	)
	if err = fn(); err == nil || isDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %s", domain.ErrStorageUnavailable, operation)
}

// isDomainError separates contract outcomes from storage faults so the
// retry wrapper never replays a conflict or masks a not-found.
func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrDuplicateOrigin) ||
		errors.Is(err, domain.ErrAlreadyProcessed) ||
		errors.Is(err, domain.ErrInsufficientCredits)
}

func logMalformedRow(ctx context.Context, table string, err error) {
	slog.Default().WarnContext(ctx, "skipping malformed persisted row",
		"module", "sqlite",
		"layer", "adapter",
		"operation", "load",
		"outcome", "skipped",
		"table", table,
		"error", err,
	)
}
