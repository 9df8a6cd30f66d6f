package ports

import (
	"context"
	"time"

	"github.com/geniusbot/core/internal/domain"
)

// AccountRepository defines persistence for identity records.
// Origin and channel lookups exist because each front end authenticates a
// different way: the web by username, the chat bots by channel handle, and
// recovery by historical origin.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByUsername(ctx context.Context, username string) (domain.Account, error)
	GetByOrigin(ctx context.Context, origin string) (domain.Account, error)
	GetByChannel(ctx context.Context, channelHandle string) (domain.Account, error)
	// SetLockState persists the failed-attempt counter and lockout deadline.
	SetLockState(ctx context.Context, id string, failedAttempts int, lockedUntil time.Time) error
	SetChannel(ctx context.Context, id, channelHandle string) error
	// RebindOrigin moves the account's origin binding in one write so a
	// recovery can never leave the old and new origin mapped at once.
	RebindOrigin(ctx context.Context, id, origin string) error
	ListIDs(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

// SessionRepository manages the single active session per account.
type SessionRepository interface {
	// Replace installs the session, superseding any prior one for the account.
	Replace(ctx context.Context, session domain.Session) error
	GetByAccount(ctx context.Context, accountID string) (domain.Session, error)
	Delete(ctx context.Context, accountID string) error
}

// LedgerRepository owns credit balances and their append-only audit trail.
// ApplyDelta must mutate the balance and append the matching entry in one
// storage transaction, and must refuse any delta that would drive the
// balance negative, so the sum-of-entries invariant survives process races.
type LedgerRepository interface {
	GetBalance(ctx context.Context, accountID string) (domain.CreditBalance, error)
	// Init creates the balance row with the first-touch grant and its init entry.
	Init(ctx context.Context, accountID string, credits int, at time.Time) (domain.CreditBalance, error)
	ApplyDelta(ctx context.Context, accountID string, delta int, reason string, at time.Time) (domain.CreditBalance, error)
	Entries(ctx context.Context, accountID string) ([]domain.LedgerEntry, error)
	TotalCredits(ctx context.Context) (int64, error)
}

// PurchaseRepository owns the purchase-request lifecycle. Resolve and
// ResolveAllPending apply the pending -> terminal transition conditionally
// inside the store so concurrent resolutions cannot both win.
type PurchaseRepository interface {
	Create(ctx context.Context, request domain.PurchaseRequest) error
	GetByID(ctx context.Context, id string) (domain.PurchaseRequest, error)
	// LatestPending returns the most recently created pending request for the
	// account, optionally restricted to one pack size.
	LatestPending(ctx context.Context, accountID string, pack *domain.PackSize) (domain.PurchaseRequest, error)
	Resolve(ctx context.Context, id string, status domain.PurchaseStatus, note string, at time.Time) (domain.PurchaseRequest, error)
	// ResolveAllPending bulk-transitions every pending request and returns
	// both the affected requests (for notification fan-out) and their count.
	ResolveAllPending(ctx context.Context, status domain.PurchaseStatus, note string, at time.Time) ([]domain.PurchaseRequest, error)
	UnseenFor(ctx context.Context, accountID string) ([]domain.PurchaseRequest, error)
	MarkSeen(ctx context.Context, accountID string, ids []string) (int64, error)
	CountPending(ctx context.Context) (int64, error)
}

// NotificationRepository stores the per-account fallback queue.
type NotificationRepository interface {
	// Push appends a notification, dropping the oldest entries beyond cap.
	Push(ctx context.Context, notification domain.Notification, cap int) error
	ListFor(ctx context.Context, accountID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, accountID string, ids []string) (int64, error)
	CountUnread(ctx context.Context, accountID string) (int, error)
}
