package domain

import "time"

// Ledger entry reasons. The reason string is part of the audit contract:
// the sum of deltas per account must equal the live balance at all times.
const (
	LedgerReasonInit     = "init"
	LedgerReasonSpend    = "spend"
	LedgerReasonRollback = "rollback"
	LedgerReasonPurchase = "purchase"
	LedgerReasonAdmin    = "admin"
)

// CreditBalance is the live credit count for an account. It never goes
// negative; every mutation is mirrored by a LedgerEntry.
type CreditBalance struct {
	AccountID string
	Credits   int
	UpdatedAt time.Time
}

// LedgerEntry is the immutable audit record of a single balance change.
type LedgerEntry struct {
	ID        int64
	AccountID string
	Delta     int
	Reason    string
	CreatedAt time.Time
}
