package domain

import "time"

// Notification kinds, used by front ends to pick an icon/tone only.
const (
	NotifyPurchase = "purchase"
	NotifyCredits  = "credits"
	NotifyAdmin    = "admin"
	NotifyInfo     = "info"
)

// Notification is a fallback-queue record for accounts whose primary chat
// channel is absent or failed. The queue is a bounded FIFO per account so
// storage cannot grow without bound.
type Notification struct {
	ID        string
	AccountID string
	Kind      string
	Message   string
	CreatedAt time.Time
	Read      bool
}

func (n Notification) IsUnread() bool { return !n.Read }
