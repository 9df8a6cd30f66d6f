package domain

import (
	"strings"
	"time"
)

// PackSize is a purchasable credit bundle.
type PackSize int

const (
	PackBronze PackSize = 10
	PackSilver PackSize = 50
	PackGold   PackSize = 100
)

// ParsePackSize accepts the numeric form used by the web shop and the pack
// names used by the chat shop menu. Unknown values are rejected rather than
// defaulted so a typoed approval can never grant the wrong amount.
func ParsePackSize(raw string) (PackSize, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "10", "bronze":
		return PackBronze, nil
	case "50", "silver":
		return PackSilver, nil
	case "100", "gold", "premium":
		return PackGold, nil
	default:
		return 0, ErrInvalidPackSize
	}
}

// Credits returns the number of credits the pack converts into on approval.
func (p PackSize) Credits() int { return int(p) }

// PurchaseStatus is the lifecycle state of a purchase request.
type PurchaseStatus string

const (
	PurchasePending     PurchaseStatus = "pending"
	PurchaseAccepted    PurchaseStatus = "accepted"
	PurchaseRefused     PurchaseStatus = "refused"
	PurchaseUnavailable PurchaseStatus = "unavailable"
)

// Terminal reports whether the status ends the request lifecycle.
func (s PurchaseStatus) Terminal() bool {
	return s == PurchaseAccepted || s == PurchaseRefused || s == PurchaseUnavailable
}

// ParsePurchaseResolution parses an admin decision into a terminal status.
func ParsePurchaseResolution(raw string) (PurchaseStatus, error) {
	switch PurchaseStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case PurchaseAccepted:
		return PurchaseAccepted, nil
	case PurchaseRefused:
		return PurchaseRefused, nil
	case PurchaseUnavailable:
		return PurchaseUnavailable, nil
	default:
		return "", ErrInvalidInput
	}
}

// Channels a purchase request can originate from.
const (
	ChannelWeb  = "web"
	ChannelChat = "chat"
)

// PurchaseRequest is a pending ask to convert a pack into credits, approved
// or denied out-of-band by an administrator. It transitions exactly once
// from pending to a terminal status; Seen resets to false on every status
// change so the owning account gets notified.
type PurchaseRequest struct {
	ID            string
	AccountID     string
	Pack          PackSize
	OriginChannel string
	Status        PurchaseStatus
	CreatedAt     time.Time
	ProcessedAt   *time.Time
	ResponseNote  string
	Seen          bool
}

// Resolve applies the pending -> terminal transition in place.
// It is the only mutation path; a non-pending request is frozen.
func (p *PurchaseRequest) Resolve(status PurchaseStatus, note string, at time.Time) error {
	if p.Status != PurchasePending {
		return ErrAlreadyProcessed
	}
	if !status.Terminal() {
		return ErrInvalidInput
	}
	t := at.UTC()
	p.Status = status
	p.ProcessedAt = &t
	p.ResponseNote = note
	p.Seen = false
	return nil
}
