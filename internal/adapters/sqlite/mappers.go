package sqlite

import (
	"fmt"
	"time"

	"github.com/geniusbot/core/internal/domain"
)

// Persisted rows are validated on the way out instead of being defaulted
// silently; a malformed row is rejected so list callers can skip and log it.

func toDomainAccount(rec accountModel) (domain.Account, error) {
	if rec.AccountID == "" || rec.Username == "" {
		return domain.Account{}, fmt.Errorf("malformed account row: missing identity fields")
	}
	account := domain.Account{
		ID:              rec.AccountID,
		Username:        rec.Username,
		PasswordHash:    rec.PasswordHash,
		CreationOrigin:  rec.Origin,
		LinkedChannelID: rec.ChannelID,
		FailedAttempts:  rec.FailedAttempts,
		CreatedAt:       rec.CreatedAt.UTC(),
	}
	if rec.LockedUntil != nil {
		account.LockedUntil = rec.LockedUntil.UTC()
	}
	return account, nil
}

func toDomainSession(rec sessionModel) domain.Session {
	return domain.Session{
		AccountID: rec.AccountID,
		Token:     rec.Token,
		Origin:    rec.Origin,
		CreatedAt: rec.CreatedAt.UTC(),
	}
}

func toDomainBalance(rec creditBalanceModel) domain.CreditBalance {
	return domain.CreditBalance{
		AccountID: rec.AccountID,
		Credits:   rec.Credits,
		UpdatedAt: rec.UpdatedAt.UTC(),
	}
}

func toDomainEntry(rec ledgerEntryModel) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:        rec.ID,
		AccountID: rec.AccountID,
		Delta:     rec.Delta,
		Reason:    rec.Reason,
		CreatedAt: rec.CreatedAt.UTC(),
	}
}

func toDomainPurchase(rec purchaseRequestModel) (domain.PurchaseRequest, error) {
	if rec.RequestID == "" || rec.AccountID == "" {
		return domain.PurchaseRequest{}, fmt.Errorf("malformed purchase row: missing identity fields")
	}
	status := domain.PurchaseStatus(rec.Status)
	if status != domain.PurchasePending && !status.Terminal() {
		return domain.PurchaseRequest{}, fmt.Errorf("malformed purchase row: unknown status %q", rec.Status)
	}
	request := domain.PurchaseRequest{
		ID:            rec.RequestID,
		AccountID:     rec.AccountID,
		Pack:          domain.PackSize(rec.Pack),
		OriginChannel: rec.OriginChannel,
		Status:        status,
		CreatedAt:     rec.CreatedAt.UTC(),
		ResponseNote:  rec.ResponseNote,
		Seen:          rec.Seen,
	}
	if rec.ProcessedAt != nil {
		t := rec.ProcessedAt.UTC()
		request.ProcessedAt = &t
	}
	return request, nil
}

func fromDomainPurchase(request domain.PurchaseRequest) purchaseRequestModel {
	rec := purchaseRequestModel{
		RequestID:     request.ID,
		AccountID:     request.AccountID,
		Pack:          request.Pack.Credits(),
		OriginChannel: request.OriginChannel,
		Status:        string(request.Status),
		CreatedAt:     request.CreatedAt.UTC(),
		ResponseNote:  request.ResponseNote,
		Seen:          request.Seen,
	}
	if request.ProcessedAt != nil {
		t := request.ProcessedAt.UTC()
		rec.ProcessedAt = &t
	}
	return rec
}

func toDomainNotification(rec notificationModel) domain.Notification {
	return domain.Notification{
		ID:        rec.NotificationID,
		AccountID: rec.AccountID,
		Kind:      rec.Kind,
		Message:   rec.Message,
		CreatedAt: rec.CreatedAt.UTC(),
		Read:      rec.IsRead,
	}
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
