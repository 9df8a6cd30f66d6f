package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geniusbot/core/internal/domain"
	"github.com/geniusbot/core/internal/observability"
)

// CreatePurchase opens a pending purchase request from either front end and
// alerts the administrator channel. The request ID derives from the account
// and creation time, nudged forward on the rare same-millisecond collision.
func (s *Service) CreatePurchase(ctx context.Context, accountID, packRaw, originChannel string) (domain.PurchaseRequest, error) {
	pack, err := domain.ParsePackSize(packRaw)
	if err != nil {
		return domain.PurchaseRequest{}, err
	}
	if originChannel != domain.ChannelWeb && originChannel != domain.ChannelChat {
		return domain.PurchaseRequest{}, fmt.Errorf("%w: unknown origin channel %q", domain.ErrInvalidInput, originChannel)
	}
	account, err := s.accounts.GetByID(ctx, strings.TrimSpace(accountID))
	if err != nil {
		return domain.PurchaseRequest{}, err
	}

	request := domain.PurchaseRequest{
		AccountID:     account.ID,
		Pack:          pack,
		OriginChannel: originChannel,
		Status:        domain.PurchasePending,
		CreatedAt:     s.nowFn(),
	}

	s.purchaseMu.Lock()
	stamp := request.CreatedAt.UnixMilli()
	for {
		request.ID = fmt.Sprintf("%s_%d", account.ID, stamp)
		err = s.purchases.Create(ctx, request)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConflict) {
			s.purchaseMu.Unlock()
			return domain.PurchaseRequest{}, err
		}
		stamp++
	}
	s.purchaseMu.Unlock()

	observability.PurchasesCreated.Inc()
	if s.alerter != nil {
		s.alerter.AlertPurchase(ctx, request)
	}
	return request, nil
}

// FindLatestPending resolves which request an account-only approval refers
// to: the most recently created pending request, optionally restricted to
// one pack size.
func (s *Service) FindLatestPending(ctx context.Context, accountID string, pack *domain.PackSize) (domain.PurchaseRequest, error) {
	return s.purchases.LatestPending(ctx, strings.TrimSpace(accountID), pack)
}

// ResolvePurchase applies the single pending -> terminal transition. An
// accepted request grants the pack's credits before the owner is notified;
// a request already terminal returns AlreadyProcessed with no state change.
func (s *Service) ResolvePurchase(ctx context.Context, requestID string, status domain.PurchaseStatus, note string) (domain.PurchaseRequest, error) {
	if !status.Terminal() {
		return domain.PurchaseRequest{}, fmt.Errorf("%w: %q is not a terminal status", domain.ErrInvalidInput, status)
	}

	s.purchaseMu.Lock()
	request, err := s.purchases.Resolve(ctx, strings.TrimSpace(requestID), status, note, s.nowFn())
	s.purchaseMu.Unlock()
	if err != nil {
		return domain.PurchaseRequest{}, err
	}
	observability.PurchasesResolved.WithLabelValues(string(status)).Inc()

	if status == domain.PurchaseAccepted {
		if err := s.Grant(ctx, request.AccountID, request.Pack.Credits(), domain.LedgerReasonPurchase); err != nil {
			return domain.PurchaseRequest{}, err
		}
	}

	s.notifyPurchase(ctx, request)
	return request, nil
}

// ResolveLatestFor is the chat-admin shortcut: the approval action carries
// only an account identifier, so the target is the latest pending request.
func (s *Service) ResolveLatestFor(ctx context.Context, accountID string, pack *domain.PackSize, status domain.PurchaseStatus, note string) (domain.PurchaseRequest, error) {
	request, err := s.purchases.LatestPending(ctx, strings.TrimSpace(accountID), pack)
	if err != nil {
		return domain.PurchaseRequest{}, err
	}
	return s.ResolvePurchase(ctx, request.ID, status, note)
}

// CloseShop bulk-transitions every pending request to unavailable (the
// administrative "shop closed" broadcast) and notifies each owner. The
// sweep itself is atomic against concurrent creates and resolves; the
// notifications go out after the store lock is released.
func (s *Service) CloseShop(ctx context.Context, note string) (int, error) {
	if note == "" {
		note = "purchases temporarily unavailable"
	}

	s.purchaseMu.Lock()
	swept, err := s.purchases.ResolveAllPending(ctx, domain.PurchaseUnavailable, note, s.nowFn())
	s.purchaseMu.Unlock()
	if err != nil {
		return 0, err
	}

	for _, request := range swept {
		observability.PurchasesResolved.WithLabelValues(string(domain.PurchaseUnavailable)).Inc()
		s.notifyPurchase(ctx, request)
	}
	return len(swept), nil
}

// UnseenPurchases returns processed requests the account has not
// acknowledged yet.
func (s *Service) UnseenPurchases(ctx context.Context, accountID string) ([]domain.PurchaseRequest, error) {
	return s.purchases.UnseenFor(ctx, strings.TrimSpace(accountID))
}

// AcknowledgePurchases marks processed requests as seen. With no IDs given
// it acknowledges everything outstanding for the account.
func (s *Service) AcknowledgePurchases(ctx context.Context, accountID string, ids []string) (int64, error) {
	s.purchaseMu.Lock()
	defer s.purchaseMu.Unlock()
	return s.purchases.MarkSeen(ctx, strings.TrimSpace(accountID), ids)
}

// notifyPurchase routes the status-change message to the request owner.
// Delivery runs outside every store lock and never fails the caller.
func (s *Service) notifyPurchase(ctx context.Context, request domain.PurchaseRequest) {
	account, err := s.accounts.GetByID(ctx, request.AccountID)
	if err != nil {
		return
	}
	var message string
	switch request.Status {
	case domain.PurchaseAccepted:
		message = fmt.Sprintf("Purchase approved: +%d credits. %s", request.Pack.Credits(), request.ResponseNote)
	case domain.PurchaseRefused:
		message = fmt.Sprintf("Purchase refused. %s", request.ResponseNote)
	default:
		message = fmt.Sprintf("Purchase unavailable. %s", request.ResponseNote)
	}
	s.notifier.Notify(ctx, account, domain.NotifyPurchase, strings.TrimSpace(message))
}
