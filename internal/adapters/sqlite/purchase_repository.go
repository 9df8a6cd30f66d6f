package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/geniusbot/core/internal/domain"
	"gorm.io/gorm"
)

type purchaseRepository struct {
	db *gorm.DB
}

func (r *purchaseRepository) Create(ctx context.Context, request domain.PurchaseRequest) error {
	rec := fromDomainPurchase(request)
	return withWriteRetry(ctx, "purchase_create", func() error {
		if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrConflict
			}
			return err
		}
		return nil
	})
}

func (r *purchaseRepository) GetByID(ctx context.Context, id string) (domain.PurchaseRequest, error) {
	var rec purchaseRequestModel
	if err := r.db.WithContext(ctx).Where("request_id = ?", id).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PurchaseRequest{}, domain.ErrNotFound
		}
		return domain.PurchaseRequest{}, err
	}
	request, err := toDomainPurchase(rec)
	if err != nil {
		logMalformedRow(ctx, "purchase_requests", err)
		return domain.PurchaseRequest{}, domain.ErrNotFound
	}
	return request, nil
}

func (r *purchaseRepository) LatestPending(ctx context.Context, accountID string, pack *domain.PackSize) (domain.PurchaseRequest, error) {
	query := r.db.WithContext(ctx).
		Where("account_id = ? AND status = ?", accountID, string(domain.PurchasePending))
	if pack != nil {
		query = query.Where("pack = ?", pack.Credits())
	}
	var rec purchaseRequestModel
	if err := query.Order("created_at DESC").Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PurchaseRequest{}, domain.ErrNotFound
		}
		return domain.PurchaseRequest{}, err
	}
	request, err := toDomainPurchase(rec)
	if err != nil {
		logMalformedRow(ctx, "purchase_requests", err)
		return domain.PurchaseRequest{}, domain.ErrNotFound
	}
	return request, nil
}

// Resolve applies the pending -> terminal transition with a conditional
// update, so a concurrent resolution from another process loses cleanly
// with AlreadyProcessed instead of double-applying.
func (r *purchaseRepository) Resolve(ctx context.Context, id string, status domain.PurchaseStatus, note string, at time.Time) (domain.PurchaseRequest, error) {
	var rec purchaseRequestModel
	err := withWriteRetry(ctx, "purchase_resolve", func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&purchaseRequestModel{}).
				Where("request_id = ? AND status = ?", id, string(domain.PurchasePending)).
				Updates(map[string]any{
					"status":        string(status),
					"processed_at":  at.UTC(),
					"response_note": note,
					"seen":          false,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var exists int64
				if err := tx.Model(&purchaseRequestModel{}).Where("request_id = ?", id).Count(&exists).Error; err != nil {
					return err
				}
				if exists == 0 {
					return domain.ErrNotFound
				}
				return domain.ErrAlreadyProcessed
			}
			return tx.Where("request_id = ?", id).Take(&rec).Error
		})
	})
	if err != nil {
		return domain.PurchaseRequest{}, err
	}
	request, mapErr := toDomainPurchase(rec)
	if mapErr != nil {
		logMalformedRow(ctx, "purchase_requests", mapErr)
		return domain.PurchaseRequest{}, domain.ErrNotFound
	}
	return request, nil
}

// ResolveAllPending sweeps every pending request inside one transaction; a
// request created mid-broadcast is either swept or untouched, never half
// applied.
func (r *purchaseRepository) ResolveAllPending(ctx context.Context, status domain.PurchaseStatus, note string, at time.Time) ([]domain.PurchaseRequest, error) {
	var swept []purchaseRequestModel
	err := withWriteRetry(ctx, "purchase_resolve_all_pending", func() error {
		swept = swept[:0]
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("status = ?", string(domain.PurchasePending)).Find(&swept).Error; err != nil {
				return err
			}
			if len(swept) == 0 {
				return nil
			}
			ids := make([]string, 0, len(swept))
			for _, rec := range swept {
				ids = append(ids, rec.RequestID)
			}
			// The status predicate keeps the sweep from touching a row
			// another process resolved between the collect and the update.
			return tx.Model(&purchaseRequestModel{}).
				Where("request_id IN ?", ids).
				Where("status = ?", string(domain.PurchasePending)).
				Updates(map[string]any{
					"status":        string(status),
					"processed_at":  at.UTC(),
					"response_note": note,
					"seen":          false,
				}).Error
		})
	})
	if err != nil {
		return nil, err
	}

	processedAt := at.UTC()
	requests := make([]domain.PurchaseRequest, 0, len(swept))
	for _, rec := range swept {
		request, mapErr := toDomainPurchase(rec)
		if mapErr != nil {
			logMalformedRow(ctx, "purchase_requests", mapErr)
			continue
		}
		request.Status = status
		request.ProcessedAt = &processedAt
		request.ResponseNote = note
		request.Seen = false
		requests = append(requests, request)
	}
	return requests, nil
}

func (r *purchaseRepository) UnseenFor(ctx context.Context, accountID string) ([]domain.PurchaseRequest, error) {
	var rows []purchaseRequestModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ? AND seen = ? AND status != ?", accountID, false, string(domain.PurchasePending)).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	requests := make([]domain.PurchaseRequest, 0, len(rows))
	for _, rec := range rows {
		request, err := toDomainPurchase(rec)
		if err != nil {
			logMalformedRow(ctx, "purchase_requests", err)
			continue
		}
		requests = append(requests, request)
	}
	return requests, nil
}

func (r *purchaseRepository) MarkSeen(ctx context.Context, accountID string, ids []string) (int64, error) {
	var affected int64
	err := withWriteRetry(ctx, "purchase_mark_seen", func() error {
		query := r.db.WithContext(ctx).
			Model(&purchaseRequestModel{}).
			Where("account_id = ? AND seen = ? AND status != ?", accountID, false, string(domain.PurchasePending))
		if len(ids) > 0 {
			query = query.Where("request_id IN ?", ids)
		}
		res := query.Update("seen", true)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	return affected, err
}

func (r *purchaseRepository) CountPending(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&purchaseRequestModel{}).
		Where("status = ?", string(domain.PurchasePending)).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
