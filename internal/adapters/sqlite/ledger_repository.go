package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/geniusbot/core/internal/domain"
	"gorm.io/gorm"
)

type ledgerRepository struct {
	db *gorm.DB
}

func (r *ledgerRepository) GetBalance(ctx context.Context, accountID string) (domain.CreditBalance, error) {
	var rec creditBalanceModel
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CreditBalance{}, domain.ErrNotFound
		}
		return domain.CreditBalance{}, err
	}
	return toDomainBalance(rec), nil
}

// Init creates the balance row and its init entry in one transaction so the
// sum-of-entries invariant holds from the very first observation.
func (r *ledgerRepository) Init(ctx context.Context, accountID string, credits int, at time.Time) (domain.CreditBalance, error) {
	rec := creditBalanceModel{AccountID: accountID, Credits: credits, UpdatedAt: at.UTC()}
	err := withWriteRetry(ctx, "ledger_init", func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&rec).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// Another process initialized first; reuse its row.
					return tx.Where("account_id = ?", accountID).Take(&rec).Error
				}
				return err
			}
			return tx.Create(&ledgerEntryModel{
				AccountID: accountID,
				Delta:     credits,
				Reason:    domain.LedgerReasonInit,
				CreatedAt: at.UTC(),
			}).Error
		})
	})
	if err != nil {
		return domain.CreditBalance{}, err
	}
	return toDomainBalance(rec), nil
}

// ApplyDelta mutates the balance and appends the audit entry atomically.
// The conditional update is the cross-process backstop: even when two
// processes both read a sufficient balance, only one debit can land.
func (r *ledgerRepository) ApplyDelta(ctx context.Context, accountID string, delta int, reason string, at time.Time) (domain.CreditBalance, error) {
	var rec creditBalanceModel
	err := withWriteRetry(ctx, "ledger_apply_delta", func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&creditBalanceModel{}).
				Where("account_id = ? AND credits + ? >= 0", accountID, delta).
				Updates(map[string]any{
					"credits":    gorm.Expr("credits + ?", delta),
					"updated_at": at.UTC(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var exists int64
				if err := tx.Model(&creditBalanceModel{}).Where("account_id = ?", accountID).Count(&exists).Error; err != nil {
					return err
				}
				if exists == 0 {
					return domain.ErrNotFound
				}
				return domain.ErrInsufficientCredits
			}
			if err := tx.Create(&ledgerEntryModel{
				AccountID: accountID,
				Delta:     delta,
				Reason:    reason,
				CreatedAt: at.UTC(),
			}).Error; err != nil {
				return err
			}
			return tx.Where("account_id = ?", accountID).Take(&rec).Error
		})
	})
	if err != nil {
		return domain.CreditBalance{}, err
	}
	return toDomainBalance(rec), nil
}

func (r *ledgerRepository) Entries(ctx context.Context, accountID string) ([]domain.LedgerEntry, error) {
	var rows []ledgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]domain.LedgerEntry, 0, len(rows))
	for _, rec := range rows {
		entries = append(entries, toDomainEntry(rec))
	}
	return entries, nil
}

func (r *ledgerRepository) TotalCredits(ctx context.Context) (int64, error) {
	var total *int64
	if err := r.db.WithContext(ctx).Model(&creditBalanceModel{}).Select("SUM(credits)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
